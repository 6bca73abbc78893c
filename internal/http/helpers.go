package http

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// defaultRequestTimeout bounds the store work of a single request.
const defaultRequestTimeout = 7 * time.Second

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requestContext derives the per-request store context.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.requestTimeout)
}

// parseBody reads the request body, writing a 400 and returning nil when it
// cannot be decoded.
func parseBody(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(MsgMalformedBody).Write(w)
		return nil
	}
	return p
}
