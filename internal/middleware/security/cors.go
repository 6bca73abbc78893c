package security

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig lists the origins allowed to call the API from a browser.
// A single "*" allows any origin.
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int
}

// DefaultCORSConfig allows any origin with the methods the API exposes.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-ID", "X-Requested-With"},
		MaxAge:         600,
	}
}

// CORS answers preflight requests and decorates responses for allowed origins.
type CORS struct {
	config  CORSConfig
	any     bool
	allowed map[string]struct{}
}

// NewCORS builds the middleware from config.
func NewCORS(config CORSConfig) *CORS {
	c := &CORS{config: config, allowed: make(map[string]struct{})}
	for _, o := range config.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o == "*" {
			c.any = true
			continue
		}
		if o != "" {
			c.allowed[strings.TrimRight(o, "/")] = struct{}{}
		}
	}
	return c
}

func (c *CORS) originAllowed(origin string) bool {
	if c.any {
		return true
	}
	_, ok := c.allowed[strings.TrimRight(origin, "/")]
	return ok
}

// Middleware returns the HTTP middleware function
func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		allowed := c.originAllowed(origin)
		if allowed {
			if c.any {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
			}
			h.Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				h.Set("Access-Control-Allow-Methods", strings.Join(c.config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(c.config.AllowedHeaders, ", "))
				if c.config.MaxAge > 0 {
					h.Set("Access-Control-Max-Age", strconv.Itoa(c.config.MaxAge))
				}
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
