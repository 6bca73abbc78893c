// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for reading request bodies, query strings
// and path parameters into the raw string inputs the services validate.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"spendlog/internal/core"
	"spendlog/internal/services"
)

const maxBodyBytes = 1 << 20

var errMalformedBody = errors.New("malformed request body")

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// RequestBodyParser handles JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r once and keeps it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{contentType: r.Header.Get("Content-Type")}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

// Parse decodes the body as JSON when declared or shaped like JSON, and as
// a form otherwise. A JSON body that is not an object is malformed.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSON() || trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = errMalformedBody
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	if p.err != nil {
		p.err = errMalformedBody
	}
	return p.err
}

// Get returns the trimmed string form of a member. JSON null and missing
// members read as empty.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
		return ""
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// IsJSON reports whether the request declared a JSON body.
func (p *RequestBodyParser) IsJSON() bool {
	mt, _, err := mime.ParseMediaType(p.contentType)
	return err == nil && (mt == "application/json" || strings.HasSuffix(mt, "+json"))
}

// stringValue renders a decoded JSON value as the text a form would carry.
// Arrays and objects keep their JSON text so numeric rules reject them.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// CategoryInput reads the category members of the body.
func (p *RequestBodyParser) CategoryInput() core.CategoryInput {
	return core.CategoryInput{
		Name:        p.Get("name"),
		Color:       p.Get("color"),
		Description: p.Get("description"),
	}
}

// ExpenseInput reads the expense members of the body.
func (p *RequestBodyParser) ExpenseInput() core.ExpenseInput {
	return core.ExpenseInput{
		Title:       p.Get("title"),
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		ExpenseDate: p.Get("expense_date"),
		CategoryID:  p.Get("category_id"),
	}
}

// ParseExpenseQuery extracts the listing parameters from the query string.
func ParseExpenseQuery(query url.Values) services.ExpenseQuery {
	return services.ExpenseQuery{
		StartDate:  strings.TrimSpace(query.Get("start_date")),
		EndDate:    strings.TrimSpace(query.Get("end_date")),
		CategoryID: strings.TrimSpace(query.Get("category_id")),
		Search:     strings.TrimSpace(query.Get("search")),
		SortBy:     strings.TrimSpace(query.Get("sort_by")),
		SortOrder:  strings.TrimSpace(query.Get("sort_order")),
		Page:       strings.TrimSpace(query.Get("page")),
		PerPage:    strings.TrimSpace(query.Get("per_page")),
	}
}

// ParseDashboardQuery extracts the dashboard range from the query string.
func ParseDashboardQuery(query url.Values) services.DashboardQuery {
	return services.DashboardQuery{
		StartDate: strings.TrimSpace(query.Get("start_date")),
		EndDate:   strings.TrimSpace(query.Get("end_date")),
	}
}

// PathID parses a positive integer path parameter. Anything else is
// reported as not found by the caller.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// PathYear parses a four-digit year path parameter.
func PathYear(r *http.Request) (int, bool) {
	v := r.PathValue("year")
	if !yearPattern.MatchString(v) {
		return 0, false
	}
	year, err := strconv.Atoi(v)
	return year, err == nil
}
