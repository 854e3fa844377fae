package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"casalgastos/internal/core"
	"casalgastos/internal/services"
)

// maxBodyBytes bounds form and JSON bodies.
const maxBodyBytes = 64 << 10

// ParseMonthParam reads the "month" query value ("YYYY-MM"). A missing or
// malformed value selects the month containing now.
func ParseMonthParam(query url.Values, now time.Time) core.MonthWindow {
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		if w, err := core.ParseMonth(v); err == nil {
			return w
		}
	}
	return core.MonthWindowFor(now)
}

// RequestBodyParser reads a request body that is either JSON or
// form-encoded, as sent by htmx or API clients.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once so it can be parsed later.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse decodes the body as JSON when it looks like JSON, as a form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the trimmed value of key without control characters.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// AddInput collects the entry form fields.
func (p *RequestBodyParser) AddInput() services.AddInput {
	return services.AddInput{
		Amount:        p.Get("amount"),
		CategoryID:    p.Get("category_id"),
		PaymentMethod: p.Get("payment_method"),
		Date:          p.Get("date"),
		Description:   p.Get("description"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims s and drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
