package gateway

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/accessdesk/mediation-gateway/internal/core/domain"
)

// Args is the loosely-typed argument bag of one tool call, as decoded from
// JSON.
type Args map[string]any

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// reader extracts typed values from Args and collects every type mismatch.
// A nil value counts as absent.
type reader struct {
	args       Args
	violations []domain.Violation
}

func newReader(args Args) *reader {
	if args == nil {
		args = Args{}
	}
	return &reader{args: args}
}

func (r *reader) fail(name, reason string) {
	r.violations = append(r.violations, domain.Violation{Field: name, Reason: reason})
}

func (r *reader) lookup(name string) (any, bool) {
	v, ok := r.args[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// str returns nil when absent. Numbers are accepted and formatted.
func (r *reader) str(name string) *string {
	v, ok := r.lookup(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case string:
		return &t
	case float64:
		s := strconv.FormatFloat(t, 'f', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(t)
		return &s
	default:
		r.fail(name, "must be a string")
		return nil
	}
}

// text is str with absence read as "".
func (r *reader) text(name string) string {
	if s := r.str(name); s != nil {
		return *s
	}
	return ""
}

// boolean accepts JSON booleans and their string forms.
func (r *reader) boolean(name string) *bool {
	v, ok := r.lookup(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case bool:
		return &t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			r.fail(name, "must be a boolean")
			return nil
		}
		return &b
	default:
		r.fail(name, "must be a boolean")
		return nil
	}
}

// list accepts a JSON array of strings or a comma-separated string.
func (r *reader) list(name string) *[]string {
	v, ok := r.lookup(name)
	if !ok {
		return nil
	}
	var out []string
	switch t := v.(type) {
	case []string:
		out = append(out, t...)
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				r.fail(name, "must be an array of strings")
				return nil
			}
			out = append(out, s)
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	default:
		r.fail(name, "must be an array of strings")
		return nil
	}
	if out == nil {
		out = []string{}
	}
	return &out
}

// date accepts YYYY-MM-DD or an RFC 3339 timestamp.
func (r *reader) date(name string) *time.Time {
	s := r.str(name)
	if s == nil {
		return nil
	}
	raw := strings.TrimSpace(*s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	r.fail(name, fmt.Sprintf("must be a date (YYYY-MM-DD), got %q", raw))
	return nil
}

// clearableDate is date, except that an empty string reports clear
// instead of a violation.
func (r *reader) clearableDate(name string) (t *time.Time, unset bool) {
	if v, ok := r.lookup(name); ok {
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return nil, true
		}
	}
	return r.date(name), false
}

// secret reads the account password under its wire name or its alias.
func (r *reader) secret() *string {
	if s := r.str("password"); s != nil {
		return s
	}
	return r.str("secret")
}

// id reads a required id argument.
func (r *reader) id() string {
	if _, present := r.lookup("id"); present {
		s := r.str("id")
		if s == nil {
			return ""
		}
		if id := strings.TrimSpace(*s); id != "" {
			return id
		}
	}
	r.fail("id", "is required")
	return ""
}

func (r *reader) err() error {
	if len(r.violations) == 0 {
		return nil
	}
	return &domain.ValidationError{Violations: r.violations}
}
