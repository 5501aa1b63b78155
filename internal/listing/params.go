// Package listing reads paginated lists from the REST API and normalizes the
// response shapes the endpoints return into one Page type.
package listing

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"oyna-console/pkg/apierror"
)

// Direction selects the slice relative to Cursor.
type Direction string

const (
	Next     Direction = "next"
	Previous Direction = "previous"
)

// Params are the list request parameters. Nil or empty fields are omitted
// from the outgoing request.
type Params struct {
	Page      *int
	PageSize  *int
	SortBy    string
	Direction Direction
	Filters   string
	Cursor    string
}

// IntPtr is a helper for populating Page and PageSize.
func IntPtr(v int) *int {
	return &v
}

// Values builds the query string for the remote API.
func (p Params) Values() url.Values {
	q := url.Values{}
	if p.Page != nil {
		q.Set("page", strconv.Itoa(*p.Page))
	}
	if p.PageSize != nil {
		q.Set("page_size", strconv.Itoa(*p.PageSize))
	}
	if p.SortBy != "" {
		q.Set("sort_by", p.SortBy)
	}
	if p.Direction != "" {
		q.Set("direction", string(p.Direction))
	}
	if p.Filters != "" {
		q.Set("filters", p.Filters)
	}
	if p.Cursor != "" {
		q.Set("cursor", p.Cursor)
	}
	return q
}

// WithDefaultSort returns a copy of p that sorts by key when no sort was requested.
func (p Params) WithDefaultSort(key string) Params {
	if p.SortBy == "" {
		p.SortBy = key
	}
	return p
}

// ParamsFromQuery parses list parameters from a console request. Both
// snake_case and camelCase names are accepted.
func ParamsFromQuery(q url.Values) (Params, error) {
	var (
		p      Params
		fields []apierror.FieldError
	)

	if n, ok, err := positive(q, "page"); err != nil {
		fields = append(fields, apierror.FieldError{Field: "page", Message: err.Error()})
	} else if ok {
		p.Page = &n
	}
	if n, ok, err := positive(q, "page_size", "pageSize"); err != nil {
		fields = append(fields, apierror.FieldError{Field: "page_size", Message: err.Error()})
	} else if ok {
		p.PageSize = &n
	}

	p.SortBy = first(q, "sort_by", "sortBy")
	p.Filters = first(q, "filters")
	p.Cursor = first(q, "cursor")

	switch d := Direction(strings.ToLower(first(q, "direction"))); d {
	case "", Next, Previous:
		p.Direction = d
	default:
		fields = append(fields, apierror.FieldError{Field: "direction", Message: "must be next or previous"})
	}

	if len(fields) > 0 {
		return Params{}, apierror.ValidationError("invalid list parameters", fields...)
	}
	return p, nil
}

func first(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

var (
	errNotNumber   = errors.New("must be a number")
	errNotPositive = errors.New("must be positive")
)

func positive(q url.Values, keys ...string) (int, bool, error) {
	raw := first(q, keys...)
	if raw == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, errNotNumber
	}
	if n < 1 {
		return 0, false, errNotPositive
	}
	return n, true, nil
}
