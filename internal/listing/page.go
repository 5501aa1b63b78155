package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// ErrPageOverflow is returned when a page holds more rows than its page size.
var ErrPageOverflow = errors.New("listing: page holds more rows than page size")

// Metadata describes where a page sits in the full list.
// Cursors are copied from the server as-is.
type Metadata struct {
	Page            int    `json:"page,omitempty"`
	TotalPages      int    `json:"total_pages,omitempty"`
	PageSize        int    `json:"page_size"`
	Total           int    `json:"total"`
	HasNextPage     bool   `json:"has_next_page"`
	HasPreviousPage bool   `json:"has_previous_page"`
	StartCursor     string `json:"start_cursor,omitempty"`
	EndCursor       string `json:"end_cursor,omitempty"`
}

// Page is one normalized slice of a list.
type Page[Row any] struct {
	Rows     []Row    `json:"rows"`
	Metadata Metadata `json:"metadata"`
}

// Getter is the part of the API client the accessor needs.
type Getter interface {
	GetRaw(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Raw issues the list request and returns the undecoded body.
func Raw(ctx context.Context, c Getter, path string, p Params) (json.RawMessage, error) {
	return c.GetRaw(ctx, path, p.Values())
}

// List issues the list request and decodes the result into a Page.
// Request errors are returned unchanged.
func List[Row any](ctx context.Context, c Getter, path string, p Params) (Page[Row], error) {
	raw, err := Raw(ctx, c, path, p)
	if err != nil {
		return Page[Row]{}, err
	}
	pageSize := 0
	if p.PageSize != nil {
		pageSize = *p.PageSize
	}
	page, err := Decode[Row](raw, pageSize)
	if err != nil {
		return Page[Row]{}, fmt.Errorf("GET %s: %w", path, err)
	}
	return page, nil
}

type fields map[string]json.RawMessage

// Decode normalizes a list response into a Page. Supported shapes:
//
//	{"data": [...], "pagination": {...}}
//	{"data": [...], "metadata": {...}}
//	{"success": true, "data": [...], "meta": {...}}
//	{"data": {"rows": [...], "total": n, ...}}
//	[...]
//
// requestedPageSize fills in PageSize when the response omits it.
func Decode[Row any](raw json.RawMessage, requestedPageSize int) (Page[Row], error) {
	var page Page[Row]

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		page.Rows = []Row{}
		page.Metadata.PageSize = requestedPageSize
		return page, nil
	}

	var (
		rows json.RawMessage
		meta = fields{}
	)

	if raw[0] == '[' {
		rows = raw
	} else {
		var top fields
		if err := json.Unmarshal(raw, &top); err != nil {
			return page, fmt.Errorf("decode list: %w", err)
		}
		data := bytes.TrimSpace(top["data"])
		switch {
		case len(data) > 0 && data[0] == '{':
			var inner fields
			if err := json.Unmarshal(data, &inner); err != nil {
				return page, fmt.Errorf("decode list data: %w", err)
			}
			rows = pick(inner, "rows", "items", "data")
			meta.merge(inner)
		case len(data) > 0:
			rows = data
			meta.merge(top)
		default:
			rows = pick(top, "rows", "items")
			meta.merge(top)
		}
		for _, key := range []string{"pagination", "metadata", "meta"} {
			if err := meta.mergeObject(top[key]); err != nil {
				return page, fmt.Errorf("decode list %s: %w", key, err)
			}
		}
	}

	if len(rows) > 0 && !bytes.Equal(rows, []byte("null")) {
		if err := json.Unmarshal(rows, &page.Rows); err != nil {
			return page, fmt.Errorf("decode list rows: %w", err)
		}
	}
	if page.Rows == nil {
		page.Rows = []Row{}
	}

	page.Metadata = meta.metadata(len(page.Rows), requestedPageSize)
	if page.Metadata.PageSize > 0 && len(page.Rows) > page.Metadata.PageSize {
		return page, fmt.Errorf("%w: %d rows, page size %d", ErrPageOverflow, len(page.Rows), page.Metadata.PageSize)
	}
	return page, nil
}

func pick(f fields, keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return v
		}
	}
	return nil
}

func (f fields) merge(other fields) {
	for k, v := range other {
		if _, ok := f[k]; !ok {
			f[k] = v
		}
	}
}

func (f fields) mergeObject(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var obj fields
	if err := json.Unmarshal(raw, &obj); err != nil {
		return err
	}
	// explicit metadata wins over fields found next to the rows
	for k, v := range obj {
		f[k] = v
	}
	return nil
}

func (f fields) int(keys ...string) (int, bool) {
	v := pick(f, keys...)
	if v == nil {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if json.Unmarshal(v, &s) != nil {
			return 0, false
		}
		n = json.Number(s)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		fl, ferr := n.Float64()
		if ferr != nil {
			return 0, false
		}
		i = int(fl)
	}
	return i, true
}

func (f fields) bool(keys ...string) (bool, bool) {
	v := pick(f, keys...)
	if v == nil {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return false, false
	}
	return b, true
}

func (f fields) string(keys ...string) string {
	v := pick(f, keys...)
	if v == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return ""
	}
	return s
}

func (f fields) metadata(rowCount, requestedPageSize int) Metadata {
	var m Metadata

	if n, ok := f.int("page_size", "pageSize", "per_page", "perPage", "limit"); ok {
		m.PageSize = n
	} else {
		m.PageSize = requestedPageSize
	}
	if n, ok := f.int("total", "total_count", "totalCount", "count"); ok {
		m.Total = n
	} else {
		m.Total = rowCount
	}
	m.Page, _ = f.int("page", "current_page", "currentPage")
	m.TotalPages, _ = f.int("total_pages", "totalPages", "last_page", "lastPage")
	if m.TotalPages == 0 && m.Page > 0 && m.PageSize > 0 {
		m.TotalPages = (m.Total + m.PageSize - 1) / m.PageSize
	}

	m.StartCursor = f.string("start_cursor", "startCursor")
	m.EndCursor = f.string("end_cursor", "endCursor")

	if b, ok := f.bool("has_next_page", "hasNextPage", "has_next", "hasNext"); ok {
		m.HasNextPage = b
	} else if m.Page > 0 {
		m.HasNextPage = m.Page < m.TotalPages
	}
	if b, ok := f.bool("has_previous_page", "hasPreviousPage", "has_prev", "hasPrev"); ok {
		m.HasPreviousPage = b
	} else if m.Page > 0 {
		m.HasPreviousPage = m.Page > 1
	}
	return m
}
