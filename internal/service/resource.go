package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/fetch"
	"oyna-console/internal/listing"
)

// Scope tells whether an action targets one row or the whole collection.
type Scope int

const (
	ItemScope Scope = iota
	CollectionScope
)

// Action is a mutation the console can run against a resource.
type Action struct {
	Name   string
	Method string
	// Verb is appended to the item path, e.g. "ban" for POST /admin/users/{id}/ban.
	Verb  string
	Scope Scope
	// Form returns a pointer to the body type to decode and validate.
	// Nil means the action takes no body.
	Form func() any
}

// Path returns the remote endpoint of the action.
func (a Action) Path(base, id string) string {
	if a.Scope == CollectionScope {
		return base
	}
	p := base + "/" + url.PathEscape(id)
	if a.Verb != "" {
		p += "/" + a.Verb
	}
	return p
}

// Column describes one table column.
type Column struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Sortable bool   `json:"sortable,omitempty"`
}

// ViewState mirrors the fetch tri-state for the UI.
type ViewState struct {
	Loading      bool   `json:"loading"`
	Errored      bool   `json:"errored"`
	Error        string `json:"error,omitempty"`
	ErrorPayload any    `json:"error_payload,omitempty"`
}

// View is everything a resource admin page renders.
type View struct {
	Resource string            `json:"resource"`
	Label    string            `json:"label"`
	Columns  []Column          `json:"columns"`
	Actions  []string          `json:"actions"`
	State    ViewState         `json:"state"`
	Rows     any               `json:"rows"`
	Metadata *listing.Metadata `json:"metadata,omitempty"`
	Result   json.RawMessage   `json:"result,omitempty"`

	// Err is the failure behind an errored state.
	Err error `json:"-"`
}

// Resource is the row-type independent face of a resource definition.
type Resource interface {
	Name() string
	Label() string
	Columns() []Column
	Actions() []Action
	Action(name string) (Action, bool)
	HasStats() bool
	Stats(ctx context.Context, client *apiclient.Client) (map[string]any, error)
	// Open starts a list page. With fetchNow false nothing is requested until
	// the first Run.
	Open(ctx context.Context, client *apiclient.Client, params listing.Params, fetchNow bool) Page
}

// Page is one open resource list bound to a request.
type Page interface {
	// View waits for the current fetch cycle and renders it.
	View(ctx context.Context) (View, error)
	// Run performs an action remotely and re-fetches the list.
	Run(ctx context.Context, action Action, id string, body any) (View, error)
	Close()
}

// ResourceConfig declares a resource.
type ResourceConfig struct {
	Name        string
	Label       string
	Path        string
	StatsPath   string
	DefaultSort string
	Columns     []Column
	Actions     []Action
}

// Definition is a resource whose rows decode into T.
type Definition[T any] struct {
	cfg ResourceConfig
}

// Define creates the resource described by cfg.
func Define[T any](cfg ResourceConfig) *Definition[T] {
	return &Definition[T]{cfg: cfg}
}

func (d *Definition[T]) Name() string      { return d.cfg.Name }
func (d *Definition[T]) Label() string     { return d.cfg.Label }
func (d *Definition[T]) Columns() []Column { return d.cfg.Columns }
func (d *Definition[T]) Actions() []Action { return d.cfg.Actions }
func (d *Definition[T]) HasStats() bool    { return d.cfg.StatsPath != "" }

// Action looks an action up by name.
func (d *Definition[T]) Action(name string) (Action, bool) {
	for _, a := range d.cfg.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// ErrNoStats is returned by Stats for resources without a stats endpoint.
var ErrNoStats = errors.New("resource has no stats endpoint")

// Stats loads the summary counters shown on cards.
func (d *Definition[T]) Stats(ctx context.Context, client *apiclient.Client) (map[string]any, error) {
	if d.cfg.StatsPath == "" {
		return nil, ErrNoStats
	}

	var body map[string]any
	if err := client.Get(ctx, d.cfg.StatsPath, nil, &body); err != nil {
		return nil, err
	}
	if data, ok := body["data"].(map[string]any); ok {
		return data, nil
	}
	delete(body, "success")
	return body, nil
}

// Open mounts a fetcher for the list.
func (d *Definition[T]) Open(ctx context.Context, client *apiclient.Client, params listing.Params, fetchNow bool) Page {
	params = params.WithDefaultSort(d.cfg.DefaultSort)

	p := &page[T]{def: d, client: client, enabled: fetchNow}
	p.fetcher = fetch.New(func(ctx context.Context) (listing.Page[T], error) {
		return listing.List[T](ctx, client, d.cfg.Path, params)
	}, fetch.WithEnabled(fetchNow))
	p.fetcher.Mount(ctx, d.cfg.Path, params.Values().Encode())
	return p
}

type page[T any] struct {
	def     *Definition[T]
	client  *apiclient.Client
	fetcher *fetch.Fetcher[listing.Page[T]]

	mu      sync.Mutex
	enabled bool
}

func (p *page[T]) View(ctx context.Context) (View, error) {
	st, err := p.fetcher.Wait(ctx)
	if err != nil {
		return View{}, err
	}
	return p.render(st), nil
}

func (p *page[T]) Run(ctx context.Context, action Action, id string, body any) (View, error) {
	if action.Scope == ItemScope && id == "" {
		return View{}, fmt.Errorf("action %s needs an id", action.Name)
	}
	method := action.Method
	if method == "" {
		method = http.MethodPost
	}

	var result json.RawMessage
	if err := p.client.Do(ctx, method, action.Path(p.def.cfg.Path, id), nil, body, &result); err != nil {
		return View{}, err
	}

	p.mu.Lock()
	if p.enabled {
		p.fetcher.Refetch(ctx)
	} else {
		p.enabled = true
		p.fetcher.SetEnabled(ctx, true)
	}
	p.mu.Unlock()

	v, err := p.View(ctx)
	if err != nil {
		return View{}, err
	}
	v.Result = result
	return v, nil
}

func (p *page[T]) Close() {
	p.fetcher.Close()
}

func (p *page[T]) render(st fetch.State[listing.Page[T]]) View {
	v := View{
		Resource: p.def.cfg.Name,
		Label:    p.def.cfg.Label,
		Columns:  p.def.cfg.Columns,
		Actions:  actionNames(p.def.cfg.Actions),
		State:    ViewState{Loading: st.Loading, Errored: st.Errored},
		Rows:     []T{},
	}
	switch {
	case st.Errored:
		v.Err = st.Err
		v.State.Error = fetch.ErrorMessage(st.Err)
		if _, raw := st.ErrorPayload.(error); !raw {
			v.State.ErrorPayload = st.ErrorPayload
		}
	case st.Ready():
		v.Rows = st.Data.Rows
		meta := st.Data.Metadata
		v.Metadata = &meta
	}
	return v
}

func actionNames(actions []Action) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name
	}
	return names
}
