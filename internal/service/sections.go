package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/fetch"
)

// Section is a sensitive settings page behind the access code.
type Section struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Path  string `json:"-"`
}

// DefaultSections are the gated sections of the console.
var DefaultSections = []Section{
	{Name: "roles", Label: "Roller ve Yetkiler", Path: "/admin/roles"},
	{Name: "settings", Label: "Site Ayarları", Path: "/admin/settings"},
}

// FindSection returns the section called name.
func FindSection(sections []Section, name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// SectionView is what a protected section renders.
type SectionView struct {
	Section string          `json:"section"`
	Label   string          `json:"label"`
	State   ViewState       `json:"state"`
	Data    json.RawMessage `json:"data,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`

	Err error `json:"-"`
}

// SectionPage is one open protected section. Its data is only requested
// while the section is unlocked.
type SectionPage struct {
	section Section
	client  *apiclient.Client
	fetcher *fetch.Fetcher[json.RawMessage]
	granted bool
}

// OpenSection mounts the section fetcher. With granted false nothing is
// requested.
func OpenSection(ctx context.Context, client *apiclient.Client, sec Section, granted bool) *SectionPage {
	p := &SectionPage{section: sec, client: client, granted: granted}
	p.fetcher = fetch.New(func(ctx context.Context) (json.RawMessage, error) {
		return client.GetRaw(ctx, sec.Path, nil)
	}, fetch.WithEnabled(granted))
	p.fetcher.Mount(ctx, sec.Path)
	return p
}

// View waits for the fetch and renders it. A locked page renders empty.
func (p *SectionPage) View(ctx context.Context) (SectionView, error) {
	st, err := p.fetcher.Wait(ctx)
	if err != nil {
		return SectionView{}, err
	}

	v := SectionView{
		Section: p.section.Name,
		Label:   p.section.Label,
		State:   ViewState{Loading: st.Loading, Errored: st.Errored},
	}
	switch {
	case st.Errored:
		v.Err = st.Err
		v.State.Error = fetch.ErrorMessage(st.Err)
		if _, raw := st.ErrorPayload.(error); !raw {
			v.State.ErrorPayload = st.ErrorPayload
		}
	case p.granted && st.Ready():
		v.Data = st.Data
	}
	return v, nil
}

// Save sends values to the section endpoint and re-fetches it.
func (p *SectionPage) Save(ctx context.Context, values map[string]any) (SectionView, error) {
	if !p.granted {
		return SectionView{}, fmt.Errorf("section %s is locked", p.section.Name)
	}

	var result json.RawMessage
	if err := p.client.Do(ctx, http.MethodPut, p.section.Path, nil, values, &result); err != nil {
		return SectionView{}, err
	}
	p.fetcher.Refetch(ctx)

	v, err := p.View(ctx)
	if err != nil {
		return SectionView{}, err
	}
	v.Result = result
	return v, nil
}

// Close cancels any in-flight request.
func (p *SectionPage) Close() {
	p.fetcher.Close()
}
