package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionsAPI(gets *atomic.Int32, saved *atomic.Value) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/admin/settings" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			gets.Add(1)
			writeJSON(w, http.StatusOK, `{"site_name":"Oyna.gg","maintenance":false}`)
		case http.MethodPut:
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			saved.Store(body)
			writeJSON(w, http.StatusOK, `{"success":true}`)
		}
	})
}

func TestSection_LockedDoesNotFetch(t *testing.T) {
	var gets atomic.Int32
	var saved atomic.Value
	client := newTestClient(t, sectionsAPI(&gets, &saved))

	sec, ok := FindSection(DefaultSections, "settings")
	require.True(t, ok)

	page := OpenSection(context.Background(), client, sec, false)
	defer page.Close()

	v, err := page.View(context.Background())
	require.NoError(t, err)
	assert.Nil(t, v.Data)
	assert.Equal(t, int32(0), gets.Load())

	_, err = page.Save(context.Background(), map[string]any{"maintenance": true})
	assert.Error(t, err)
	assert.Nil(t, saved.Load())
}

func TestSection_GrantedFetchesAndSaves(t *testing.T) {
	var gets atomic.Int32
	var saved atomic.Value
	client := newTestClient(t, sectionsAPI(&gets, &saved))

	sec, _ := FindSection(DefaultSections, "settings")
	page := OpenSection(context.Background(), client, sec, true)
	defer page.Close()

	v, err := page.View(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"site_name":"Oyna.gg","maintenance":false}`, string(v.Data))

	v, err = page.Save(context.Background(), map[string]any{"maintenance": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"maintenance": true}, saved.Load())
	assert.Equal(t, int32(2), gets.Load())
	assert.JSONEq(t, `{"success":true}`, string(v.Result))
}

func TestFindSection_Unknown(t *testing.T) {
	_, ok := FindSection(DefaultSections, "billing")
	assert.False(t, ok)
}
