package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oyna-console/internal/logging"
	"oyna-console/internal/model"
)

func TestDashboard_FailingCardIsNotFatal(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/users/stats":
			writeJSON(w, http.StatusOK, `{"success":true,"data":{"total":10}}`)
		case "/api/admin/servers/stats":
			writeJSON(w, http.StatusInternalServerError, `{"message":"İstatistikler alınamadı"}`)
		}
	}))

	reg := NewRegistry(
		Define[model.User](ResourceConfig{Name: "users", Label: "Kullanıcılar", StatsPath: "/admin/users/stats"}),
		Define[model.Server](ResourceConfig{Name: "servers", Label: "Sunucular", StatsPath: "/admin/servers/stats"}),
		Define[model.Tag](ResourceConfig{Name: "tags", Label: "Etiketler"}),
	)

	cards := NewDashboardService(reg, logging.Nop()).Cards(context.Background(), client)
	require.Len(t, cards, 2)

	assert.Equal(t, "users", cards[0].Resource)
	assert.False(t, cards[0].Errored)
	assert.Equal(t, map[string]any{"total": float64(10)}, cards[0].Stats)

	assert.Equal(t, "servers", cards[1].Resource)
	assert.True(t, cards[1].Errored)
	assert.Equal(t, "İstatistikler alınamadı", cards[1].Error)
	assert.Nil(t, cards[1].Stats)
}

func TestDashboard_TransportFailureUsesGenericMessage(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	}))

	reg := NewRegistry(Define[model.User](ResourceConfig{Name: "users", StatsPath: "/admin/users/stats"}))
	cards := NewDashboardService(reg, nil).Cards(context.Background(), client)

	require.Len(t, cards, 1)
	assert.True(t, cards[0].Errored)
	assert.Equal(t, "Bir hata oluştu. Lütfen tekrar deneyin.", cards[0].Error)
}
