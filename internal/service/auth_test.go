package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oyna-console/internal/cache"
	"oyna-console/internal/logging"
	"oyna-console/internal/session"
	"oyna-console/internal/storage"
	"oyna-console/pkg/apierror"
)

func authAPI(role string, logouts *atomic.Int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req session.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret123" {
			writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Giriş başarısız"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"data":{"token":"tok-9","user":{"user_id":5,"username":"deniz","role":"`+role+`"}}}`)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newAuthFixture(t *testing.T, role string) (*AuthService, *session.Session, storage.Storage, *atomic.Int32) {
	t.Helper()
	var logouts atomic.Int32
	client := newTestClient(t, authAPI(role, &logouts)).WithToken("")

	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	store := storage.Scoped(storage.NewCacheStore(mc, time.Hour), "cid-1")

	codec := session.NewDescriptorCodec("test-secret", time.Hour)
	svc := NewAuthService(codec, []string{"Admin", " moderator ", ""}, logging.Nop())
	return svc, session.New(client, store, logging.Nop()), store, &logouts
}

func TestAuth_LoginIssuesDescriptor(t *testing.T) {
	svc, sess, _, _ := newAuthFixture(t, "moderator")

	profile, cookie, err := svc.Login(context.Background(), sess, "deniz@oyna.gg", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(5), profile.UserID)
	require.NotEmpty(t, cookie)

	d, err := svc.Authorize(cookie)
	require.NoError(t, err)
	assert.Equal(t, "deniz", d.Username)
	assert.Equal(t, 3600, svc.DescriptorTTL())
}

func TestAuth_LoginRefusesPlainUsers(t *testing.T) {
	svc, sess, store, logouts := newAuthFixture(t, "user")

	_, cookie, err := svc.Login(context.Background(), sess, "deniz@oyna.gg", "secret123")
	require.Error(t, err)
	assert.Empty(t, cookie)

	apiErr := apierror.FromRemote(err)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, int32(1), logouts.Load())

	_, ok, err := store.Get(context.Background(), storage.KeyAuthToken)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuth_LoginPassesRemoteMessage(t *testing.T) {
	svc, sess, _, _ := newAuthFixture(t, "admin")

	_, _, err := svc.Login(context.Background(), sess, "deniz@oyna.gg", "wrong")
	require.Error(t, err)

	apiErr := apierror.FromRemote(err)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Giriş başarısız", apiErr.Message)
}

func TestAuth_Authorize(t *testing.T) {
	codec := session.NewDescriptorCodec("test-secret", time.Hour)
	svc := NewAuthService(codec, []string{"admin"}, nil)

	admin, err := codec.Encode(session.Descriptor{UserID: 1, Role: "ADMIN"})
	require.NoError(t, err)
	user, err := codec.Encode(session.Descriptor{UserID: 2, Role: "user"})
	require.NoError(t, err)

	_, err = svc.Authorize(admin)
	assert.NoError(t, err)

	_, err = svc.Authorize(user)
	assert.Equal(t, http.StatusForbidden, apierror.FromRemote(err).StatusCode)

	_, err = svc.Authorize("")
	assert.Equal(t, http.StatusUnauthorized, apierror.FromRemote(err).StatusCode)

	_, err = svc.Authorize("garbage")
	assert.Equal(t, http.StatusUnauthorized, apierror.FromRemote(err).StatusCode)
}
