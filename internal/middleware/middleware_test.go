package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oyna-console/internal/apiclient"
	"oyna-console/internal/cache"
	"oyna-console/internal/logging"
	"oyna-console/internal/model"
	"oyna-console/internal/service"
	"oyna-console/internal/session"
	"oyna-console/internal/storage"
)

var ok200 = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "6F9619FF-8B86-D011-B42D-00C04FC964FF")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", seen)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "<script>", seen)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	h := Recovery(logging.New(&buf, "text", "info"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"INTERNAL_ERROR"`)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "boom")
}

func TestLogging_LevelByStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "INFO"},
		{http.StatusNotFound, "WARN"},
		{http.StatusBadGateway, "ERROR"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			h := Logging(logging.New(&buf, "json", "debug"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/console/users?page=2", nil))

			var rec map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
			assert.Equal(t, "http_request", rec["msg"])
			assert.Equal(t, tt.level, rec["level"])
			assert.Equal(t, "/console/users?page=2", rec["path"])
			assert.Equal(t, float64(tt.status), rec["status"])
			assert.Equal(t, float64(5), rec["bytes"])
		})
	}
}

func TestClientID(t *testing.T) {
	var seen string
	h := ClientID(ClientIDConfig{CookieName: "cid"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetClientID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "cid", cookies[0].Name)
	assert.Equal(t, seen, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	first := seen
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, first, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func newBackend(t *testing.T) storage.Storage {
	t.Helper()
	mc := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	return storage.NewCacheStore(mc, time.Hour)
}

func newAPI(t *testing.T) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New("http://127.0.0.1:1/api", time.Second)
	require.NoError(t, err)
	return c
}

func TestSession_ScopedPerBrowser(t *testing.T) {
	backend := newBackend(t)
	require.NoError(t, backend.Set(context.Background(), "client:cid-a:auth_token", "tok-a"))

	var authenticated bool
	var closed *session.Session
	h := Session(SessionConfig{API: newAPI(t), Backend: backend})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := session.FromContext(r.Context())
		require.True(t, ok)
		authenticated = sess.Authenticated()
		closed = sess
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClientIDKey, "cid-a"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, authenticated)

	_, err := closed.Client(context.Background())
	assert.ErrorIs(t, err, session.ErrClosed)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClientIDKey, "cid-b"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, authenticated)
}

type failingStore struct{ storage.Nop }

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, assert.AnError
}

func TestSession_StorageFailure(t *testing.T) {
	h := Session(SessionConfig{API: newAPI(t), Backend: failingStore{}})(ok200)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), ClientIDKey, "cid-a"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	codec := session.NewDescriptorCodec("secret", time.Hour)
	auth := service.NewAuthService(codec, []string{"admin", "moderator"}, nil)
	mw := RequireAdmin(AdminConfig{Auth: auth, CookieName: "oyna_user"})

	var seen session.Descriptor
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetDescriptor(r.Context())
	}))

	admin, err := codec.Encode(session.Descriptor{UserID: 1, Username: "ali", Role: "moderator"})
	require.NoError(t, err)
	user, err := codec.Encode(session.Descriptor{UserID: 2, Role: "user"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		cookie   string
		accept   string
		status   int
		location string
	}{
		{"admin", admin, "application/json", http.StatusOK, ""},
		{"no cookie json", "", "application/json", http.StatusUnauthorized, ""},
		{"garbage json", "x.y.z", "", http.StatusUnauthorized, ""},
		{"plain user json", user, "application/json", http.StatusForbidden, ""},
		{"no cookie html", "", "text/html,application/xhtml+xml", http.StatusFound, "/unauthorized"},
		{"plain user html", user, "text/html", http.StatusFound, "/unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/console/users", nil)
			req.Header.Set("Accept", tt.accept)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "oyna_user", Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
	assert.Equal(t, "ali", seen.Username)
}

func TestRequireGrant(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	store := storage.Scoped(newBackend(t), "cid-1")
	sess := session.New(newAPI(t), store, nil)

	h := RequireGrant(GrantConfig{
		Section:  "roles",
		GatePath: "/console/gate/roles",
		Now:      func() time.Time { return now },
	})(ok200)

	serve := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/console/sections/roles", nil)
		req = req.WithContext(session.NewContext(req.Context(), sess))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := serve()
	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/console/gate/roles"`)

	require.NoError(t, storage.SetJSON(context.Background(), store, storage.GateKey("roles"),
		model.AccessGrant{Granted: true, ExpiresAt: now.Add(time.Minute)}))
	assert.Equal(t, http.StatusOK, serve().Code)

	require.NoError(t, storage.SetJSON(context.Background(), store, storage.GateKey("roles"),
		model.AccessGrant{Granted: true, ExpiresAt: now.Add(-time.Second)}))
	assert.Equal(t, http.StatusLocked, serve().Code)
}

func TestRequireGrant_NoSession(t *testing.T) {
	h := RequireGrant(GrantConfig{Section: "settings", GatePath: "/console/gate/settings"})(ok200)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusLocked, rec.Code)
}
