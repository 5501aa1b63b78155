package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api/", 2*time.Second)
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	_, err := New("ftp://example.com", time.Second)
	require.Error(t, err)

	_, err = New("://bad", time.Second)
	require.Error(t, err)
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath, gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"data":{"ok":true}}`))
	})

	var out struct {
		Data struct {
			OK bool `json:"ok"`
		} `json:"data"`
	}
	err := c.WithToken("tok-1").Get(context.Background(), "/admin/users", url.Values{"page": {"2"}, "filters": {""}}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-1", gotAuth)
	assert.Equal(t, "/api/admin/users", gotPath)
	assert.Equal(t, "page=2", gotQuery)
	assert.True(t, out.Data.OK)
}

func TestDo_NoTokenNoHeader(t *testing.T) {
	var hadAuth bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, hadAuth = r.Header["Authorization"]
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "tags/3", nil))
	assert.False(t, hadAuth)
	assert.Empty(t, c.Token())
}

func TestWithToken_DoesNotMutateOriginal(t *testing.T) {
	c, err := New("http://localhost/api", time.Second)
	require.NoError(t, err)

	authed := c.WithToken("abc")
	assert.Equal(t, "abc", authed.Token())
	assert.Empty(t, c.Token())
}

func TestDo_SendsJSONBody(t *testing.T) {
	var got map[string]string
	var contentType string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"status":"approved"}`))
	})

	var out map[string]string
	err := c.Post(context.Background(), "/admin/servers/7/approve", map[string]string{"note": "ok"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "ok", got["note"])
	assert.Equal(t, "approved", out["status"])
}

func TestPatch(t *testing.T) {
	var method, path string
	var got map[string]bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"active":false}`))
	})

	var out map[string]bool
	err := c.WithToken("tok-1").Patch(context.Background(), "advertisements/4", map[string]bool{"active": false}, &out)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "/api/advertisements/4", path)
	assert.False(t, got["active"])
	assert.Contains(t, out, "active")
}

func TestBaseURL(t *testing.T) {
	c, err := New("http://localhost:3000/api/", time.Second)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/api", c.BaseURL())
	assert.Equal(t, c.BaseURL(), c.WithToken("abc").BaseURL())
}

func TestDo_ResponseErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		code int
		body     string
		want     string
		wantBody string
	}{
		{"top-level message", http.StatusBadRequest, `{"message":"Giriş başarısız"}`, "Giriş başarısız", "Giriş başarısız"},
		{"nested error object", http.StatusConflict, `{"success":false,"error":{"code":"X","message":"Zaten var"}}`, "Zaten var", "Zaten var"},
		{"error string", http.StatusForbidden, `{"error":"forbidden"}`, "forbidden", "forbidden"},
		{"nested under data", http.StatusBadRequest, `{"data":{"message":"Geçersiz"}}`, "Geçersiz", "Geçersiz"},
		{"plain text", http.StatusBadGateway, `upstream down`, "Bad Gateway", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.code)
				w.Write([]byte(tc.body))
			})

			err := c.Get(context.Background(), "/x", nil, nil)
			re, ok := AsResponseError(err)
			require.True(t, ok, "expected *ResponseError, got %T", err)
			assert.Equal(t, tc.code, re.StatusCode)
			assert.Equal(t, tc.want, re.Message())
			assert.Equal(t, tc.wantBody, re.BodyMessage())
		})
	}
}

func TestDo_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	})

	err := c.Get(context.Background(), "/auth/me", nil, nil)
	assert.True(t, IsUnauthorized(err))

	re, _ := AsResponseError(err)
	payload, ok := re.Payload().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "token expired", payload["message"])
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(base, time.Second)
	require.NoError(t, err)

	err = c.Get(context.Background(), "/admin/users", nil, nil)
	require.Error(t, err)
	_, isResp := AsResponseError(err)
	assert.False(t, isResp)
}

func TestDo_ContextCancelled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Get(ctx, "/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGetRaw(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[1,2,3]}`))
	})

	raw, err := c.GetRaw(context.Background(), "/numbers", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[1,2,3]}`, string(raw))
}
