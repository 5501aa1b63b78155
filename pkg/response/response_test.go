package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oyna-console/pkg/apierror"
)

type body struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) body {
	t.Helper()
	var b body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b
}

func TestWriters(t *testing.T) {
	tests := []struct {
		name        string
		write       func(http.ResponseWriter)
		wantStatus  int
		wantSuccess bool
	}{
		{"ok", func(w http.ResponseWriter) { OK(w, map[string]int{"id": 1}) }, http.StatusOK, true},
		{"created", func(w http.ResponseWriter) { Created(w, map[string]int{"id": 1}) }, http.StatusCreated, true},
		{"fail", func(w http.ResponseWriter) { Fail(w, http.StatusBadGateway, map[string]int{"id": 1}) }, http.StatusBadGateway, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			b := decode(t, rec)
			assert.Equal(t, tt.wantSuccess, b.Success)
			assert.JSONEq(t, `{"id":1}`, string(b.Data))
		})
	}
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, apierror.Locked(""))
	assert.Equal(t, http.StatusLocked, rec.Code)
	assert.Equal(t, "LOCKED", decode(t, rec).Error.Code)

	rec = httptest.NewRecorder()
	Error(rec, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decode(t, rec).Error.Code)
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
