package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlatformKey(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"apikey header", map[string]string{"apikey": "anon-key"}, "anon-key"},
		{"bearer", map[string]string{"Authorization": "Bearer anon-key"}, "anon-key"},
		{"lowercase bearer", map[string]string{"Authorization": "bearer anon-key"}, "anon-key"},
		{"raw authorization", map[string]string{"Authorization": "anon-key"}, "anon-key"},
		{"apikey wins", map[string]string{"apikey": "a", "Authorization": "Bearer b"}, "a"},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, PlatformKey(req))
		})
	}
}

func TestRequirePlatformKey_Missing(t *testing.T) {
	rec := httptest.NewRecorder()
	RequirePlatformKey()(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, MissingPlatformKeyMessage, body["error"])
}

func TestRequirePlatformKey_Present(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("apikey", "anon")
	rec := httptest.NewRecorder()
	RequirePlatformKey()(okHandler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
