package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMailer(t *testing.T, handler http.HandlerFunc) *ResendMailer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	m := NewResendMailer("re_test", "academia@example.com", nil)
	m.client.BaseURL = base
	return m
}

func TestSendTemporaryPassword(t *testing.T) {
	var got map[string]interface{}
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1"}`))
	})

	require.NoError(t, m.SendTemporaryPassword(context.Background(), "bruno@x.com", "Ab3dE6gH"))
	assert.Equal(t, "academia@example.com", got["from"])
	assert.Equal(t, []interface{}{"bruno@x.com"}, got["to"])
	assert.Contains(t, got["text"], "Ab3dE6gH")
}

func TestSendTemporaryPasswordFailure(t *testing.T) {
	m := newTestMailer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"invalid from"}`))
	})

	err := m.SendTemporaryPassword(context.Background(), "bruno@x.com", "Ab3dE6gH")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend send failed")
}
