package chatengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestCompleteChatDecodesReply(t *testing.T) {
	srv := completionServer(t, http.StatusOK,
		`{"choices":[{"message":{"content":"Hola, soy su asistente legal."}}]}`)
	defer srv.Close()

	got, err := completeChat(context.Background(),
		Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"},
		[]message{{Role: "user", Content: "hola"}})
	require.NoError(t, err)
	require.Equal(t, "Hola, soy su asistente legal.", got)
}

func TestCompleteChatSendsTemperatureAndModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "deepseek-chat", payload["model"])
		require.Equal(t, completionTemperature, payload["temperature"])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	_, err := completeChat(context.Background(),
		Config{APIKey: "test-key", BaseURL: srv.URL, Model: "deepseek-chat"},
		[]message{{Role: "user", Content: "hola"}})
	require.NoError(t, err)
}

func TestCompleteChatQuotaFromStatus429(t *testing.T) {
	srv := completionServer(t, http.StatusTooManyRequests, `{"error":"rate limited"}`)
	defer srv.Close()

	_, err := completeChat(context.Background(),
		Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"}, nil)
	require.Error(t, err)
	require.True(t, isQuotaError(err))
}

func TestCompleteChatQuotaFromErrorBody(t *testing.T) {
	srv := completionServer(t, http.StatusForbidden,
		`{"error":{"code":"insufficient_quota"}}`)
	defer srv.Close()

	_, err := completeChat(context.Background(),
		Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"}, nil)
	require.Error(t, err)
	require.True(t, isQuotaError(err))
}

func TestCompleteChatOtherErrorsAreNotQuota(t *testing.T) {
	srv := completionServer(t, http.StatusInternalServerError, `oops`)
	defer srv.Close()

	_, err := completeChat(context.Background(),
		Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"}, nil)
	require.Error(t, err)
	require.False(t, isQuotaError(err))
}

func TestCompleteChatEmptyChoices(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"choices":[]}`)
	defer srv.Close()

	_, err := completeChat(context.Background(),
		Config{APIKey: "test-key", BaseURL: srv.URL, Model: "m"}, nil)
	require.Error(t, err)
}
