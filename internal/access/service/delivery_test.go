package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/careshare/internal/access/domain"
	"github.com/stretchr/testify/require"
)

func TestWebhookSender(t *testing.T) {
	ctx := context.Background()

	var got webhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Target == "fail@example.com" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	s := &WebhookSender{URL: srv.URL, Client: srv.Client()}

	require.NoError(t, s.Send(ctx, "alice@example.com", domain.ChannelEmail, "Login code: 123456"))
	require.Equal(t, webhookPayload{Target: "alice@example.com", Channel: "email", Message: "Login code: 123456"}, got)

	require.Error(t, s.Send(ctx, "fail@example.com", domain.ChannelEmail, "Login code: 123456"))
}

func TestLogSender(t *testing.T) {
	t.Parallel()
	require.NoError(t, LogSender{}.Send(context.Background(), "alice@example.com", domain.ChannelEmail, "Login code: 123456"))
}
