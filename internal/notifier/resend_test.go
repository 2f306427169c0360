package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tarslive/waitlist-api/internal/log"
)

func TestResendNotifier_SendsWelcomeEmail(t *testing.T) {
	var captured sendEmailRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewResendNotifier(&ResendConfig{
		APIKey:   "re_test_key",
		From:     "Waitlist <hello@tars.live>",
		Endpoint: server.URL,
	}, log.NewLoggerWithJSONOutput())

	err := sender.SendWelcomeEmail(context.Background(), "zoe@gmail.com", "Zoë")

	require.NoError(t, err)
	assert.Equal(t, "Bearer re_test_key", authHeader)
	assert.Equal(t, "zoe@gmail.com", captured.To)
	assert.Equal(t, "Waitlist <hello@tars.live>", captured.From)
	assert.Equal(t, "Welcome to the Waitlist!", captured.Subject)
	assert.Contains(t, captured.HTML, "Hi Zoë,")
}

func TestResendNotifier_ProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewResendNotifier(&ResendConfig{
		APIKey:   "re_bad_key",
		From:     "Waitlist <hello@tars.live>",
		Endpoint: server.URL,
	}, log.NewLoggerWithJSONOutput())

	err := sender.SendWelcomeEmail(context.Background(), "zoe@gmail.com", "Zoë")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestResendNotifier_DisabledWithoutAPIKey(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	sender := NewResendNotifier(&ResendConfig{
		APIKey:   "",
		Endpoint: server.URL,
	}, log.NewLoggerWithJSONOutput())

	err := sender.SendWelcomeEmail(context.Background(), "zoe@gmail.com", "Zoë")

	require.NoError(t, err)
	assert.Zero(t, requests)
}

func TestResendNotifier_EscapesTemplateInput(t *testing.T) {
	var captured sendEmailRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
	}))
	defer server.Close()

	sender := NewResendNotifier(&ResendConfig{
		APIKey:   "re_test_key",
		Endpoint: server.URL,
	}, log.NewLoggerWithJSONOutput())

	err := sender.SendWelcomeEmail(context.Background(), "x@gmail.com", `<script>alert("x")</script>`)

	require.NoError(t, err)
	assert.NotContains(t, captured.HTML, "<script>")
}
