package http_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	httpctrl "github.com/aoi-lab/chatkeeper/pkg/controller/http"
	"github.com/aoi-lab/chatkeeper/pkg/repository/memory"
	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
	"github.com/aoi-lab/chatkeeper/pkg/usecase"
)

const testSigningSecret = "test-signing-secret"

func signRequest(t *testing.T, req *http.Request, body string) {
	t.Helper()

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	_, err := mac.Write([]byte(baseString))
	gt.NoError(t, err).Required()

	req.Header.Set("X-Slack-Request-Timestamp", timestamp)
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set("Content-Type", "application/json")
}

func newTestServer(opts ...usecase.Option) *httpctrl.Server {
	uc := usecase.New(memory.New(), slacksvc.NewFactory(), opts...)
	return httpctrl.New(uc, httpctrl.WithSlackSigningSecret(testSigningSecret))
}

func TestSlackWebhookSignature(t *testing.T) {
	challenge := `{"type":"url_verification","token":"tok","challenge":"ch-42"}`

	t.Run("valid signature is accepted", func(t *testing.T) {
		srv := newTestServer()

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(challenge))
		signRequest(t, req, challenge)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("wrong signature is rejected", func(t *testing.T) {
		srv := newTestServer()

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(challenge))
		signRequest(t, req, challenge)
		req.Header.Set("X-Slack-Signature", "v0=deadbeef")

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("missing headers are rejected", func(t *testing.T) {
		srv := newTestServer()

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(challenge))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("stale timestamp is rejected", func(t *testing.T) {
		srv := newTestServer()

		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(challenge))
		signRequest(t, req, challenge)
		req.Header.Set("X-Slack-Request-Timestamp",
			strconv.FormatInt(time.Now().Add(-10*time.Minute).Unix(), 10))

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusUnauthorized)
	})
}

func TestSlackWebhookEvents(t *testing.T) {
	t.Run("challenge is echoed back", func(t *testing.T) {
		srv := newTestServer()

		body := `{"type":"url_verification","token":"tok","challenge":"ch-42"}`
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(body))
		signRequest(t, req, body)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Body.String()).Equal("ch-42")
	})

	t.Run("message event is acknowledged immediately", func(t *testing.T) {
		srv := newTestServer()

		body := `{
			"type": "event_callback",
			"event_id": "Ev1",
			"event_time": 100,
			"team_id": "T1",
			"event": {
				"type": "message",
				"user": "U123",
				"channel": "C123",
				"text": "hello",
				"ts": "100.000100",
				"channel_type": "channel"
			}
		}`
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(body))
		signRequest(t, req, body)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("unhandled event shapes are acknowledged", func(t *testing.T) {
		srv := newTestServer()

		body := `{
			"type": "event_callback",
			"event_id": "Ev2",
			"event_time": 101,
			"team_id": "T1",
			"event": {
				"type": "reaction_added",
				"user": "U123",
				"reaction": "thumbsup",
				"event_ts": "101.000100"
			}
		}`
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(body))
		signRequest(t, req, body)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
	})

	t.Run("garbage body is a bad request", func(t *testing.T) {
		srv := newTestServer()

		body := `{not json`
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack/event", strings.NewReader(body))
		signRequest(t, req, body)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})
}

func TestInstallPages(t *testing.T) {
	t.Run("install page links to slack with a state cookie", func(t *testing.T) {
		srv := newTestServer(usecase.WithOAuth("client-1", "secret-1", "https://example.com/slack"))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Bool(t, strings.Contains(rec.Body.String(), "Add to Slack")).True()
		gt.Bool(t, strings.Contains(rec.Body.String(), "slack.com/oauth/v2/authorize")).True()

		cookies := rec.Result().Cookies()
		gt.Array(t, cookies).Length(1).Required()
		gt.Value(t, cookies[0].Name).Equal("chatkeeper_oauth_state")
		gt.Bool(t, cookies[0].Value != "").True()
	})

	t.Run("callback without a code is a bad request", func(t *testing.T) {
		srv := newTestServer(usecase.WithOAuth("client-1", "secret-1", "https://example.com/slack"))

		req := httptest.NewRequest(http.MethodGet, "/slack", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("callback with mismatched state is a bad request", func(t *testing.T) {
		srv := newTestServer(usecase.WithOAuth("client-1", "secret-1", "https://example.com/slack"))

		req := httptest.NewRequest(http.MethodGet, "/slack?code=c&state=other", nil)
		req.AddCookie(&http.Cookie{Name: "chatkeeper_oauth_state", Value: "expected"})
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("denied authorization renders the failure page", func(t *testing.T) {
		srv := newTestServer(usecase.WithOAuth("client-1", "secret-1", "https://example.com/slack"))

		req := httptest.NewRequest(http.MethodGet, "/slack?error=access_denied", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Bool(t, strings.Contains(rec.Body.String(), "Authorization failed")).True()
	})

	t.Run("install routes are absent without oauth", func(t *testing.T) {
		srv := newTestServer()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}
