package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/usecase"
	"github.com/aoi-lab/chatkeeper/pkg/utils/async"
	"github.com/aoi-lab/chatkeeper/pkg/utils/errutil"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
	"github.com/aoi-lab/chatkeeper/pkg/utils/safe"
)

// verifySlackSignature verifies the Slack request signature.
// This is a pure function that can be used independently for testing.
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}

	if signature == "" {
		return goerr.New("missing signature")
	}

	// Check timestamp to prevent replay attacks (within 5 minutes)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	now := time.Now().Unix()
	if now-ts > 60*5 {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SlackSignatureMiddleware creates a middleware that verifies Slack request
// signatures
func SlackSignatureMiddleware(signingSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			defer func() {
				if err := r.Body.Close(); err != nil {
					logging.From(ctx).Error("failed to close request body", "error", err)
				}
			}()

			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(signingSecret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "slack signature verification failed"), http.StatusUnauthorized)
				return
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(w, r)
		})
	}
}

// SlackWebhookHandler handles Slack Events API webhook requests
type SlackWebhookHandler struct {
	eventUC *usecase.EventUseCase
}

// NewSlackWebhookHandler creates a new Slack webhook handler
func NewSlackWebhookHandler(eventUC *usecase.EventUseCase) *SlackWebhookHandler {
	return &SlackWebhookHandler{
		eventUC: eventUC,
	}
}

// ServeHTTP handles Slack webhook requests
func (h *SlackWebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Body was already verified by the signature middleware
	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	ev, err := model.ParseEvent(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), http.StatusBadRequest)
		return
	}

	switch ev.Kind {
	case model.EventKindChallenge:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		safe.Write(ctx, w, []byte(ev.Challenge))

	case model.EventKindMessage:
		// Return 200 immediately to satisfy Slack's 3-second timeout
		w.WriteHeader(http.StatusOK)

		async.Dispatch(ctx, func(ctx context.Context) error {
			outcome, results, err := h.eventUC.HandleEvent(ctx, ev)
			if err != nil {
				return goerr.Wrap(err, "failed to handle slack event", goerr.V("event_id", ev.ID))
			}

			logging.From(ctx).Info("slack event handled",
				"event_id", ev.ID,
				"outcome", outcome,
				"deleted", model.CountDeleted(results),
				"delete_failures", len(results)-model.CountDeleted(results),
			)
			return nil
		})

	default:
		// An event shape this system does not act on; ACK so Slack stops
		// redelivering it
		logging.From(ctx).Debug("ignoring slack event", "kind", ev.Kind)
		w.WriteHeader(http.StatusOK)
	}
}
