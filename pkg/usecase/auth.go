package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
	"github.com/aoi-lab/chatkeeper/pkg/domain/model"
	"github.com/aoi-lab/chatkeeper/pkg/domain/types"
	"github.com/aoi-lab/chatkeeper/pkg/utils/logging"
	"github.com/aoi-lab/chatkeeper/pkg/utils/safe"
)

// userScopes are the user-token scopes requested during installation
const userScopes = "users.profile:read,users.profile:write,channels:read,channels:history,chat:write"

// AuthUseCase runs the OAuth v2 install flow and the credential upsert
type AuthUseCase struct {
	repo  interfaces.Repository
	cache *Cache
	nowFn func() time.Time

	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client

	authorizeURL string
	tokenURL     string
}

type authConfig struct {
	clientID     string
	clientSecret string
	redirectURL  string
	httpClient   *http.Client
}

func newAuthUseCase(repo interfaces.Repository, cache *Cache, nowFn func() time.Time, cfg authConfig) *AuthUseCase {
	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &AuthUseCase{
		repo:         repo,
		cache:        cache,
		nowFn:        nowFn,
		clientID:     cfg.clientID,
		clientSecret: cfg.clientSecret,
		redirectURL:  cfg.redirectURL,
		httpClient:   httpClient,
		authorizeURL: "https://slack.com/oauth/v2/authorize",
		tokenURL:     "https://slack.com/api/oauth.v2.access",
	}
}

// OAuthEnabled reports whether the install flow is configured
func (uc *AuthUseCase) OAuthEnabled() bool {
	return uc.clientID != "" && uc.clientSecret != ""
}

// AuthorizeURL returns the Slack authorization URL for the install page
func (uc *AuthUseCase) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", uc.clientID)
	params.Set("user_scope", userScopes)
	params.Set("state", state)
	if uc.redirectURL != "" {
		params.Set("redirect_uri", uc.redirectURL)
	}

	return uc.authorizeURL + "?" + params.Encode()
}

// oauthAccessResponse is the relevant slice of the oauth.v2.access payload
type oauthAccessResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Team  struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	AuthedUser struct {
		ID          string `json:"id"`
		Scope       string `json:"scope"`
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	} `json:"authed_user"`
}

// HandleCallback exchanges the authorization code for a user token and
// upserts the user's record.
func (uc *AuthUseCase) HandleCallback(ctx context.Context, code string) (types.UserID, error) {
	if !uc.OAuthEnabled() {
		return "", goerr.Wrap(ErrAuthorizationFailed, "oauth is not configured")
	}

	resp, err := uc.exchangeCode(ctx, code)
	if err != nil {
		return "", goerr.Wrap(err, "failed to exchange authorization code")
	}

	if !resp.OK || resp.Error != "" {
		return "", goerr.Wrap(ErrAuthorizationFailed, "slack rejected the code exchange",
			goerr.V("slack_error", resp.Error))
	}

	userID := types.UserID(resp.AuthedUser.ID)
	token := resp.AuthedUser.AccessToken
	if userID == "" || token == "" {
		return "", goerr.Wrap(ErrAuthorizationFailed, "token response misses user credentials")
	}

	if err := uc.HandleAuthorization(ctx, userID, token); err != nil {
		return "", err
	}

	return userID, nil
}

// exchangeCode calls oauth.v2.access with the authorization code
func (uc *AuthUseCase) exchangeCode(ctx context.Context, code string) (*oauthAccessResponse, error) {
	data := url.Values{}
	data.Set("client_id", uc.clientID)
	data.Set("client_secret", uc.clientSecret)
	data.Set("code", code)
	if uc.redirectURL != "" {
		data.Set("redirect_uri", uc.redirectURL)
	}

	encoded := data.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uc.tokenURL, strings.NewReader(encoded))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.ContentLength = int64(len(encoded))

	resp, err := uc.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to call token endpoint")
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token response")
	}

	var tokenResp oauthAccessResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, goerr.Wrap(err, "failed to parse token response")
	}

	return &tokenResp, nil
}

// HandleAuthorization upserts a user's credential: a first authorization
// creates a fresh record, a re-authorization swaps the token while keeping
// the cached conversational state. The store write happens first; the
// cache is only mutated once the credential is durable.
func (uc *AuthUseCase) HandleAuthorization(ctx context.Context, userID types.UserID, token string) error {
	if userID == "" || token == "" {
		return goerr.New("user ID and token are required", goerr.V("user", userID))
	}

	unlock := uc.cache.LockUser(userID)
	defer unlock()

	now := uc.nowFn()

	rec, ok := uc.cache.Get(userID)
	if ok {
		rec.Token = token
		rec.UpdatedAt = now
	} else {
		rec = &model.UserRecord{
			ID:           userID,
			Token:        token,
			AuthorizedAt: now,
			UpdatedAt:    now,
		}
	}

	if err := uc.repo.User().Put(ctx, rec); err != nil {
		return goerr.Wrap(err, "failed to persist user credential", goerr.V("user", userID))
	}

	uc.cache.Put(rec)

	logging.From(ctx).Info("user authorized", "user", userID, "renewed", ok)
	return nil
}
