package usecase

import (
	"net/http"
	"time"

	"github.com/aoi-lab/chatkeeper/pkg/domain/interfaces"
	"github.com/aoi-lab/chatkeeper/pkg/domain/model/config"
	slacksvc "github.com/aoi-lab/chatkeeper/pkg/service/slack"
)

// UseCases bundles the application's use case objects
type UseCases struct {
	Event *EventUseCase
	Auth  *AuthUseCase

	repo       interfaces.Repository
	factory    slacksvc.Factory
	engineCfg  *config.Engine
	nowFn      func() time.Time
	httpClient *http.Client

	oauthClientID     string
	oauthClientSecret string
	oauthRedirectURL  string
}

type Option func(*UseCases)

// WithEngineConfig overrides the default engine tuning
func WithEngineConfig(cfg *config.Engine) Option {
	return func(uc *UseCases) {
		uc.engineCfg = cfg
	}
}

// WithClock injects the time source, mainly for tests
func WithClock(nowFn func() time.Time) Option {
	return func(uc *UseCases) {
		uc.nowFn = nowFn
	}
}

// WithOAuth enables the authorization flow. Without it, the web layer
// serves no install pages.
func WithOAuth(clientID, clientSecret, redirectURL string) Option {
	return func(uc *UseCases) {
		uc.oauthClientID = clientID
		uc.oauthClientSecret = clientSecret
		uc.oauthRedirectURL = redirectURL
	}
}

// WithHTTPClient overrides the HTTP client used for the OAuth exchange
func WithHTTPClient(client *http.Client) Option {
	return func(uc *UseCases) {
		uc.httpClient = client
	}
}

// New wires the use cases around a shared cache
func New(repo interfaces.Repository, factory slacksvc.Factory, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:       repo,
		factory:    factory,
		engineCfg:  config.DefaultEngine(),
		nowFn:      time.Now,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(uc)
	}

	cache := NewCache()
	uc.Event = newEventUseCase(repo, factory, cache, uc.engineCfg, uc.nowFn)
	uc.Auth = newAuthUseCase(repo, cache, uc.nowFn, authConfig{
		clientID:     uc.oauthClientID,
		clientSecret: uc.oauthClientSecret,
		redirectURL:  uc.oauthRedirectURL,
		httpClient:   uc.httpClient,
	})

	return uc
}
