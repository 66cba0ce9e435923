package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bnema/cart-session-cli/internal/adapters/events"
	"github.com/bnema/cart-session-cli/internal/adapters/graphql"
	cartrender "github.com/bnema/cart-session-cli/internal/adapters/render/cart"
	"github.com/bnema/cart-session-cli/internal/adapters/storage/chain"
	filestore "github.com/bnema/cart-session-cli/internal/adapters/storage/file"
	"github.com/bnema/cart-session-cli/internal/adapters/storage/pass"
	tomlstore "github.com/bnema/cart-session-cli/internal/adapters/storage/toml"
	"github.com/bnema/cart-session-cli/internal/application"
	"github.com/bnema/cart-session-cli/internal/config"
	"github.com/bnema/cart-session-cli/internal/domain"
	"github.com/bnema/cart-session-cli/internal/logger"
	"github.com/bnema/cart-session-cli/internal/ports"
	"github.com/bnema/cart-session-cli/internal/telemetry"
	"github.com/bnema/cart-session-cli/internal/version"
)

// SigninTokenKey holds the customer token. Its presence makes the session signed in.
const SigninTokenKey = "signinToken"

type app struct {
	logger   *slog.Logger
	store    ports.KeyValueStore
	tokens   ports.KeyValueStore
	carts    *graphql.Client
	manager  *application.SessionManager
	recorder *events.Recorder
	progress *progress

	shutdownTracing func(context.Context) error

	cartRenderer   func(application.CartView) (string, error)
	eventsRenderer func([]domain.Event) (string, error)
	imagesRenderer func(map[string]domain.MediaEntry) (string, error)
}

func wireApp() (*app, error) {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{Service: "cart", Level: cfg.Log.Level})

	shutdownTracing, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "cart",
		ServiceVersion: version.Version,
		UseStdout:      cfg.Trace.Stdout,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := newTokenStore(cfg, store)
	if err != nil {
		return nil, err
	}

	token, err := tokens.Get(ctx, SigninTokenKey)
	if err != nil && !errors.Is(err, domain.ErrKeyNotFound) {
		return nil, fmt.Errorf("read signin token: %w", err)
	}

	carts, err := graphql.NewClient(graphql.Config{
		Endpoint:    cfg.GraphQL.Endpoint,
		Token:       strings.TrimSpace(token),
		Timeout:     cfg.GraphQL.Timeout,
		MaxFailures: cfg.GraphQL.BreakerMaxFailures,
		OpenTimeout: cfg.GraphQL.BreakerOpenTimeout,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("wire cart service: %w", err)
	}

	recorder := events.NewRecorder()
	shown := &progress{}
	sink := events.Fanout{recorder, events.NewLogSink(log), shown}

	return &app{
		logger:          log,
		store:           store,
		tokens:          tokens,
		carts:           carts,
		manager:         application.NewSessionManager(carts, store, sink, application.WithLogger(log)),
		recorder:        recorder,
		progress:        shown,
		shutdownTracing: shutdownTracing,
		cartRenderer:    cartrender.Render,
		eventsRenderer:  cartrender.RenderEvents,
		imagesRenderer:  cartrender.RenderImages,
	}, nil
}

func newStore(cfg *config.Config) (ports.KeyValueStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendDir:
		return filestore.NewStore(cfg.Storage.Dir), nil
	default:
		store, err := tomlstore.NewStore(cfg.Viper)
		if err != nil {
			return nil, fmt.Errorf("wire session store: %w", err)
		}
		return store, nil
	}
}

// newTokenStore keeps the signin token in the session store unless pass is selected, in
// which case the session store only serves as fallback.
func newTokenStore(cfg *config.Config, store ports.KeyValueStore) (ports.KeyValueStore, error) {
	if cfg.Auth.TokenBackend != config.TokenBackendPass {
		return store, nil
	}

	tokens, err := chain.NewStore(pass.NewStore(cfg.Auth.PassPrefix), store)
	if err != nil {
		return nil, fmt.Errorf("wire token store: %w", err)
	}
	return tokens, nil
}

// initialState starts every command without a cart in memory. EnsureCart adopts the
// persisted id, so only the signed-in flag has to be known up front.
func (a *app) initialState() domain.SessionState {
	return domain.SessionState{SignedIn: a.carts.SignedIn()}
}
