package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"firebase.google.com/go/v4/auth"

	relayclient "github.com/GregMSThompson/gift-budget/internal/client/relay"
	vertexclient "github.com/GregMSThompson/gift-budget/internal/client/vertex"
	"github.com/GregMSThompson/gift-budget/internal/config"
	"github.com/GregMSThompson/gift-budget/internal/store"
	"github.com/GregMSThompson/gift-budget/internal/suggest"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Secrets   *secretmanager.Client
	Completer suggest.Completer

	closers []func() error
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.HandlerFor(cfg.LogFormat))
	bs.Firestore, err = InitFirestore(applicationCtx, bs.Log, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	bs.closers = append(bs.closers, bs.Firestore.Close)

	bs.Firebase, err = InitAuth(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}

	bs.Completer, err = initCompleter(applicationCtx, bs, cfg)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

func initCompleter(ctx context.Context, bs *Bootstrap, cfg *config.Config) (suggest.Completer, error) {
	switch cfg.LLMProvider {
	case config.ProviderVertex:
		adapter, err := vertexclient.NewAdapter(ctx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
		if err != nil {
			return nil, fmt.Errorf("vertex client: %w", err)
		}
		bs.closers = append(bs.closers, adapter.Close)
		return adapter, nil

	default:
		token := cfg.RelayToken
		if cfg.RelayTokenSecret != "" {
			secret, err := bs.secret(ctx, cfg.ProjectID, cfg.RelayTokenSecret)
			if err != nil {
				return nil, err
			}
			token = secret
		}
		return relayclient.New(cfg.RelayURL, token, cfg.LLMModel, cfg.LLMTimeout), nil
	}
}

func (bs *Bootstrap) secret(ctx context.Context, projectID, name string) (string, error) {
	if bs.Secrets == nil {
		client, err := InitSecretManager(ctx)
		if err != nil {
			return "", err
		}
		bs.Secrets = client
		bs.closers = append(bs.closers, client.Close)
	}
	return store.NewSecretsStore(bs.Secrets, projectID).AccessSecret(ctx, name)
}

func (bs *Bootstrap) Close() error {
	var errList []error
	for i := len(bs.closers) - 1; i >= 0; i-- {
		if err := bs.closers[i](); err != nil {
			errList = append(errList, err)
		}
	}
	bs.closers = nil
	return errors.Join(errList...)
}

// RelayBootstrap holds what cmd/relay needs.
type RelayBootstrap struct {
	Log    *slog.Logger
	APIKey string
}

func RunRelay(cfg *config.RelayConfig) (*RelayBootstrap, error) {
	ctx := context.Background()
	bs := &RelayBootstrap{
		Log:    logger.New(cfg.LogLevel, logger.HandlerFor(cfg.LogFormat)),
		APIKey: cfg.APIKey,
	}
	if cfg.APIKeySecret == "" {
		return bs, nil
	}

	client, err := InitSecretManager(ctx)
	if err != nil {
		return bs, err
	}
	defer client.Close()

	bs.APIKey, err = store.NewSecretsStore(client, cfg.ProjectID).AccessSecret(ctx, cfg.APIKeySecret)
	return bs, err
}
