// Command docseald starts the document issuance and verification server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"docseal/internal/config"
	"docseal/internal/domain"
	"docseal/internal/infra/artifacts"
	"docseal/internal/infra/auth"
	"docseal/internal/infra/db"
	httpinfra "docseal/internal/infra/http"
	"docseal/internal/infra/policyopa"
	"docseal/internal/infra/push"
	"docseal/internal/infra/stamp"
	"docseal/internal/keys"
	"docseal/internal/token"
	"docseal/internal/usecase"
)

func main() {
	cfg := config.FromEnv()

	logger := newLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting", zap.String("addr", cfg.HTTPAddr))

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.NewStore(cfg)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	if err := store.Migrate(); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	var passphrase []byte
	if cfg.KeyPassphrase != "" {
		passphrase = []byte(cfg.KeyPassphrase)
	}
	custodian, err := keys.LoadOrCreate(cfg.KeyDir, passphrase)
	if err != nil {
		logger.Fatal("load signing keys", zap.Error(err))
	}
	codec := token.NewCodec(custodian)

	artifactStore, err := artifacts.NewStore(cfg.ArtifactDir)
	if err != nil {
		logger.Fatal("open artifact store", zap.Error(err))
	}

	var authorizer domain.Authorizer
	if cfg.AuthzPolicyPath != "" {
		authorizer, err = policyopa.NewEngineFromPath(ctx, cfg.AuthzPolicyPath)
	} else {
		authorizer, err = policyopa.NewEngine(ctx)
	}
	if err != nil {
		logger.Fatal("compile authorization policy", zap.Error(err))
	}

	documents := db.NewDocumentRepository(store.DB)
	accounts := db.NewStaffAccountRepository(store.DB)
	owners := db.NewOwnerRepository(store.DB)
	audit := db.NewDeletionAuditRepository(store.DB)
	notifications := db.NewNotificationRepository(store.DB)

	registry := push.NewRegistry()
	worker := push.NewWorker(cfg.PushQueueSize, registry, notifications, logger)
	go worker.Run(ctx)

	notifier := &usecase.Notifier{
		Notifications: notifications,
		Accounts:      accounts,
		Push:          worker,
	}

	sessions := auth.NewSessions([]byte(cfg.JWTSecret), time.Duration(cfg.SessionTTLHours)*time.Hour)
	embedder := stamp.NewEmbedder()
	verifyURL := func(tok string) string { return stamp.VerifyURL(cfg.PublicBaseURL, tok) }

	server := httpinfra.NewServerWithDeps(cfg, httpinfra.ServerDeps{
		Login: &usecase.Login{
			Accounts: accounts,
			Verify:   auth.VerifyPassword,
		},
		Issue: &usecase.IssueDocument{
			Documents: documents,
			Owners:    owners,
			Accounts:  accounts,
			Artifacts: artifactStore,
			Embedder:  embedder,
			Signer:    custodian,
			Codec:     codec,
			Authz:     authorizer,
			VerifyURL: verifyURL,
		},
		Verify: &usecase.VerifyDocument{
			Documents: documents,
			Signer:    custodian,
			Codec:     codec,
		},
		SoftDelete: &usecase.SoftDeleteDocument{
			Documents: documents,
			Codec:     codec,
			Notifier:  notifier,
			Authz:     authorizer,
		},
		Recover: &usecase.RecoverDocuments{
			Documents: documents,
			Codec:     codec,
			Notifier:  notifier,
			Authz:     authorizer,
		},
		CheckConflict: &usecase.CheckConflict{
			Documents: documents,
			Codec:     codec,
		},
		Edit: &usecase.EditDocument{
			Documents: documents,
			Owners:    owners,
			Accounts:  accounts,
			Artifacts: artifactStore,
			Audit:     audit,
			Codec:     codec,
			Notifier:  notifier,
			Authz:     authorizer,
		},
		Notifier:    notifier,
		Documents:   documents,
		Accounts:    accounts,
		Owners:      owners,
		Artifacts:   artifactStore,
		Codec:       codec,
		Sessions:    sessions,
		Registry:    registry,
		Undelivered: notifications,
		AuditLog:    audit,
		Log:         logger,
	})

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		logger.Fatal("server exited", zap.Error(err))
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		os.Exit(1)
	}
	return logger
}
