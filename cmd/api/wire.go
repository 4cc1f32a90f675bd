package main

import (
	"context"
	"fmt"

	"insurance-claims-backend/internal/adapter/blob"
	httpadp "insurance-claims-backend/internal/adapter/http"
	"insurance-claims-backend/internal/adapter/repository/gormrepo"
	"insurance-claims-backend/internal/config"
	"insurance-claims-backend/internal/infrastructure/auth"
	"insurance-claims-backend/internal/infrastructure/cache"
	"insurance-claims-backend/internal/infrastructure/db"
	"insurance-claims-backend/internal/infrastructure/logger"
	"insurance-claims-backend/internal/infrastructure/metrics"
	"insurance-claims-backend/internal/infrastructure/objectstore"
	"insurance-claims-backend/internal/usecase/assignment"
	claimuc "insurance-claims-backend/internal/usecase/claim"
	docuc "insurance-claims-backend/internal/usecase/document"
	useruc "insurance-claims-backend/internal/usecase/user"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds the long-lived resources so the caller can release them.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	db    *gorm.DB
	redis *redis.Client
	users *useruc.Usecase
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	a.log.Sync()
}

// bootstrap loads config and opens the database; every command needs both.
func bootstrap() (*app, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if port != "" {
		cfg.AppPort = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN(), !cfg.IsProd())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	return &app{cfg: cfg, log: log, db: gdb}, nil
}

func (a *app) blobStore(ctx context.Context) (docuc.BlobStore, error) {
	if a.cfg.BlobBackend == "s3" {
		awsConf, err := objectstore.LoadAWS(ctx, a.cfg.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return blob.NewS3Store(objectstore.NewS3Client(awsConf, a.cfg.AWSEndpoint), a.cfg.S3Bucket, "claims/"), nil
	}
	return blob.NewLocalStore(a.cfg.BlobLocalDir)
}

func (a *app) userUsecase(tokens useruc.TokenIssuer) *useruc.Usecase {
	repos := gormrepo.NewRepos(a.db)
	return useruc.NewUsecase(repos.Users, repos.ClaimTypes, gormrepo.NewGormUoW(a.db), tokens, a.log)
}

// router wires every use case behind the echo router. Redis is optional in
// dev: without it idempotency keys are ignored.
func (a *app) router(ctx context.Context) (*echo.Echo, error) {
	store, err := a.blobStore(ctx)
	if err != nil {
		return nil, err
	}
	checks := []httpadp.Check{{Name: "database", Fn: db.Check(a.db)}}

	rdb, err := cache.OpenRedis(ctx, a.cfg.RedisAddr, a.cfg.RedisDB)
	switch {
	case err == nil:
		a.redis = rdb
		checks = append(checks, httpadp.Check{Name: "redis", Fn: cache.Check(rdb)})
	case a.cfg.IsProd():
		return nil, fmt.Errorf("redis %s: %w", a.cfg.RedisAddr, err)
	default:
		a.log.Warn("redis unavailable, idempotency disabled", "addr", a.cfg.RedisAddr, "error", err)
	}

	m := metrics.New()
	tokens := auth.NewTokens(a.cfg.JWTSecret, a.cfg.JWTTTL())
	repos := gormrepo.NewRepos(a.db)
	tx := gormrepo.NewGormUoW(a.db)
	ledger := docuc.NewLedger(store, a.log.With("component", "ledger"))

	claims := claimuc.NewUsecase(repos, tx, ledger,
		claimuc.WithLogger(a.log.With("component", "claims")),
		claimuc.WithRecorder(m),
	)
	assign := assignment.NewUsecase(tx, m, a.log.With("component", "assignment"))
	docs := docuc.NewUsecase(repos.Claims, repos.Documents, store)
	a.users = a.userUsecase(tokens)

	if a.cfg.AuthDevBypass {
		a.log.Warn("AUTH_DEV_BYPASS is on: X-User-Id/X-User-Role headers are trusted")
	}
	return httpadp.NewRouter(httpadp.RouterDeps{
		Log:            a.log,
		Tokens:         tokens,
		Actors:         a.users,
		DevBypass:      a.cfg.AuthDevBypass,
		Redis:          a.redis,
		IdempotencyTTL: a.cfg.IdempotencyTTL(),
		Metrics:        m,
		Health:         httpadp.NewHandler(checks...),
		Claims:         httpadp.NewClaimHandler(claims, assign, a.log),
		Users:          httpadp.NewUserHandler(a.users, a.log),
		Documents:      httpadp.NewDocumentHandler(docs, a.log),
	}), nil
}
