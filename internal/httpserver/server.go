package httpserver

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/evmyshkin/mvpy/internal/audit"
	"github.com/evmyshkin/mvpy/internal/auth"
	"github.com/evmyshkin/mvpy/internal/config"
	"github.com/evmyshkin/mvpy/internal/metrics"
	"github.com/evmyshkin/mvpy/internal/services/roles"
	"github.com/evmyshkin/mvpy/internal/services/users"
	"github.com/evmyshkin/mvpy/internal/store"
)

// Server bundles the services mounted by NewRouter.
type Server struct {
	Auth      *auth.Service
	Validator *auth.Validator
	Resolver  *auth.Resolver
	Users     *users.Service
	Roles     *roles.Service
	Audit     *audit.Recorder
	Metrics   *metrics.Recorder
	Gatherer  prometheus.Gatherer
	Log       *zap.SugaredLogger

	RequestTimeout time.Duration
	CORSOrigins    []string
}

// NewServer wires repositories and services on top of db. Counters are
// registered on reg, which also backs GET /metrics.
func NewServer(db *gorm.DB, cfg config.Config, reg *prometheus.Registry, lg *zap.SugaredLogger) (Server, error) {
	userRepo := store.NewUserRepo(db)
	roleRepo := store.NewRoleRepo(db)
	revocations := store.NewRevocationRepo(db)

	tokens := auth.TokenConfig{
		Secret:    []byte(cfg.JWTSecret),
		Algorithm: cfg.JWTAlgorithm,
		TTL:       cfg.TokenTTL(),
	}
	issuer, err := auth.NewIssuer(tokens)
	if err != nil {
		return Server{}, err
	}
	validator, err := auth.NewValidator(tokens, revocations)
	if err != nil {
		return Server{}, err
	}

	return Server{
		Auth:           auth.NewService(userRepo, revocations, issuer, validator, cfg.BcryptCost),
		Validator:      validator,
		Resolver:       auth.NewResolver(userRepo),
		Users:          users.NewService(userRepo, roleRepo, cfg.BcryptCost, lg),
		Roles:          roles.NewService(roleRepo),
		Audit:          audit.NewRecorder(db, lg),
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		Log:            lg,
		RequestTimeout: cfg.RequestTimeout,
		CORSOrigins:    cfg.CORSOrigins,
	}, nil
}
