package app

import (
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/gridline/spreadpool/external/accounts"
	"github.com/gridline/spreadpool/external/gamefeed"
	"github.com/gridline/spreadpool/external/jobqueue"
	"github.com/gridline/spreadpool/external/paymentledger"
	"github.com/gridline/spreadpool/internal/config"
	"github.com/gridline/spreadpool/internal/domain/leaderboard"
	"github.com/gridline/spreadpool/internal/domain/payment"
	"github.com/gridline/spreadpool/internal/domain/pick"
	"github.com/gridline/spreadpool/internal/infrastructure/repository/cached"
	"github.com/gridline/spreadpool/internal/infrastructure/repository/postgres"
	"github.com/gridline/spreadpool/internal/interfaces/httpapi"
	"github.com/gridline/spreadpool/internal/platform/cache"
	idgen "github.com/gridline/spreadpool/internal/platform/id"
	"github.com/gridline/spreadpool/internal/platform/logging"
	"github.com/gridline/spreadpool/internal/platform/resilience"
	"github.com/gridline/spreadpool/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Connect("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	gameRepo := postgres.NewGameRepository(db)
	pickRepo := postgres.NewPickRepository(db)
	anonRepo := postgres.NewAnonymousPickRepository(db)
	overrideRepo := postgres.NewSourceOverrideRepository(db)
	dispatchRepo := postgres.NewJobDispatchRepository(db)

	var leaderboardRepo leaderboard.Repository = postgres.NewPeriodSummaryRepository(db)
	if cfg.CacheEnabled {
		leaderboardRepo = cached.NewLeaderboardRepository(leaderboardRepo, cache.NewStore(cfg.CacheTTL))
	}

	accountsClient := accounts.NewClient(accounts.ClientConfig{
		BaseURL: cfg.AccountsBaseURL,
		APIKey:  cfg.AccountsAPIKey,
		Timeout: cfg.AccountsTimeout,
		Logger:  logger,
	})

	var feed usecase.GameFeedProvider
	if cfg.GameFeedEnabled {
		feed = gamefeed.NewClient(gamefeed.ClientConfig{
			BaseURL:    cfg.GameFeedBaseURL,
			Token:      cfg.GameFeedToken,
			Timeout:    cfg.GameFeedTimeout,
			MaxRetries: cfg.GameFeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.GameFeedCircuitEnabled,
				FailureThreshold: cfg.GameFeedCircuitFailureCount,
				OpenTimeout:      cfg.GameFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.GameFeedCircuitHalfOpenMaxReq,
			},
		})
	} else {
		logger.Info("game feed disabled", "reason", "GAMEFEED_ENABLED=false")
	}

	var payments payment.Provider
	if cfg.LedgerEnabled {
		payments = paymentledger.NewClient(paymentledger.ClientConfig{
			BaseURL:    cfg.LedgerBaseURL,
			APIKey:     cfg.LedgerAPIKey,
			Timeout:    cfg.LedgerTimeout,
			MaxRetries: cfg.LedgerMaxRetries,
			Logger:     logger,
		})
	} else {
		logger.Info("payment ledger disabled", "reason", "LEDGER_ENABLED=false")
	}

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	} else {
		logger.Info("job queue disabled, recomputes run inline", "reason", "QSTASH_ENABLED=false")
	}

	precedenceSvc := usecase.NewPrecedenceService(pickRepo, anonRepo, overrideRepo, nil)
	standingsSvc := usecase.NewStandingsService(
		leaderboardRepo,
		pickRepo,
		anonRepo,
		precedenceSvc,
		accountsClient,
		payments,
		cfg.RecomputeWorkerCount,
		logger,
	)
	recomputeSvc := usecase.NewRecomputeService(
		standingsSvc,
		gameRepo,
		queue,
		dispatchRepo,
		usecase.RecomputeConfig{
			Debounce: cfg.RecomputeDebounce,
			Inline:   !cfg.QStashEnabled,
		},
		logger,
	)
	gradingSvc := usecase.NewGradingService(gameRepo, pickRepo, anonRepo, feed, recomputeSvc, logger)
	recomputeSvc.BindGrading(gradingSvc)
	precedenceSvc.BindInvalidator(recomputeSvc)

	pickSvc := usecase.NewPickService(
		pickRepo,
		anonRepo,
		gameRepo,
		precedenceSvc,
		idgen.NewRandomGenerator(),
		pick.DefaultRules(),
		recomputeSvc,
		logger,
	)

	handler := httpapi.NewHandler(pickSvc, gradingSvc, standingsSvc, precedenceSvc, recomputeSvc, logger)
	router := httpapi.NewRouter(handler, accountsClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}
