package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	apihttp "clubledger/internal/api/http"
	"clubledger/internal/audit"
	"clubledger/internal/auth"
	"clubledger/internal/eventing"
	eventingrepo "clubledger/internal/eventing/infrastructure/postgres"
	feesapp "clubledger/internal/fees/application"
	feesrepo "clubledger/internal/fees/infrastructure/postgres"
	feesinterfaces "clubledger/internal/fees/interfaces"
	feeshttp "clubledger/internal/fees/interfaces/http"
	"clubledger/internal/observability/metrics"
	rosterrepo "clubledger/internal/roster/infrastructure/postgres"
	"clubledger/internal/settings"
	stats "clubledger/internal/stats/domain"
	statsrepo "clubledger/internal/stats/infrastructure/postgres"
	statsinterfaces "clubledger/internal/stats/interfaces"
	statshttp "clubledger/internal/stats/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	matchChecker := auth.NewMatchChecker(db)
	auditRepo := audit.NewRepository(db)

	policy, err := feesapp.LoadPolicy()
	if err != nil {
		logger.Fatalf("fee policy error: %v", err)
	}

	baseBus := eventing.NewInMemoryBus()
	registry := eventing.NewRegistry()
	registry.Register(feesapp.FeesRecalculated{})
	registry.Register(feesapp.OverrideApplied{})
	registry.Register(stats.MonthlyStatsRecomputed{})

	outboxStore := eventingrepo.NewOutboxStore(db)
	processedStore := eventingrepo.NewProcessedStore(db)
	dlqStore := eventingrepo.NewDLQStore(db)
	dispatcher := eventing.NewDispatcher(baseBus, outboxStore, registry, dlqStore)
	publisher := eventing.NewPublisher(outboxStore, dispatcher, cfg.ClubID, baseBus)

	settingsStore := settings.NewPostgresStore(db)
	settingsProvider, err := settings.NewCachedProvider(
		settingsStore,
		nil,
		settings.WithTTL(cfg.SettingsTTL),
		settings.WithDefaults(policy.VideoFeeRate, policy.LateFeeRate),
	)
	if err != nil {
		logger.Fatalf("settings provider error: %v", err)
	}

	matchRepo := rosterrepo.NewMatchRepository(db, cfg.ClubID)
	resultRepo := feesrepo.NewResultRepository(db)
	overrideRepo := feesrepo.NewOverrideRepository(db)
	participantRepo := feesrepo.NewParticipantRepository(db)
	aggregateRepo := statsrepo.NewAggregateRepository(db, cfg.ClubID)

	feesPublisher := feesinterfaces.NewOutboxPublisher(publisher, cfg.ClubID)
	recalcService, err := feesapp.NewMatchRecalculationService(
		matchRepo,
		participantRepo,
		resultRepo,
		overrideRepo,
		settingsProvider,
		feesPublisher,
		feesapp.SystemClock{},
	)
	if err != nil {
		logger.Fatalf("recalculation service error: %v", err)
	}
	overrideService, err := feesapp.NewOverrideService(overrideRepo, feesPublisher, feesapp.SystemClock{})
	if err != nil {
		logger.Fatalf("override service error: %v", err)
	}

	statsPublisher := statsinterfaces.NewOutboxPublisher(publisher, cfg.ClubID)
	rollupService, err := stats.NewRollupService(matchRepo, aggregateRepo, statsPublisher, stats.SystemClock{})
	if err != nil {
		logger.Fatalf("rollup service error: %v", err)
	}

	refoldHandler, err := statsinterfaces.NewFeesRecalculatedHandler(matchRepo, rollupService, logger)
	if err != nil {
		logger.Fatalf("stats consumer error: %v", err)
	}
	eventing.Subscribe(baseBus, eventing.EventTypeOf[feesapp.FeesRecalculated](), "stats.refold", func(ctx context.Context, event any) error {
		evt, ok := event.(feesapp.FeesRecalculated)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		return refoldHandler.HandleFeesRecalculated(ctx, evt)
	}, processedStore)
	eventing.Subscribe(baseBus, eventing.EventTypeOf[feesapp.OverrideApplied](), "fees.override.log", func(ctx context.Context, event any) error {
		evt, ok := event.(feesapp.OverrideApplied)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		if evt.Removed {
			logger.Printf("override removed: match=%s player=%s", evt.MatchID, evt.PlayerID)
			return nil
		}
		logger.Printf("override applied: match=%s player=%s amount=%.2f", evt.MatchID, evt.PlayerID, evt.Amount)
		return nil
	}, processedStore)

	feesHandler, err := feeshttp.NewHandler(recalcService, overrideService, resultRepo, overrideRepo, matchChecker, auditRepo)
	if err != nil {
		logger.Fatalf("fees handler error: %v", err)
	}
	statsHandler, err := statshttp.NewHandler(rollupService, aggregateRepo, auditRepo)
	if err != nil {
		logger.Fatalf("stats handler error: %v", err)
	}
	statementHandler, err := feesinterfaces.NewStatementHandler(aggregateRepo, matchRepo, policy.Currency)
	if err != nil {
		logger.Fatalf("statement handler error: %v", err)
	}
	settingsHandler, err := settings.NewHandler(settingsProvider, settingsStore)
	if err != nil {
		logger.Fatalf("settings handler error: %v", err)
	}

	// Drain outbox records left over from crashed or failed dispatches.
	go func() {
		ticker := time.NewTicker(cfg.OutboxDrainInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := dispatcher.Dispatch(context.Background(), cfg.OutboxDrainBatch); err != nil {
				logger.Printf("outbox drain error: %v", err)
			}
		}
	}()

	authPolicy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), authPolicy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/matches", apihttp.NewMatchesHandler(db, cfg.ClubID))
	mux.Handle("/api/v1/matches/", feesHandler)
	mux.Handle("/api/v1/stats/monthly", statsHandler)
	mux.Handle("/api/v1/stats/rollup", statsHandler)
	mux.Handle("/api/v1/statements/", statementHandler)
	mux.Handle("/api/v1/exports/fees.csv", apihttp.NewExportFeesCSVHandler(db, cfg.ClubID))
	mux.Handle("/api/v1/settings", settingsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL         string
	HTTPAddr            string
	ClubID              string
	JWTSecret           string
	SettingsTTL         time.Duration
	OutboxDrainInterval time.Duration
	OutboxDrainBatch    int
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:         getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:            getenvDefault("HTTP_ADDR", ":8080"),
		ClubID:              getenvDefault("CLUB_ID", "club-demo"),
		JWTSecret:           getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		SettingsTTL:         getenvDuration("SETTINGS_CACHE_TTL", settings.DefaultTTL),
		OutboxDrainInterval: getenvDuration("OUTBOX_DRAIN_INTERVAL", 15*time.Second),
		OutboxDrainBatch:    getenvIntDefault("OUTBOX_DRAIN_BATCH", 50),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
