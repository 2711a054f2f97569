package internal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/2beens/raceplan/internal/auth"
	"github.com/2beens/raceplan/internal/backup"
	"github.com/2beens/raceplan/internal/checkins"
	"github.com/2beens/raceplan/internal/config"
	"github.com/2beens/raceplan/internal/db"
	"github.com/2beens/raceplan/internal/middleware"
	"github.com/2beens/raceplan/internal/plan"
	"github.com/2beens/raceplan/internal/telemetry/metrics"
	"github.com/2beens/raceplan/internal/telemetry/tracing"
	"github.com/2beens/raceplan/internal/workouts"
)

// workoutsStore and checkinsStore abstract over the postgres and sqlite
// repo implementations, picked by config at startup.
type workoutsStore interface {
	Create(ctx context.Context, workout workouts.WorkoutDay) (*workouts.WorkoutDay, error)
	CreateMany(ctx context.Context, workoutDays []workouts.WorkoutDay) error
	Get(ctx context.Context, id string) (*workouts.WorkoutDay, error)
	GetAll(ctx context.Context) ([]workouts.WorkoutDay, error)
	GetNonRestByDate(ctx context.Context, date string) (*workouts.WorkoutDay, error)
	Update(ctx context.Context, workout *workouts.WorkoutDay) error
	Move(ctx context.Context, id, newDate, oldDate string) (*workouts.WorkoutDay, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	AddHistory(ctx context.Context, entry workouts.HistoryEntry) error
	ListHistory(ctx context.Context, limit int) ([]workouts.HistoryEntry, error)
}

type checkinsStore interface {
	Upsert(ctx context.Context, checkIn checkins.CheckIn) (*checkins.CheckIn, error)
	CreateMany(ctx context.Context, checkIns []checkins.CheckIn) error
	GetAll(ctx context.Context) ([]checkins.CheckIn, error)
	GetByDate(ctx context.Context, date string) (*checkins.CheckIn, error)
	Delete(ctx context.Context, date string) error
	DeleteAll(ctx context.Context) error
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config   *config.Config
	dbPool   *pgxpool.Pool // set when backend is postgres
	sqliteDB *sql.DB       // set when backend is sqlite

	workoutsManager *workouts.Manager
	checkinsHandler *checkins.Handler
	backupService   *backup.Service
	planStartDate   time.Time

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service
	openMode     bool // no passcode configured, mutations allowed without login

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config         *config.Config
	PasscodeHash   string
	RedisPassword  string
	VersionInfo    string
	TracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	planStartDate := plan.DefaultStartDate
	if cfg.PlanStartDate != "" {
		parsed, err := time.Parse(workouts.DateLayout, cfg.PlanStartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid plan start date %q: %w", cfg.PlanStartDate, err)
		}
		planStartDate = parsed
	}

	s := &Server{
		config:        cfg,
		versionInfo:   params.VersionInfo,
		planStartDate: planStartDate,
		openMode:      params.PasscodeHash == "",
	}

	var promCollectors []prometheus.Collector
	var workoutsRepo workoutsStore
	var checkinsRepo checkinsStore

	switch cfg.Backend {
	case "postgres":
		dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
			DBHost:         cfg.DBHost,
			DBPort:         cfg.DBPort,
			DBName:         cfg.DBName,
			TracingEnabled: params.TracingEnabled,
		})
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}
		s.dbPool = dbPool
		workoutsRepo = workouts.NewRepo(dbPool)
		checkinsRepo = checkins.NewRepo(dbPool)
		promCollectors = append(promCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.DBName},
		))
	case "sqlite":
		sqliteDB, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.sqliteDB = sqliteDB
		workoutsRepo = workouts.NewSQLiteRepo(sqliteDB)
		checkinsRepo = checkins.NewSQLiteRepo(sqliteDB)
	default:
		return nil, fmt.Errorf("unknown backend: %s", cfg.Backend)
	}

	s.promRegistry = metrics.SetupPrometheus(promCollectors...)
	s.metricsManager = metrics.NewManager("raceplan", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}
	s.redisClient = rdb

	s.authService = auth.NewAuthService(params.PasscodeHash, auth.DefaultTTL, rdb)
	s.loginChecker = auth.NewLoginChecker(auth.DefaultTTL, rdb)
	go func() {
		for range time.Tick(time.Hour * 8) {
			s.authService.ScanAndClean(ctx)
		}
	}()

	otelShutdown, err := tracing.Setup(ctx, params.TracingEnabled, "raceplan-backend", rdb)
	if err != nil {
		return nil, err
	}
	s.otelShutdown = otelShutdown

	s.workoutsManager = workouts.NewManager(
		workoutsRepo,
		plan.Generate,
		planStartDate,
		s.metricsManager,
	)
	s.checkinsHandler = checkins.NewHandler(checkinsRepo, s.metricsManager)
	s.backupService = backup.NewService(workoutsRepo, checkinsRepo)

	return s, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	workoutsHandler := workouts.NewHandler(s.workoutsManager)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", workoutsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts", workoutsHandler.HandleDeleteAll).Methods("DELETE", "OPTIONS").Name("delete-all-workouts")
	r.HandleFunc("/workouts/plan/initialize", workoutsHandler.HandleInitializePlan).Methods("POST", "OPTIONS").Name("initialize-plan")
	r.HandleFunc("/workouts/undo", workoutsHandler.HandleUndo).Methods("POST", "OPTIONS").Name("undo")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/workouts/{id}/move", workoutsHandler.HandleMove).Methods("POST", "OPTIONS").Name("move-workout")
	r.HandleFunc("/workouts/{id}/status", workoutsHandler.HandleStatus).Methods("POST", "OPTIONS").Name("workout-status")
	r.HandleFunc("/stats", workoutsHandler.HandleStats).Methods("GET", "OPTIONS").Name("stats")
	r.HandleFunc("/stats/week/{week}", workoutsHandler.HandleWeeklyStats).Methods("GET", "OPTIONS").Name("weekly-stats")
	r.HandleFunc("/history", workoutsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("history")

	planHandler := plan.NewHandler(s.planStartDate)
	r.HandleFunc("/plan/metadata", planHandler.HandleMetadata).Methods("GET", "OPTIONS").Name("plan-metadata")

	r.HandleFunc("/checkins", s.checkinsHandler.HandleUpsert).Methods("POST", "OPTIONS").Name("new-checkin")
	r.HandleFunc("/checkins", s.checkinsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-checkins")
	r.HandleFunc("/checkins/{date}", s.checkinsHandler.HandleGetByDate).Methods("GET", "OPTIONS").Name("get-checkin")
	r.HandleFunc("/checkins/{date}", s.checkinsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-checkin")

	backupHandler := backup.NewHandler(s.backupService)
	r.HandleFunc("/export/json", backupHandler.HandleExport).Methods("GET", "OPTIONS").Name("backup-export")
	r.HandleFunc("/import/json", backupHandler.HandleImport).Methods("POST", "OPTIONS").Name("backup-import")
	r.HandleFunc("/export/ical", backupHandler.HandleICalExport).Methods("GET", "OPTIONS").Name("ical-export")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	authHandler := auth.NewHandler(s.authService, s.versionInfo)
	authHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.openMode, s.loginChecker)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(host, strconv.Itoa(s.config.MetricsPort))
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if s.sqliteDB != nil {
		if err := s.sqliteDB.Close(); err != nil {
			log.Errorf("failed to close sqlite db: %s", err)
		}
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown http server")
	}
	log.Warnln("server shut down")

	if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
		log.Error(" >>> failed to gracefully shutdown metrics http server")
	}
	log.Warnln("metrics server shut down")
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
