package initializers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hackvote/internal/handlers"
	"hackvote/internal/handlers/mdlwr"
	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/imagestore"
	"hackvote/pkg/notify"
	"hackvote/pkg/ranking"
	"hackvote/pkg/team"
	"hackvote/pkg/user"
	"hackvote/pkg/vote"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const shutdownTimeout = 30 * time.Second

// NewRouter wires repos, handlers and middleware over db.
func NewRouter(zapLogger *zap.Logger, cfg Config, db *gorm.DB, images imagestore.Store, hub *notify.Hub) (*gin.Engine, error) {
	logger := zapLogger.Sugar()

	auth, err := mdlwr.NewAuthMiddleware(cfg.JWTSecret, user.ParseStaticAdmins(cfg.AdminUserIDs), cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	eventRepo := event.NewEventsRepoPg(logger, db)
	teamRepo := team.NewTeamsRepoPg(logger, db)
	awardRepo := award.NewAwardsRepoPg(logger, db)
	voteRepo := vote.NewVotesRepoPg(logger, db)

	teamSvc := team.NewService(logger, teamRepo, images)
	agg := ranking.NewAggregator(logger, eventRepo, teamRepo, awardRepo, voteRepo)

	h := routeHandlers{
		events:  handlers.NewEventHandler(logger, eventRepo, hub),
		teams:   handlers.NewTeamHandler(logger, teamSvc, hub),
		awards:  handlers.NewAwardHandler(logger, awardRepo, hub),
		votes:   handlers.NewVoteHandler(logger, voteRepo, hub),
		ranking: handlers.NewRankingHandler(logger, agg),
		live:    hub.ServeWS,
	}

	router := gin.New()
	initMetricsMdlwr(router)

	router.Use(ginzap.GinzapWithConfig(zapLogger, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		Skipper: func(c *gin.Context) bool {
			return c.Request.URL.Path == "/health" && c.Request.Method == "GET"
		},
	}))

	router.Use(ginzap.RecoveryWithZap(zapLogger, true))
	initCORS(router, cfg.CORSOrigins)

	initHealthRoute(router)
	initImageRoute(router, cfg)
	initpprof(router, cfg)

	api := authGroup(router, auth)
	initEventRoutes(api, h)
	initTeamRoutes(api, h)
	initVoteRoutes(api, h)
	initAdminRoutes(api, h, mdlwr.RequireAdmin)

	return router, nil
}

func RunServer() {
	startGetEnv()
	cfg := LoadConfig()

	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	zapLogger := startLogger(cfg.LogLevel)

	defer func(zapLogger *zap.Logger) {
		// stderr sync fails with EINVAL on some terminals
		_ = zapLogger.Sync()
	}(zapLogger)

	logger := zapLogger.Sugar()
	db := startPostgres(cfg.PgDSN)

	gormAutoMigrate(db, cfg)

	images, err := imagestore.NewLocalStore(logger, cfg.ImageDir, cfg.ImageBaseURL)
	if err != nil {
		logger.Fatalw("Error initializing image store", "err", err)
	}

	hub := notify.NewHub(logger, originChecker(cfg.CORSOrigins))

	router, err := NewRouter(zapLogger, cfg, db, images, hub)
	if err != nil {
		logger.Fatalw("Error initializing router", "err", err)
	}

	metricsSrv := initMetricsServer(cfg.MetricsPort)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting main server on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	go func() {
		logger.Info("Starting metrics server on port " + cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down the server")

	wg := &sync.WaitGroup{}

	for _, s := range []*http.Server{srv, metricsSrv} {
		wg.Add(1)
		go func(s *http.Server) {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := s.Shutdown(ctx); err != nil {
				logger.Errorw("the server was forced to shutdown", "addr", s.Addr, "err", err)
			}
		}(s)
	}

	wg.Wait()

	logger.Info("Server exited")
}

// RunMigrate applies the schema regardless of ENVIRONMENT.
func RunMigrate() {
	startGetEnv()

	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		log.Fatalf("PG_DSN environment variable not set")
	}

	db := startPostgres(dsn)
	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Migration finished")
}

// IssueDevToken signs a token for local testing with the configured secret.
func IssueDevToken(userID string, admin bool) (string, time.Time, error) {
	startGetEnv()
	cfg := LoadConfig()

	auth, err := mdlwr.NewAuthMiddleware(cfg.JWTSecret, nil, cfg.TokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return mdlwr.IssueToken(auth, user.Principal{UserID: userID, IsAdmin: admin})
}

func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return nil
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
