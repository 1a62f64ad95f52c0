package initializers

import (
	"log"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"hackvote/internal/handlers"
	"hackvote/internal/metrics"
	"hackvote/pkg/award"
	"hackvote/pkg/event"
	"hackvote/pkg/team"
	"hackvote/pkg/vote"

	jwt "github.com/appleboy/gin-jwt/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func startLogger(levelStr string) *zap.Logger {
	level, err := zapcore.ParseLevel(levelStr)
	if err != nil {
		log.Fatalf("Invalid log level: %v", err)
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := config.Build()
	if err != nil {
		log.Fatalf("Error initializing zap logger: %v", err)
	}

	return zapLogger
}

func startPostgres(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
	})

	if err != nil {
		log.Fatalf("Error initializing postgres: %v", err)
	}

	return db
}

// Migrate creates or updates the schema, including the unique indexes the
// ledger and the registry rely on.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&event.Event{},
		&team.Team{},
		&team.Membership{},
		&award.Award{},
		&vote.Vote{},
	)
}

func gormAutoMigrate(db *gorm.DB, cfg Config) {
	if cfg.Environment != "LOCAL" {
		return
	}

	if errAuto := Migrate(db); errAuto != nil {
		log.Fatalf("AutoMigrate failed: %v", errAuto)
		return
	}
}

func initCORS(router *gin.Engine, origins []string) {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))
}

func initMetricsMdlwr(router *gin.Engine) {
	router.Use(metrics.GinMiddleware)
}

func initMetricsServer(port string) *http.Server {
	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", metrics.Handler())

	return &http.Server{
		Addr:    ":" + port,
		Handler: metricsRouter,
	}
}

func initpprof(router *gin.Engine, cfg Config) {
	if cfg.IsProd() {
		return
	}

	debug := router.Group("/debug/pprof")
	debug.GET("/", gin.WrapF(pprof.Index))
	debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	debug.GET("/profile", gin.WrapF(pprof.Profile))
	debug.GET("/symbol", gin.WrapF(pprof.Symbol))
	debug.POST("/symbol", gin.WrapF(pprof.Symbol))
	debug.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		debug.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
}

func initHealthRoute(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func initImageRoute(router *gin.Engine, cfg Config) {
	// absolute base URLs point at a CDN or bucket that serves the files itself
	if !strings.HasPrefix(cfg.ImageBaseURL, "/") {
		return
	}
	router.Static(cfg.ImageBaseURL, cfg.ImageDir)
}

type routeHandlers struct {
	events  *handlers.EventHandler
	teams   *handlers.TeamHandler
	awards  *handlers.AwardHandler
	votes   *handlers.VoteHandler
	ranking *handlers.RankingHandler
	live    gin.HandlerFunc
}

func initEventRoutes(api *gin.RouterGroup, h routeHandlers) {
	eventsGroup := api.Group("/events")
	eventsGroup.GET("", h.events.ListEvents)
	eventsGroup.GET("/:id", h.events.GetEvent)
	eventsGroup.GET("/:id/teams", h.teams.ListTeams)
	eventsGroup.POST("/:id/teams", h.teams.RegisterTeam)
	eventsGroup.GET("/:id/awards", h.awards.ListAwards)
	eventsGroup.GET("/:id/votes/me", h.votes.MyVotes)
	eventsGroup.GET("/:id/tally", h.ranking.Tally)
	eventsGroup.GET("/:id/ranking", h.ranking.Ranking)
	eventsGroup.GET("/:id/leaderboards", h.ranking.Leaderboards)
	eventsGroup.GET("/:id/awards/:awardId/leaderboard", h.ranking.Leaderboard)
	eventsGroup.GET("/:id/live", h.live)
}

func initTeamRoutes(api *gin.RouterGroup, h routeHandlers) {
	teamsGroup := api.Group("/teams")
	teamsGroup.GET("/:id", h.teams.GetTeam)
	teamsGroup.PATCH("/:id", h.teams.UpdateTeam)
	teamsGroup.DELETE("/:id", h.teams.DeleteTeam)
}

func initVoteRoutes(api *gin.RouterGroup, h routeHandlers) {
	api.POST("/votes", h.votes.CastVote)
}

func initAdminRoutes(api *gin.RouterGroup, h routeHandlers, requireAdmin gin.HandlerFunc) {
	adminGroup := api.Group("/admin", requireAdmin)
	adminGroup.POST("/events", h.events.CreateEvent)
	adminGroup.POST("/events/:id/lifecycle", h.events.SetLifecycle)
	adminGroup.POST("/events/:id/awards", h.awards.CreateAward)
	adminGroup.PATCH("/teams/:id", h.teams.UpdateTeam)
	adminGroup.DELETE("/teams/:id", h.teams.DeleteTeam)
}

func authGroup(router *gin.Engine, auth *jwt.GinJWTMiddleware) *gin.RouterGroup {
	return router.Group("/", auth.MiddlewareFunc())
}
