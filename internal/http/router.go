package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leolynk/leolynk/internal/access"
	"github.com/leolynk/leolynk/internal/auth"
	"github.com/leolynk/leolynk/internal/config"
	"github.com/leolynk/leolynk/internal/http/handlers"
	"github.com/leolynk/leolynk/internal/http/middlewares"
	"github.com/leolynk/leolynk/internal/observability"
	"github.com/leolynk/leolynk/internal/redisclient"
	"github.com/leolynk/leolynk/internal/repo/postgres"
	"github.com/leolynk/leolynk/internal/reports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// renders per user per minute
const reportRenderLimit = 30

type Deps struct {
	Cfg      config.Config
	Pool     *pgxpool.Pool
	Redis    *redisclient.Client // nil when REDIS_ADDR is unset
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
	JWT      *auth.Manager
	Reports  *reports.Renderer
}

func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Cfg

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if cfg.OTelEnabled {
		r.Use(otelgin.Middleware("leolynk-api"))
	}
	r.Use(middlewares.RequestLogger())
	r.Use(deps.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(middlewares.BodyLimits{JSON: cfg.MaxJSONBodyBytes, Reports: cfg.MaxBodyBytes}))

	// repositories

	clubsRepo := postgres.NewClubsRepo(deps.Pool, deps.Prom)
	usersRepo := postgres.NewUsersRepo(deps.Pool, deps.Prom)
	refreshRepo := postgres.NewRefreshTokensRepo(deps.Pool, deps.Prom)
	projectsRepo := postgres.NewProjectsRepo(deps.Pool, deps.Prom)
	meetingsRepo := postgres.NewMeetingsRepo(deps.Pool, deps.Prom)
	eventsRepo := postgres.NewEventsRepo(deps.Pool, deps.Prom)
	financeRepo := postgres.NewFinanceRepo(deps.Pool, deps.Prom)
	mindmapsRepo := postgres.NewMindmapsRepo(deps.Pool, deps.Prom)
	dashboardRepo := postgres.NewDashboardRepo(deps.Pool, deps.Prom)
	linksRepo := postgres.NewLinksRepo(deps.Pool, deps.Prom)

	// handlers

	var redisPing handlers.Pinger
	if deps.Redis != nil {
		redisPing = deps.Redis
	}
	health := handlers.NewHealthHandler(deps.Pool, redisPing)
	authHandler := handlers.NewAuthHandler(usersRepo, deps.JWT, refreshRepo, cfg)
	clubs := handlers.NewClubsHandler(clubsRepo)
	users := handlers.NewUsersHandler(usersRepo, clubsRepo)
	projects := handlers.NewProjectsHandler(projectsRepo, financeRepo)
	meetings := handlers.NewMeetingsHandler(meetingsRepo, linksRepo)
	events := handlers.NewEventsHandler(eventsRepo)
	finance := handlers.NewFinanceHandler(financeRepo, linksRepo)
	mindmaps := handlers.NewMindmapsHandler(mindmapsRepo, linksRepo)
	dashboard := handlers.NewDashboardHandler(dashboardRepo)
	reportsHandler := handlers.NewReportsHandler(deps.Reports)

	// infra routes

	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// login is limited per client IP; the store is shared through redis when configured
	var limiterStore middlewares.LimiterStore = middlewares.NewMemoryLimiterStore()
	if deps.Redis != nil {
		limiterStore = middlewares.NewRedisLimiterStore(deps.Redis)
	}
	loginLimiter := middlewares.NewRateLimiter("login", cfg.LoginRateLimit, cfg.LoginRateWindow(), limiterStore)
	reportLimiter := middlewares.NewRateLimiter("reports", reportRenderLimit, time.Minute, limiterStore)

	api := r.Group("/api")
	requireJSON := middlewares.RequireJSON()

	authGroup := api.Group("/auth")
	authGroup.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), requireJSON, authHandler.Login)
	authGroup.POST("/refresh", authHandler.Refresh)
	authGroup.POST("/logout", authHandler.Logout)

	authMw := middlewares.NewAuthMiddleware(deps.JWT)
	protected := api.Group("")
	protected.Use(authMw.RequireAuth())

	admin := authMw.RequireRole(access.RoleAdmin)

	protected.GET("/clubs", admin, clubs.ListClubs)
	protected.POST("/clubs", admin, requireJSON, clubs.CreateClub)
	protected.GET("/clubs/:id", clubs.GetClubByID)

	protected.POST("/users", admin, requireJSON, users.CreateUser)
	protected.GET("/users/me", users.GetMe)
	protected.PUT("/users/me", requireJSON, users.UpdateMe)

	protected.POST("/projects", requireJSON, projects.CreateProject)
	protected.GET("/projects", projects.ListProjects)
	protected.GET("/projects/:id", projects.GetProjectByID)
	protected.PUT("/projects/:id", requireJSON, projects.UpdateProject)
	protected.DELETE("/projects/:id", projects.DeleteProject)
	protected.GET("/projects/:id/financial-records", projects.ListProjectRecords)

	protected.POST("/meetings", requireJSON, meetings.CreateMeeting)
	protected.GET("/meetings", meetings.ListMeetings)
	protected.GET("/meetings/:id", meetings.GetMeetingByID)
	protected.PUT("/meetings/:id", requireJSON, meetings.UpdateMeeting)
	protected.DELETE("/meetings/:id", meetings.DeleteMeeting)

	protected.POST("/events", requireJSON, events.CreateEvent)
	protected.GET("/events", events.ListEvents)
	protected.GET("/events/:id", events.GetEventByID)
	protected.PUT("/events/:id", requireJSON, events.UpdateEvent)
	protected.DELETE("/events/:id", events.DeleteEvent)

	protected.POST("/financial-records", requireJSON, finance.CreateRecord)
	protected.GET("/financial-records", finance.ListRecords)
	protected.GET("/financial-records/:id", finance.GetRecordByID)
	protected.PUT("/financial-records/:id", requireJSON, finance.UpdateRecord)
	protected.DELETE("/financial-records/:id", finance.DeleteRecord)

	protected.POST("/mindmaps", requireJSON, mindmaps.CreateMindmap)
	protected.GET("/mindmaps", mindmaps.ListMindmaps)
	protected.GET("/mindmaps/:id", mindmaps.GetMindmapByID)
	protected.GET("/mindmaps/:id/tree", mindmaps.GetMindmapTree)
	protected.PUT("/mindmaps/:id", requireJSON, mindmaps.UpdateMindmap)
	protected.DELETE("/mindmaps/:id", mindmaps.DeleteMindmap)

	protected.GET("/dashboard", dashboard.GetDashboard)

	// reports take JSON or multipart depending on the kind
	protected.GET("/reports", reportsHandler.ListReports)
	protected.POST("/reports/:kind",
		reportLimiter.Middleware(middlewares.KeyByUserOrIP),
		middlewares.RequireMediaType("application/json", "multipart/form-data"),
		reportsHandler.RenderReport)

	return r
}
