package http

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/kumarshivu12/advanced-todo/internal/auth"
	"github.com/kumarshivu12/advanced-todo/internal/config"
	"github.com/kumarshivu12/advanced-todo/internal/http/handlers"
	"github.com/kumarshivu12/advanced-todo/internal/http/middlewares"
	"github.com/kumarshivu12/advanced-todo/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const serviceName = "advanced-todo"

// UserStore is everything the router needs from the user backend.
type UserStore interface {
	handlers.UserStore
	middlewares.UserLookup
	auth.RefreshTokenStore
	Ping(ctx context.Context) error
}

type TodoStore interface {
	handlers.TodoStore
}

type Deps struct {
	Log    *slog.Logger
	Config config.Config
	Users  UserStore
	Todos  TodoStore

	// Prom and Gatherer are optional; /metrics is only mounted with a Gatherer.
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers.RegisterValidators()

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	if len(d.Config.CORSOrigins) > 0 {
		r.Use(middlewares.CORS(d.Config.CORSOrigins))
	}
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	r.Use(middlewares.RequireJSON())

	// health
	health := handlers.NewHealthHandler(d.Users.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// wire up auth
	jwtManager := auth.NewManager(
		d.Config.AccessTokenSecret,
		d.Config.RefreshTokenSecret,
		d.Config.AccessTokenTTL,
		d.Config.RefreshTokenTTL,
	)
	tokenService := auth.NewService(jwtManager, d.Users)
	requireAuth := middlewares.NewAuthMiddleware(jwtManager, d.Users).RequireAuth()

	// Wire up handlers
	// cookies live exactly as long as the tokens they carry
	authHandler := handlers.NewAuthHandler(d.Users, tokenService, handlers.CookieConfig{
		Secure:     d.Config.CookieSecure,
		AccessTTL:  jwtManager.AccessTTL(),
		RefreshTTL: jwtManager.RefreshTTL(),
	}, d.Prom)
	userHandler := handlers.NewUserHandler()
	todoHandler := handlers.NewTodoHandler(d.Todos)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/", requireAuth, handlers.Authed(authHandler.CheckAuth))
		authGroup.POST("/register-user", handlers.Handle(authHandler.Register))
		authGroup.POST("/login-user", handlers.Handle(authHandler.Login))
		authGroup.POST("/logout-user", requireAuth, handlers.Authed(authHandler.Logout))
	}

	userGroup := r.Group("/user", requireAuth)
	{
		userGroup.GET("/", handlers.Authed(userHandler.CurrentUser))
	}

	todoGroup := r.Group("/todo", requireAuth)
	{
		todoGroup.POST("/", handlers.Authed(todoHandler.Create))
		todoGroup.GET("/", handlers.Authed(todoHandler.List))
		todoGroup.PATCH("/:todoId", handlers.Authed(todoHandler.Update))
		todoGroup.DELETE("/:todoId", handlers.Authed(todoHandler.Delete))
	}

	return r
}
