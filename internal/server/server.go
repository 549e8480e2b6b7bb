package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"loginportal/internal/config"
	"loginportal/internal/handler"
	"loginportal/internal/middleware"
	"loginportal/internal/repository"
	"loginportal/internal/service"
	"loginportal/internal/session"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	log    *zap.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, log *zap.Logger) *Server {
	router := gin.Default()
	router.LoadHTMLGlob("web/templates/*.html")

	s := &Server{
		router: router,
		db:     db,
		log:    log,
	}

	s.setupRoutes(cfg)

	return s
}

func (s *Server) setupRoutes(cfg *config.Config) {
	sessions := session.NewManager(cfg.Session.Secret, time.Duration(cfg.Session.TTLMinutes)*time.Minute)

	userRepo := repository.NewUserRepository(s.log)
	authService := service.NewAuthService(s.db, userRepo, s.log)
	authHandler := handler.NewAuthHandler(authService, sessions, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.GET("/", authHandler.Home)
	s.router.GET("/signup", authHandler.ShowSignup)
	s.router.POST("/signup", authHandler.Signup)
	s.router.GET("/login", authHandler.ShowLogin)
	s.router.POST("/login", authHandler.Login)
	s.router.GET("/logout", authHandler.Logout)

	// Session-gated routes
	protected := s.router.Group("/")
	protected.Use(middleware.RequireSession(sessions, s.log))
	{
		protected.GET("/dashboard", authHandler.Dashboard)
	}
}

func (s *Server) Run(addr string) {
	s.log.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.log.Fatal("Server failed to start", zap.Error(err))
	}
}
