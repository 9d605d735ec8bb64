package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "jbcnews/internal/docs" // swagger docs
	"jbcnews/internal/handlers"
	"jbcnews/internal/middleware"
	"jbcnews/internal/models"
	"jbcnews/internal/services"
)

// RouterDeps are the collaborators of the HTTP API.
type RouterDeps struct {
	Services       Services
	Auth           *middleware.JWTAuth
	Pusher         handlers.BreakingPusher
	Ingester       handlers.Ingester
	PipelineAPIKey string
	CORSOrigins    []string
}

// NewRouter builds the gin engine of the HTTP API.
func NewRouter(deps RouterDeps) *gin.Engine {
	svc := deps.Services

	authHandler := handlers.NewAuthHandler(svc.Users, deps.Auth)
	newsHandler := handlers.NewNewsHandler(svc.News, svc.Countries, deps.Pusher, svc.Audit)
	ticketHandler := handlers.NewTicketHandler(svc.Tickets, svc.Audit)
	staffHandler := handlers.NewStaffHandler(svc.Staff, svc.Audit)
	pipelineHandler := handlers.NewPipelineHandler(deps.Ingester, svc.Audit)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:  deps.CORSOrigins,
			AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.APIKeyHeader},
			ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	v1.POST("/auth/login", authHandler.Login)
	v1.GET("/news", newsHandler.ListNews)
	v1.GET("/news/:id", newsHandler.GetNews)

	// Staff routes
	staff := v1.Group("/")
	staff.Use(deps.Auth.AuthMiddleware(), middleware.RequireRole(models.RoleStaff, models.RoleAdmin))
	staff.GET("/profile", authHandler.GetProfile)
	staff.POST("/news/:id/breaking", newsHandler.PushBreaking)
	tickets := staff.Group("/tickets")
	tickets.GET("", ticketHandler.ListTickets)
	tickets.GET("/:ticket_id", ticketHandler.GetTicket)
	tickets.POST("/:ticket_id/responses", ticketHandler.AddResponse)
	tickets.PATCH("/:ticket_id/status", ticketHandler.UpdateStatus)

	// Admin routes
	admin := v1.Group("/")
	admin.Use(deps.Auth.AuthMiddleware(), middleware.RequireRole(models.RoleAdmin))
	admin.POST("/staff", staffHandler.Promote)

	// Machine routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(deps.PipelineAPIKey))
	pipeline.POST("/ingest", pipelineHandler.IngestAll)
	pipeline.POST("/ingest/:country", pipelineHandler.IngestCountry)

	return router
}

// Services bundles the data services shared by the API and the bots.
type Services struct {
	Users      services.UserServicer
	Staff      services.StaffServicer
	Countries  services.CountryServicer
	Categories services.CategoryServicer
	News       services.NewsServicer
	Tickets    services.TicketServicer
	Sessions   services.SessionServicer
	Stats      services.StatsServicer
	Audit      services.AuditServicer
}
