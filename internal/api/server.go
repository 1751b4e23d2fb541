package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/vietanh2810/callin-contest-api/docs"
	v1 "github.com/vietanh2810/callin-contest-api/internal/api/handler/v1"
	"github.com/vietanh2810/callin-contest-api/internal/api/middleware"
	"github.com/vietanh2810/callin-contest-api/internal/config"
	"github.com/vietanh2810/callin-contest-api/internal/pkg/identity"
	"github.com/vietanh2810/callin-contest-api/internal/ratelimit"
	"github.com/vietanh2810/callin-contest-api/internal/repository"
	"github.com/vietanh2810/callin-contest-api/internal/repository/dao"
	"github.com/vietanh2810/callin-contest-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB, limiter *ratelimit.Limiter) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	hasher := identity.NewHasher(conf.Database.HashCost)
	participantRepo := repository.NewParticipantRepository(dao.NewParticipantDAO(db), hasher)

	authService := service.NewAuthService(repository.NewAdminRepository(dao.NewAdminDAO(db)))

	authHandler := v1.NewAuthHandler(s.Config.API, authService)
	registrationHandler := s.initRegistrationHandler(participantRepo, limiter)
	drawHandler := s.initDrawHandler(participantRepo)
	participantHandler := s.initParticipantHandler(participantRepo, hasher)
	s.MountHandlers(middleware.NewAuthenticator(s.Config.API.JWTSigningKey, authService),
		authHandler, registrationHandler, drawHandler, participantHandler)

	return s
}

func (s *Server) initRegistrationHandler(repo *repository.ParticipantRepository, limiter *ratelimit.Limiter) *v1.RegistrationHandler {
	svc := service.NewRegistrationService(limiter, repo, s.Config.Database.QueryTimeout)
	handler := v1.NewRegistrationHandler(svc)

	return handler
}

func (s *Server) initDrawHandler(repo *repository.ParticipantRepository) *v1.DrawHandler {
	svc := service.NewDrawService(repo, s.Config.Draw)
	handler := v1.NewDrawHandler(svc)

	return handler
}

func (s *Server) initParticipantHandler(repo *repository.ParticipantRepository, hasher *identity.Hasher) *v1.ParticipantHandler {
	svc := service.NewParticipantService(repo, hasher)
	handler := v1.NewParticipantHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authenticator *middleware.Authenticator,
	authHandler *v1.AuthHandler,
	registrationHandler *v1.RegistrationHandler,
	drawHandler *v1.DrawHandler,
	participantHandler *v1.ParticipantHandler,
) {
	const basePath = "/api/v1"

	public := s.Router.Group(basePath)
	{
		public.POST("/auth/login", authHandler.HandleLogin)
		public.POST("/registrations", registrationHandler.HandleRegister)
	}

	admin := s.Router.Group(basePath, authenticator.VerifyJWT())
	{
		admin.POST("/draws", drawHandler.HandleDraw)

		admin.GET("/participants", participantHandler.HandleListParticipants)
		admin.GET("/participants/:participantID", participantHandler.HandleGetParticipant)
		admin.PATCH("/participants/:participantID", participantHandler.HandleUpdateParticipant)
		admin.DELETE("/participants/:participantID", participantHandler.HandleDeleteParticipant)
		admin.POST("/participants/:participantID/reset-winner", participantHandler.HandleResetWinner)
		admin.POST("/participants/:participantID/verify-identifier", participantHandler.HandleVerifyIdentifier)

		admin.GET("/stats", participantHandler.HandleStats)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Call-in contest API"
	docs.SwaggerInfo.Description = "Caller registration and winner draws for a TV call-in contest."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
