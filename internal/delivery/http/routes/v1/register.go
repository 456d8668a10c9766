package v1

import (
	"log"

	"podium/internal/database"
	"podium/internal/delivery/http/handler"
	"podium/internal/delivery/http/middleware"
	"podium/internal/extractor"
	"podium/internal/infrastructure/cache"
	"podium/internal/infrastructure/persistence/postgres"
	"podium/internal/infrastructure/storage"
	"podium/internal/pkg/jwt"
	"podium/internal/synthesizer"
	"podium/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

// Deps carries the shared infrastructure into route registration. Repos,
// usecases and handlers are built here so the app container stays thin.
type Deps struct {
	DB        database.DB
	Cache     *cache.Redis
	Store     *storage.Store
	JWT       jwt.Service
	Collector *extractor.Collector
	Synth     *synthesizer.Synthesizer
	Logger    *log.Logger
}

func Register(r fiber.Router, d Deps) {
	if r == nil {
		return
	}

	userRepo := postgres.NewUserRepository(d.DB)
	profileRepo := postgres.NewProfileRepository(d.DB)
	personalRepo := postgres.NewPersonalRepository(d.DB)

	authUC := usecase.NewAuthUsecase(userRepo, d.JWT, d.Cache)
	uploadUC := usecase.NewUploadUsecase(d.Store)
	profileUC := usecase.NewProfileUsecase(profileRepo, personalRepo, d.Collector, d.Synth, d.Store)

	authMw := middleware.NewAuthMiddleware(d.JWT, d.Cache)

	authHandler := handler.NewAuthHandler(authUC)
	uploadHandler := handler.NewUploadHandler(uploadUC)
	profileHandler := handler.NewProfileHandler(profileUC)

	// Group registers its middleware as a prefix-wide Use at creation time,
	// so the public auth routes must exist before any guarded group touches
	// the /auth prefix.
	authHandler.RegisterRoutes(r.Group("/auth"), nil)

	protected := r.Group("", authMw.Middleware())
	authHandler.RegisterRoutes(nil, protected.Group("/auth"))
	uploadHandler.RegisterRoutes(protected.Group("/uploads"))
	profileHandler.RegisterRoutes(protected.Group("/profiles"))
}
