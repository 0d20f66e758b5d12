package http

import (
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"acm-portal/internal/service"
)

// RouterConfig contiene las opciones transversales del router.
type RouterConfig struct {
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	MaxBodyBytes   int64
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	cfg RouterConfig,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	eventH *EventHandler,
	contactH *ContactHandler,
	healthH *HealthHandler,
) *gin.Engine {
	r := gin.New()
	if cfg.MaxBodyBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxBodyBytes
	}

	r.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{"Content-Length", requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		requestIDMiddleware(),
		zapLoggerMiddleware(logger),
		ginzap.RecoveryWithZap(logger, true),
		jsonContentTypeMiddleware(),
	)

	r.GET("/healthz", healthH.Healthz)

	auth := JWTAuthMiddleware(jwtSvc)
	api := r.Group("/api", rateLimitMiddleware(newIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)))

	users := api.Group("/users")
	users.POST("/register", userH.Register)
	users.POST("/login", userH.Login)
	users.POST("/forgot", userH.Forgot)
	users.POST("/confirmation", userH.ResendConfirmation)
	users.GET("/confirm/:token", userH.Confirm)
	users.GET("/reset/:token", userH.ResetLanding)
	users.POST("/reset/:token", userH.Reset)
	users.POST("/contact-us", contactH.ContactUs)

	users.GET("/profile", auth, userH.Profile)
	users.PUT("/update-resume", auth, userH.UpdateResume)
	users.POST("/upload-resume", auth, userH.UploadResume)
	users.PUT("/update-user", auth, userH.UpdateUser)

	events := api.Group("/events")
	events.GET("", eventH.List)
	events.GET("/:id/attendees", eventH.Attendees)
	events.POST("/:id/rsvp", auth, eventH.RSVP)
	events.DELETE("/:id/rsvp", auth, eventH.CancelRSVP)

	return r
}
