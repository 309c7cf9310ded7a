package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/config"
	"github.com/Shreenikagenaiapps/nestmate-app/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Apartment      ApartmentHTTP
	Listing        ListingHTTP
	Booking        BookingHTTP
	Chat           ChatHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(corsConfig(cfg)))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
		api.PUT("/auth/me", h.Auth.UpdateMe)
	}
	if h.Apartment != nil {
		api.GET("/apartments", h.Apartment.List)
	}
	if h.Listing != nil {
		api.GET("/listings", h.Listing.Browse)
		api.POST("/listings", h.Listing.Create)
		api.GET("/listings/:id", h.Listing.Get)
		api.POST("/listings/:id/photo", h.Listing.UploadPhoto)
		api.GET("/me/listings", h.Listing.Mine)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/me/bookings", h.Booking.Mine)
	}
	if h.Chat != nil {
		api.POST("/listings/:id/chat", h.Chat.Resolve)
		api.GET("/me/conversations", h.Chat.MyConversations)
		chatGroup := api.Group("/chats/:key")
		chatGroup.GET("/messages", h.Chat.Messages)
		chatGroup.POST("/messages", h.Chat.Send)
		chatGroup.POST("/read", h.Chat.MarkRead)
		chatGroup.GET("/stream", h.Chat.Stream)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func corsConfig(cfg config.Config) cors.Config {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
