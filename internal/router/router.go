package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/auth"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/handlers"
	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/middleware"
	"gorm.io/gorm"
)

type Options struct {
	AllowedOrigins []string
	Verifier       *auth.Verifier
	DB             *gorm.DB
	RateLimit      gin.HandlerFunc
	Log            *slog.Logger
}

func NewRouter(h *handlers.Handler, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(opts.Log), middleware.RequestID(), middleware.AccessLog(opts.Log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if opts.RateLimit != nil {
		r.Use(opts.RateLimit)
	}

	requireAuth := middleware.AuthMiddleware(opts.Verifier, opts.DB, opts.Log)

	api := r.Group("/api/v1")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/ws", requireAuth, h.WebSocket)
		api.GET("/auth/me", requireAuth, h.Me)

		orders := api.Group("/restaurant/orders", requireAuth)
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.ListOrders)
			orders.GET("/:id", h.GetOrder)
			orders.POST("/:id/items", h.AddItems)
			orders.PATCH("/:id/items/:itemId", h.UpdateItemStatus)
			orders.POST("/:id/items/:itemId/cancel", h.CancelItem)
			orders.POST("/:id/items/:itemId/transfer", h.TransferItem)
			orders.PATCH("/:id/status", h.UpdateOrderStatus)
		}

		restaurants := api.Group("/restaurants/:restaurantId", requireAuth)
		{
			restaurants.POST("/orders/:id/accept", h.AcceptOrder)
			restaurants.POST("/orders/:id/reject", h.RejectOrder)
			restaurants.GET("/kitchen/orders", h.KitchenQueue)
			restaurants.GET("/tables", h.ListTables)
			restaurants.POST("/tables", h.CreateTable)
			restaurants.POST("/kitchens", h.BindKitchen)
		}

		notifications := api.Group("/notifications", requireAuth)
		{
			notifications.GET("", h.ListNotifications)
			notifications.GET("/unread-count", h.UnreadCount)
			notifications.PATCH("/read-all", h.MarkAllNotificationsRead)
			notifications.PATCH("/:id/read", h.MarkNotificationRead)
			notifications.DELETE("/:id", h.DeleteNotification)
			notifications.DELETE("", h.ClearNotifications)
		}
	}

	return r
}
