package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/conectahub/intranet-api/internal/logger"
	"github.com/conectahub/intranet-api/internal/middleware"
	"github.com/conectahub/intranet-api/internal/services"
)

// Services bundles the services the HTTP layer depends on.
type Services struct {
	Users         *services.UserService
	Tasks         *services.TaskService
	Messages      *services.MessageService
	Notifications *services.NotificationService
	Data          *services.DataService
	Ranking       *services.RankingService
}

// RegisterRoutes mounts the API under /api. Session middleware must already
// be installed on the engine.
func RegisterRoutes(r *gin.Engine, svc Services, log *logger.Logger) {
	authHandler := NewAuthHandler(svc.Users, log)
	userHandler := NewUserHandler(svc.Users, log)
	taskHandler := NewTaskHandler(svc.Tasks, log)
	messageHandler := NewMessageHandler(svc.Messages, log)
	notificationHandler := NewNotificationHandler(svc.Notifications, log)
	dataHandler := NewDataHandler(svc.Data, svc.Users, svc.Ranking, log)

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// User routes (protected, writes are admin only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/lookup", userHandler.LookupUser)
			users.GET("/:id", userHandler.GetUser)
			users.POST("", middleware.RequireAdmin(), userHandler.CreateUser)
			users.PATCH("/:id", middleware.RequireAdmin(), userHandler.UpdateUser)
			users.DELETE("/:id", middleware.RequireAdmin(), userHandler.DeleteUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.LoadTask(svc.Tasks), taskHandler.GetTask)
			tasks.POST("/:id/assign", taskHandler.AssignTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
		}

		// Message routes (protected)
		messages := api.Group("/messages")
		messages.Use(middleware.RequireAuth())
		{
			messages.GET("/conversations", messageHandler.ListConversations)
			messages.POST("", messageHandler.SendMessage)
			messages.POST("/:id/read", messageHandler.MarkAsRead)
		}

		// Notification routes (protected)
		notifications := api.Group("/notifications")
		notifications.Use(middleware.RequireAuth())
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
			notifications.POST("/:id/read", notificationHandler.MarkAsRead)
		}

		api.GET("/ranking", middleware.RequireAuth(), dataHandler.Ranking)
		api.GET("/stats", middleware.RequireAuth(), dataHandler.Stats)

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(), middleware.RequireAdmin())
		{
			admin.GET("/export", dataHandler.Export)
			admin.POST("/import", dataHandler.Import)
			admin.DELETE("/data", dataHandler.Clear)
			admin.POST("/seed", dataHandler.Seed)
			admin.POST("/notify", notificationHandler.NotifyDepartment)
		}
	}
}
