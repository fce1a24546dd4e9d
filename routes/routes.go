package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meeting-backend/controllers"
	"meeting-backend/middleware"
	"meeting-backend/models"
)

func parseCorsOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ORIGINS"))
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// SetupRouter รับ Controller Instances เข้ามาเพื่อกำหนด Route
func SetupRouter(
	db *gorm.DB,
	logger *zap.Logger,
	bc *controllers.BookingController,
	bkc *controllers.BackupController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	origins := parseCorsOrigins()
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.POST("/logout", controllers.Logout)
			auth.GET("/me", middleware.RequireAuth(db), controllers.Me)
		}

		// Authenticated user surface
		authed := api.Group("")
		authed.Use(middleware.RequireAuth(db))
		{
			rooms := authed.Group("/rooms")
			{
				rooms.GET("", controllers.GetRooms)
				rooms.GET("/:id", controllers.GetRoom)
				rooms.GET("/:id/schedules", controllers.GetRoomSchedules)
			}

			bookings := authed.Group("/bookings")
			{
				bookings.GET("", bc.GetBookings)
				bookings.POST("", bc.CreateBooking)
				bookings.GET("/:id", bc.GetBooking)
				bookings.PUT("/:id", bc.UpdateBooking)
				bookings.DELETE("/:id", bc.CancelBooking)
			}

			authed.POST("/feedbacks", controllers.CreateFeedback)
			authed.PUT("/users/me", controllers.UpdateProfile)

			notifications := authed.Group("/notifications")
			{
				notifications.GET("", controllers.GetNotifications)
				notifications.PUT("/:id/read", controllers.MarkNotificationRead)
			}
		}

		// Staff/admin booking management
		manage := api.Group("/admin/bookings")
		manage.Use(middleware.RequireAuth(db), middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
		{
			manage.GET("", bc.GetAllBookings)
			manage.PUT("/:id", bc.UpdateBookingStatus)
		}

		// Admin-only surface
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAuth(db), middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", controllers.GetUsers)
			admin.PUT("/users/:id/verification", controllers.UpdateUserVerification)
			admin.DELETE("/users/:id", controllers.DeleteUser)

			admin.POST("/rooms", controllers.CreateRoom)
			admin.PUT("/rooms/:id", controllers.UpdateRoom)
			admin.DELETE("/rooms/:id", controllers.DeleteRoom)

			admin.POST("/schedules", controllers.CreateSchedule)
			admin.PUT("/schedules/:id", controllers.UpdateSchedule)
			admin.DELETE("/schedules/:id", controllers.DeleteSchedule)

			admin.GET("/feedbacks", controllers.GetFeedbacks)

			admin.GET("/backup", bkc.GetStatus)
			admin.POST("/backup", bkc.CreateBackup)
			admin.POST("/backup/restore", bkc.RestoreBackup)
		}
	}

	return r
}
