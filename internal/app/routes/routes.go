package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/emre/gatherly/internal/app/controllers"
	"github.com/emre/gatherly/internal/app/models"
	"github.com/emre/gatherly/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	activityController *controllers.ActivityController,
	commentController *controllers.CommentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Public Activity routes ---
	activities := v1.Group("/activities")
	{
		activities.GET("", activityController.GetActivities)
		activities.GET("/categories", activityController.GetCategories)
		activities.GET("/:id", activityController.GetActivityByID)
		activities.GET("/:id/comments", commentController.GetComments)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)

		users := authenticated.Group("/users")
		{
			users.GET("/me", userController.GetProfile)
			users.PUT("/me", userController.UpdateProfile)
			users.PUT("/me/password", userController.ChangePassword)
			users.GET("/me/comments", commentController.GetMyComments)
		}

		activitiesProtected := authenticated.Group("/activities")
		{
			// Literal segments must be registered before they collide
			// with the :id wildcard on other methods.
			activitiesProtected.GET("/my", activityController.GetMyActivities)
			activitiesProtected.GET("/enrolled", activityController.GetMyEnrolledActivities)

			activitiesProtected.POST("", activityController.CreateActivity)
			activitiesProtected.PUT("/:id", activityController.UpdateActivity)
			activitiesProtected.POST("/:id/status", activityController.SetStatus)
			activitiesProtected.POST("/:id/cancel", activityController.CancelActivity)
			activitiesProtected.GET("/:id/enrollments", activityController.GetActivityEnrollments)

			activitiesProtected.POST("/:id/enroll", activityController.Enroll)
			activitiesProtected.DELETE("/:id/enroll", activityController.CancelEnrollment)

			activitiesProtected.POST("/:id/comments", commentController.AddComment)
		}

		comments := authenticated.Group("/comments")
		{
			comments.PUT("/:id", commentController.UpdateComment)
			comments.DELETE("/:id", commentController.DeleteComment)
		}

		// --- Admin routes ---
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			admin.GET("/activities", activityController.AdminGetActivities)
			admin.DELETE("/activities/:id", activityController.AdminDeleteActivity)
			admin.POST("/activities/:id/status", activityController.AdminSetStatus)
			admin.POST("/activities/:id/cancel", activityController.AdminCancelActivity)
			admin.DELETE("/comments/:id", commentController.AdminDeleteComment)
		}
	}
}
