package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/halit/learnsphere/internal/app/controllers"
	"github.com/halit/learnsphere/internal/app/models"
	"github.com/halit/learnsphere/internal/middleware"
	"github.com/halit/learnsphere/internal/pkg/ratelimit"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	materialController *controllers.MaterialController,
	paymentController *controllers.PaymentController,
	departmentController *controllers.DepartmentController,
	userController *controllers.UserController,
	authMiddleware *middleware.AuthMiddleware,
	subscriptionMiddleware *middleware.SubscriptionMiddleware,
	registrationLimiter *ratelimit.Limiter,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	departments := v1.Group("/departments")
	{
		departments.GET("", departmentController.List)
		departments.GET("/:id", departmentController.Get)
	}

	auth := v1.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitByIP(registrationLimiter), authController.Register)
		auth.POST("/verify-otp", authController.VerifyOtp)
		auth.POST("/resend-otp", authController.ResendOtp)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
		auth.POST("/forgot-password", authController.ForgotPassword)
		auth.POST("/reset-password", authController.ResetPassword)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.POST("/auth/logout", authController.Logout)
		authenticated.GET("/users/me", userController.Me)

		// Student payment routes
		student := authenticated.Group("/student")
		student.Use(authMiddleware.RoleRequired(models.RoleStudent))
		{
			student.POST("/payments", paymentController.Submit)
			student.GET("/payments", paymentController.ListOwn)
			student.GET("/subscription", paymentController.GetSubscription)
		}

		// Material routes sit behind the subscription gate; the gate runs
		// before any material is looked up
		materials := authenticated.Group("/materials")
		materials.Use(subscriptionMiddleware.SubscriptionRequired())
		{
			materials.GET("", materialController.List)
			materials.GET("/:id", materialController.Get)
			materials.GET("/:id/download", materialController.Download)

			materials.POST("/:id/like", materialController.ToggleLike)
			materials.GET("/:id/comments", materialController.ListComments)
			materials.POST("/:id/comments", materialController.AddComment)
			materials.DELETE("/:id/comments/:commentId", materialController.DeleteComment)
			materials.GET("/:id/progress", materialController.GetProgress)
			materials.PUT("/:id/progress", materialController.UpdateProgress)

			// Management routes for content owners
			manage := materials.Group("")
			manage.Use(authMiddleware.RoleRequired(models.RoleInstructor, models.RoleAdmin))
			{
				manage.POST("", materialController.Create)
				manage.PUT("/:id", materialController.Update)
				manage.DELETE("/:id", materialController.Delete)
				manage.POST("/:id/publish", materialController.Publish)
				manage.POST("/:id/unpublish", materialController.Unpublish)
			}
		}

		// Admin routes
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/payments", paymentController.List)
			admin.POST("/payments/:id/approve", paymentController.Approve)
			admin.POST("/payments/:id/deny", paymentController.Deny)

			admin.GET("/users", userController.List)
			admin.GET("/users/:id", userController.Get)
			admin.POST("/users/:id/activate", userController.Activate)
			admin.POST("/users/:id/deactivate", userController.Deactivate)
			admin.DELETE("/users/:id", userController.Delete)

			admin.POST("/departments", departmentController.Create)
			admin.PUT("/departments/:id", departmentController.Update)
			admin.DELETE("/departments/:id", departmentController.Delete)

			admin.GET("/stats", userController.Stats)
		}
	}
}
