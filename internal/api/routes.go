package api

import (
	"net/http"

	"github.com/Lagergrenk/grindmode-sub001/internal/service"
	"github.com/Lagergrenk/grindmode-sub001/internal/session"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	authService service.AuthService,
	sessions *session.Manager,
) {
	authHandler := NewAuthHandler(authService)
	nutritionHandler := NewNutritionHandler(sessions)
	workoutHandler := NewWorkoutHandler(sessions)
	progressHandler := NewProgressHandler(sessions)

	authMiddleware := AuthMiddleware(authService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/logout", authMiddleware, authHandler.Logout)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Nutrition Routes ---
		nutritionGroup := protected.Group("/nutrition")
		{
			nutritionGroup.GET("", nutritionHandler.GetEntries)
			nutritionGroup.GET("/summary/weekly", nutritionHandler.GetWeeklySummary)
			nutritionGroup.GET("/today", nutritionHandler.GetTodayTotals)

			nutritionGroup.POST("/entries", nutritionHandler.CreateEntry)
			nutritionGroup.PUT("/entries/:id", nutritionHandler.UpdateEntry)
			nutritionGroup.DELETE("/entries/:id", nutritionHandler.DeleteEntry)
			nutritionGroup.PATCH("/entries/:id/notes", nutritionHandler.UpdateNotes)

			nutritionGroup.POST("/meals", nutritionHandler.AddMeal)
			nutritionGroup.PUT("/entries/:id/meals/:mealId", nutritionHandler.EditMeal)
			nutritionGroup.DELETE("/entries/:id/meals/:mealId", nutritionHandler.DeleteMeal)
		}

		// --- Workout Routes ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.GET("/plans", workoutHandler.ListPlans)
			workoutGroup.POST("/plans", workoutHandler.CreatePlan)
			workoutGroup.PUT("/plans/:id", workoutHandler.UpdatePlan)
			workoutGroup.DELETE("/plans/:id", workoutHandler.DeletePlan)

			workoutGroup.POST("/active", workoutHandler.StartWorkout)
			workoutGroup.GET("/active", workoutHandler.GetActiveWorkout)
			workoutGroup.PUT("/active/:id/exercises/:exercise/sets/:set", workoutHandler.UpdateSet)
			workoutGroup.POST("/active/:id/finish", workoutHandler.FinishWorkout)

			workoutGroup.GET("/history", workoutHandler.GetHistory)
			workoutGroup.GET("/summary/weekly", workoutHandler.GetWeeklySummary)
		}

		// --- Progress Photo Routes ---
		progressGroup := protected.Group("/progress/photos")
		{
			progressGroup.POST("/upload-url", progressHandler.RequestUploadURL)
			progressGroup.POST("", progressHandler.ConfirmUpload)
			progressGroup.GET("", progressHandler.ListPhotos)
			progressGroup.DELETE("/:id", progressHandler.DeletePhoto)
		}
	}
}
