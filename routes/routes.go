package routes

import (
	"github.com/gin-gonic/gin"

	"nutrilog/controllers"
	"nutrilog/middlewares"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", controllers.GetProfile)
		api.PUT("/profile", controllers.UpdateProfile)

		api.GET("/goals", controllers.GetGoals)
		api.PUT("/goals", controllers.UpdateGoals)
		api.POST("/goals/derive", controllers.DeriveGoals)

		api.POST("/entries", controllers.CreateEntry)
		api.GET("/entries", controllers.ListEntries)
		api.GET("/entries/:id", controllers.GetEntry)
		api.PUT("/entries/:id", controllers.UpdateEntry)
		api.DELETE("/entries/:id", controllers.DeleteEntry)

		api.GET("/summary", controllers.GetDailySummary)

		api.GET("/foods/search", controllers.SearchFoods)
		api.GET("/foods/barcode/:code", controllers.LookupBarcode)
		api.POST("/photos/recognize", controllers.RecognizePhoto)
	}

	return r
}
