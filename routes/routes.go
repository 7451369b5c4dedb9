package routes

import (
	"log"

	"github.com/PrajwalpGM256/Medible/controllers"
	"github.com/PrajwalpGM256/Medible/data"
	"github.com/PrajwalpGM256/Medible/middlewares"
	"github.com/PrajwalpGM256/Medible/services"

	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()
	r.Use(middlewares.RequestID())

	engine, err := services.NewInteractionEngine(data.InteractionsJSON)
	if err != nil {
		log.Fatalf("failed to load interaction knowledge base: %v", err)
	}

	hub := services.NewAlertHub()
	fda := services.NewOpenFDAService()

	drugCtrl := controllers.NewDrugController(fda)
	interactionCtrl := controllers.NewInteractionController(engine, hub)
	realtimeCtrl := controllers.NewRealtimeController(hub)

	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
			auth.GET("/me", middlewares.AuthMiddleware(), controllers.Me)
		}

		protected := api.Group("/", middlewares.AuthMiddleware())
		{
			protected.GET("/drugs/search", drugCtrl.Search)

			protected.GET("/medications", controllers.ListMedications)
			protected.POST("/medications", controllers.AddMedication)
			protected.DELETE("/medications/:id", controllers.RemoveMedication)

			protected.GET("/interactions/drug/:name", interactionCtrl.ByDrug)
			protected.GET("/interactions/check", interactionCtrl.Check)
			protected.POST("/interactions/check-multiple", interactionCtrl.CheckMultiple)

			protected.GET("/history", controllers.GetHistory)
			protected.POST("/history", controllers.SaveCheck)
			protected.DELETE("/history/:id", controllers.DeleteCheck)
			protected.DELETE("/history", controllers.ClearHistory)

			protected.GET("/ws/alerts", realtimeCtrl.AlertsWS)
		}
	}

	r.GET("/health", interactionCtrl.Health)

	return r
}
