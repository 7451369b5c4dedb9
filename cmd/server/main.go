package main

import (
	"os"

	"github.com/PrajwalpGM256/Medible/config"
	"github.com/PrajwalpGM256/Medible/routes"
)

func main() {
	config.InitDB()
	r := routes.SetupRouter()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
