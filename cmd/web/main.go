package main

import (
	"log"
	"os"

	"newsboard/internal/api"
	"newsboard/internal/router"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))

	// News service address
	apiAddr := os.Getenv("NEWS_API_ADDR")
	if apiAddr == "" {
		apiAddr = "http://localhost:3000"
	}
	client := api.New(apiAddr)

	r := router.New(client, "./web/templates", "./web/static", store)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("newsboard web starting on :%s (news api at %s)", port, apiAddr)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
