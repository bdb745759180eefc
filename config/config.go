package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	SLSKD_URL      string
	SLSKD_URL_BASE string
	SLSKD_API_KEY  string
	REDIS_URI      string
	REDIS_PASSWORD string
	REDIS_DB       int
	DB_PATH        string
	HTTP_ADDR      string
)

func init() {
	// load environment variables from a .env file if one is present
	_ = godotenv.Load()

	SLSKD_URL = getenv("SLSKD_URL", "http://localhost:5030")
	SLSKD_URL_BASE = getenv("SLSKD_URL_BASE", "/api/v0")
	SLSKD_API_KEY = os.Getenv("SLSKD_API_KEY")
	REDIS_URI = getenv("REDIS_URI", "localhost:6379")
	REDIS_PASSWORD = os.Getenv("REDIS_PASSWORD")
	if db, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		REDIS_DB = db
	}
	DB_PATH = getenv("DB_PATH", "slskseek.db")
	HTTP_ADDR = getenv("HTTP_ADDR", "localhost:3000")
}

// ApiURL returns the full base URL of the slskd HTTP API.
func ApiURL() string {
	return SLSKD_URL + SLSKD_URL_BASE
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
