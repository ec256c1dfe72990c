package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Site identifies one target booking website and the synthetic video file
// its browser presents as a fake camera feed.
type Site struct {
	Label     string
	VideoPath string
}

type Config struct {
	Port           string
	FrontendOrigin string
	Headless       bool

	// Stream Relay tuning.
	StreamInterval time.Duration
	StreamQuality  int

	Sites []Site
}

// Load reads .env if present and builds the configuration from the
// environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment defaults")
	}

	return &Config{
		Port:           getEnv("PORT", "3000"),
		FrontendOrigin: getEnv("FRONTEND_ORIGIN", "http://localhost:5173"),
		Headless:       getBool("IS_HEADLESS", false),
		StreamInterval: getDuration("STREAM_INTERVAL_MS", 300) * time.Millisecond,
		StreamQuality:  getInt("STREAM_QUALITY", 80),
		Sites: []Site{
			{Label: "agoda", VideoPath: getEnv("AGODA_VIDEO_PATH", "media/agoda.y4m")},
			{Label: "mmt", VideoPath: getEnv("MMT_VIDEO_PATH", "media/mmt.y4m")},
			{Label: "hoteldotcom", VideoPath: getEnv("HOTELS_VIDEO_PATH", "media/hotels.y4m")},
			{Label: "expedia", VideoPath: getEnv("EXPEDIA_VIDEO_PATH", "media/expedia.y4m")},
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallbackMs int) time.Duration {
	return time.Duration(getInt(key, fallbackMs))
}
