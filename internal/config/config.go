package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string
	ServerAddr string
	PublicURL  string

	MongoURI string
	MongoDB  string

	JWTSecret        string
	JWTExpireMinutes int
	CookieExpireDays int
	CookieSecure     bool

	FrontendOrigin string

	RateLimitAuth      int
	RateLimitWindowSec int

	RedisURL      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeocoderURL    string
	GeocoderAPIKey string

	MaxUploadBytes int64
	UploadDir      string

	BrevoAPIKey      string
	BrevoSenderEmail string
	BrevoSenderName  string
	BrevoSandbox     bool
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mongoURI := getEnv("MONGO_URI", "mongodb://localhost:27017/devcamper")
	mongoDB := getEnv("MONGO_DB", "")
	if mongoDB == "" {
		mongoDB = mongoDBFromURI(mongoURI)
	}
	if mongoDB == "" {
		mongoDB = "devcamper"
	}

	cfg := &Config{
		Env:                getEnv("APP_ENV", "development"),
		ServerAddr:         getEnv("SERVER_ADDR", ":5000"),
		PublicURL:          getEnv("PUBLIC_URL", "http://localhost:5000"),
		MongoURI:           mongoURI,
		MongoDB:            mongoDB,
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpireMinutes:   getEnvInt("JWT_EXPIRE_MINUTES", 43200),
		CookieExpireDays:   getEnvInt("COOKIE_EXPIRE_DAYS", 30),
		CookieSecure:       getEnv("COOKIE_SECURE", "false") == "true",
		FrontendOrigin:     getEnv("FRONTEND_ORIGIN", "http://localhost:3000"),
		RateLimitAuth:      getEnvInt("RATE_LIMIT_AUTH", 10),
		RateLimitWindowSec: getEnvInt("RATE_LIMIT_WINDOW_SEC", 60),
		RedisURL:           getEnv("REDIS_URL", ""),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		GeocoderURL:        getEnv("GEOCODER_URL", "https://www.mapquestapi.com"),
		GeocoderAPIKey:     getEnv("GEOCODER_API_KEY", ""),
		MaxUploadBytes:     getEnvInt64("MAX_UPLOAD_BYTES", 1000000),
		UploadDir:          getEnv("UPLOAD_DIR", "./public/uploads"),
		BrevoAPIKey:        getEnv("BREVO_API_KEY", ""),
		BrevoSenderEmail:   getEnv("BREVO_SENDER_EMAIL", ""),
		BrevoSenderName:    getEnv("BREVO_SENDER_NAME", ""),
		BrevoSandbox:       getEnv("BREVO_SANDBOX", "false") == "true",
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func mongoDBFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	db := strings.Trim(u.Path, "/")
	if db == "" {
		return ""
	}
	// mongodb URIs sometimes include extra path segments; only the first one is the db name.
	if idx := strings.Index(db, "/"); idx >= 0 {
		db = db[:idx]
	}
	return db
}
