package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	GradesDir      string
	GradesBucket   string
	GradesPrefix   string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	ServerPort     string
	CacheTTL       time.Duration
	Environment    string
	CORSOrigins    []string
	ProjectID      string
	DatasetID      string
	TopicID        string
}

// Load reads the configuration from the environment, after merging in a
// .env file if one exists.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	cacheMinutes, err := strconv.Atoi(getEnv("CACHE_TTL_MINUTES", "10"))
	if err != nil || cacheMinutes <= 0 {
		// go-cache never expires entries with a zero TTL
		cacheMinutes = 10
	}
	useSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))

	return &Config{
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite3"),
		DatabaseURL:    getEnv("DATABASE_URL", "courses.db"),
		GradesDir:      getEnv("GRADES_DIR", "grades"),
		GradesBucket:   getEnv("GRADES_BUCKET", ""),
		GradesPrefix:   getEnv("GRADES_PREFIX", "grades/"),
		MinIOEndpoint:  getEnv("MINIO_ENDPOINT", "minio:9000"),
		MinIOAccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOUseSSL:    useSSL,
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		CacheTTL:       time.Duration(cacheMinutes) * time.Minute,
		Environment:    getEnv("ENVIRONMENT", "development"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
		ProjectID:      getEnv("GCP_PROJECT", ""),
		DatasetID:      getEnv("BQ_DATASET", "coursebuilder"),
		TopicID:        getEnv("PUBSUB_TOPIC", "grades-exported"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
