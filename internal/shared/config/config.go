package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	LogLevel        string
	DatabaseURL     string
	AutoMigrate     bool

	StorageRoot    string
	TempDir        string
	MaxUploadBytes int64

	TessdataDir      string
	OCRLanguage      string
	OCRMaxConcurrent int
	OCRTimeout       time.Duration
	TesseractBinary  string

	GhostscriptBinary  string
	GhostscriptTimeout time.Duration
	PDFImageResolution int
	ImageMaxWidth      int
	ImageMaxHeight     int
	ImageQuality       int
	ImageMaxPixels     int

	ObjectStoreType string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	MinIOEndpoint   string
	MinIOAccessKey  string
	MinIOSecretKey  string
	MinIOBucket     string
	MinIOUseSSL     bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		log.Printf("DATABASE_URL is required in production")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             env,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DatabaseURL:     dbURL,
		AutoMigrate:     getEnvBool("AUTO_MIGRATE", env != "production"),

		StorageRoot:    getEnv("STORAGE_ROOT", "./uploads"),
		TempDir:        getEnv("TEMP_DIR", os.TempDir()),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 20<<20)),

		TessdataDir:      getEnv("TESSDATA_DIR", ""),
		OCRLanguage:      getEnv("OCR_LANGUAGE", "eng"),
		OCRMaxConcurrent: getEnvInt("OCR_MAX_CONCURRENT", 2),
		OCRTimeout:       getEnvDuration("OCR_TIMEOUT", time.Minute),
		TesseractBinary:  getEnv("TESSERACT_BIN", "tesseract"),

		GhostscriptBinary:  getEnv("GHOSTSCRIPT_BIN", "gs"),
		GhostscriptTimeout: getEnvDuration("GHOSTSCRIPT_TIMEOUT", 2*time.Minute),
		PDFImageResolution: getEnvInt("PDF_IMAGE_DPI", 120),
		ImageMaxWidth:      getEnvInt("IMAGE_MAX_WIDTH", 600),
		ImageMaxHeight:     getEnvInt("IMAGE_MAX_HEIGHT", 800),
		ImageQuality:       getEnvInt("IMAGE_QUALITY", 50),
		ImageMaxPixels:     getEnvInt("IMAGE_MAX_PIXELS", 50_000_000),

		ObjectStoreType: normalizeStoreType(getEnv("OBJECT_STORE", "none")),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		MinIOEndpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey:  getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:  getEnv("MINIO_SECRET_KEY", ""),
		MinIOBucket:     getEnv("MINIO_BUCKET", ""),
		MinIOUseSSL:     getEnvBool("MINIO_USE_SSL", false),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("config: %s invalid bool %q, using %t", key, raw, def)
		return def
	}
	return val
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	default:
		return "none"
	}
}
