package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"ENV", "IMAGE_MAX_WIDTH", "IMAGE_MAX_HEIGHT", "IMAGE_QUALITY", "IMAGE_MAX_PIXELS", "PDF_IMAGE_DPI", "OBJECT_STORE", "GHOSTSCRIPT_TIMEOUT", "OCR_LANGUAGE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.ImageMaxWidth != 600 || cfg.ImageMaxHeight != 800 || cfg.ImageQuality != 50 {
		t.Fatalf("unexpected image defaults: %dx%d q%d", cfg.ImageMaxWidth, cfg.ImageMaxHeight, cfg.ImageQuality)
	}
	if cfg.ImageMaxPixels != 50_000_000 {
		t.Fatalf("unexpected pixel limit %d", cfg.ImageMaxPixels)
	}
	if cfg.PDFImageResolution != 120 {
		t.Fatalf("expected dpi 120, got %d", cfg.PDFImageResolution)
	}
	if cfg.ObjectStoreType != "none" {
		t.Fatalf("expected object store none, got %q", cfg.ObjectStoreType)
	}
	if cfg.GhostscriptTimeout != 2*time.Minute {
		t.Fatalf("expected ghostscript timeout 2m, got %s", cfg.GhostscriptTimeout)
	}
	if cfg.OCRLanguage != "eng" {
		t.Fatalf("expected ocr language eng, got %q", cfg.OCRLanguage)
	}
}

func TestLoadOverridesAndInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV", "prod")
	t.Setenv("IMAGE_QUALITY", "75")
	t.Setenv("IMAGE_MAX_WIDTH", "wide")
	t.Setenv("OBJECT_STORE", "MinIO")
	t.Setenv("OCR_TIMEOUT", "30s")
	t.Setenv("AUTO_MIGRATE", "")

	cfg := Load()

	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.ImageQuality != 75 {
		t.Fatalf("expected quality 75, got %d", cfg.ImageQuality)
	}
	if cfg.ImageMaxWidth != 600 {
		t.Fatalf("expected invalid width to fall back to 600, got %d", cfg.ImageMaxWidth)
	}
	if cfg.ObjectStoreType != "minio" {
		t.Fatalf("expected minio, got %q", cfg.ObjectStoreType)
	}
	if cfg.OCRTimeout != 30*time.Second {
		t.Fatalf("expected 30s, got %s", cfg.OCRTimeout)
	}
	if cfg.AutoMigrate {
		t.Fatalf("expected auto migrate off in production")
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	content := "STORAGE_ROOT=/srv/docs\nOCR_LANGUAGE=deu\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("STORAGE_ROOT", "")
	os.Unsetenv("STORAGE_ROOT")
	t.Setenv("OCR_LANGUAGE", "fra")

	cfg := Load()

	if cfg.StorageRoot != "/srv/docs" {
		t.Fatalf("expected storage root from .env, got %q", cfg.StorageRoot)
	}
	if cfg.OCRLanguage != "fra" {
		t.Fatalf("expected environment to win, got %q", cfg.OCRLanguage)
	}
}
