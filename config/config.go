package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// EnvPathVar points at an alternative .env file when none sits
	// beside the executable.
	EnvPathVar = "SCREEN_OCR_CODE_ENV"

	DefaultHotkey    = "super+shift+t"
	DefaultDeadline  = 20
	DefaultPortBase  = 49500
	DefaultPortRange = 50
)

// LoadOptions carries command-line overrides that beat both the
// process environment and the .env file.
type LoadOptions struct {
	HotkeyOverride string
}

type Config struct {
	Hotkey            string
	Languages         []string
	OCRDeadlineSec    int
	MinConfidence     float64
	Preprocess        bool
	EnableFileLogging bool
	PortBase          int
	PortRange         int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_OCR_CODE_ENV as a path to a config file
	// godotenv.Load never overrides variables already in the process
	// environment, so real env vars win over the file.
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	// Parse languages from comma-separated string
	languages := []string{"eng"}
	if languagesStr := os.Getenv("OCR_LANGUAGES"); languagesStr != "" {
		var parsed []string
		for _, language := range strings.Split(languagesStr, ",") {
			if trimmed := strings.TrimSpace(language); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) > 0 {
			languages = parsed
		}
	}

	// Resolve OCR deadline (seconds) with env override and sane default
	ocrDeadlineSec := DefaultDeadline
	if v := os.Getenv("OCR_DEADLINE_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ocrDeadlineSec = n
		}
	}

	minConfidence := 0.0
	if v := os.Getenv("MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 && f <= 1 {
			minConfidence = f
		}
	}

	hotkey := getEnvWithDefault("HOTKEY", DefaultHotkey)
	if override := strings.TrimSpace(opts.HotkeyOverride); override != "" {
		hotkey = override
	}

	cfg := &Config{
		Hotkey:            hotkey,
		Languages:         languages,
		OCRDeadlineSec:    ocrDeadlineSec,
		MinConfidence:     minConfidence,
		Preprocess:        strings.ToLower(os.Getenv("PREPROCESS")) != "false",
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		PortBase:          positiveIntEnv("SCREEN_OCR_CODE_PORT_BASE", DefaultPortBase),
		PortRange:         positiveIntEnv("SCREEN_OCR_CODE_PORT_RANGE", DefaultPortRange),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func positiveIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
