package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	SteamAPIKey  string
	DBPath       string
	ServerPort   string
	LogLevel     string
	AssistantURL string

	// CoopGameID is the pseudo-game the upstream owned-games endpoint
	// omits; CoopGameName is the display-name override applied to it.
	// Deployment configuration, not business logic.
	CoopGameID   int64
	CoopGameName string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		SteamAPIKey:  getEnv("STEAM_API_KEY", ""),
		DBPath:       getEnv("DB_PATH", "vanguard.db"),
		ServerPort:   getEnv("SERVER_PORT", "8090"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		AssistantURL: getEnv("ASSISTANT_URL", "http://127.0.0.1:8765"),
		CoopGameID:   getEnvInt64("COOP_GAME_ID", 480),
		CoopGameName: getEnv("COOP_GAME_NAME", "Vanguard Co-Op"),
	}

	// The Steam key is allowed to be empty at boot: the UI configures it
	// later through the credential endpoint.
	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Str("assistant_url", cfg.AssistantURL).
		Int64("coop_game_id", cfg.CoopGameID).
		Bool("steam_key_present", cfg.SteamAPIKey != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
