package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	AI       AIConfig       `json:"ai"`
	Prompts  PromptsConfig  `json:"prompts"`
}

type ServerConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	CORSOrigins string `json:"cors_origins"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// AIConfig selects and configures the generation engine.
// Engine is "genkit" (flow endpoint speaking {systemInstruction, content})
// or "openai" (chat-completions wire format).
type AIConfig struct {
	Engine  string `json:"engine"`
	BaseURL string `json:"base_url,omitempty"`
	APIKey  string `json:"api_key,omitempty"`
	Model   string `json:"model,omitempty"`
}

type PromptsConfig struct {
	Dir string `json:"dir"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	// Add config paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Check for user config directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".clarity"))
	}

	// Set defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 5050)
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "clarity")
	viper.SetDefault("database.database", "clarity")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("ai.engine", "genkit")
	viper.SetDefault("prompts.dir", "prompts")

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			cfg := createDefaultConfig()
			loadEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func createDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5050,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "clarity",
			Password: "",
			Database: "clarity",
			SSLMode:  "disable",
		},
		AI: AIConfig{
			Engine: "genkit",
		},
		Prompts: PromptsConfig{
			Dir: "prompts",
		},
	}
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("CLARITY_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("CLARITY_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if origins := os.Getenv("CLARITY_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = origins
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}

	// AI engine overrides
	if engine := os.Getenv("CLARITY_AI_ENGINE"); engine != "" {
		cfg.AI.Engine = engine
	}
	if baseURL := os.Getenv("CLARITY_AI_BASE_URL"); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
	if key := os.Getenv("CLARITY_AI_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	if model := os.Getenv("CLARITY_AI_MODEL"); model != "" {
		cfg.AI.Model = model
	}

	if dir := os.Getenv("CLARITY_PROMPTS_DIR"); dir != "" {
		cfg.Prompts.Dir = dir
	}
}
