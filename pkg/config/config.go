package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when the key for the selected AI provider is not set.
var ErrMissingAPIKey = errors.New("missing AI provider API key")

const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderGigaChat = "gigachat"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Startup StartupConfig
	AI      AIConfig
	Advice  AdviceConfig
	Logger  LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port             string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins string
}

type StorageConfig struct {
	Backend    string
	Database   DatabaseConfig
	SQLitePath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int32
}

// StartupConfig controls the storage readiness probe run before serving.
type StartupConfig struct {
	ProbeAttempts int
	ProbeInterval time.Duration
}

type AIConfig struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
	GigaChat GigaChatConfig
}

type GigaChatConfig struct {
	Scope              string
	InsecureSkipVerify bool
}

type AdviceConfig struct {
	CurrencySymbol string
}

var defaultModels = map[string]string{
	ProviderGemini:   "gemini-2.5-flash",
	ProviderOpenAI:   "gpt-4o-mini",
	ProviderGigaChat: "GigaChat",
}

var defaultBaseURLs = map[string]string{
	ProviderGemini: "https://generativelanguage.googleapis.com/v1beta/openai/",
	ProviderOpenAI: "https://api.openai.com/v1",
}

var apiKeyVars = map[string]string{
	ProviderGemini:   "GEMINI_API_KEY",
	ProviderOpenAI:   "OPENAI_API_KEY",
	ProviderGigaChat: "GIGACHAT_API_KEY",
}

// Load reads configuration from an optional .env file and the environment.
// It does not validate; call Validate before using the result.
func Load() (*Config, error) {
	// .env is optional, plain environment variables work for Docker/K8s
	for _, envFile := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, err := getEnvInt("SERVER_READ_TIMEOUT", 30)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := getEnvInt("SERVER_WRITE_TIMEOUT", 120)
	if err != nil {
		return nil, err
	}
	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	probeAttempts, err := getEnvInt("STARTUP_PROBE_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	probeInterval, err := getEnvDuration("STARTUP_PROBE_INTERVAL", 5*time.Second)
	if err != nil {
		return nil, err
	}
	aiTimeout, err := getEnvDuration("AI_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	provider := strings.ToLower(getEnv("AI_PROVIDER", ProviderGemini))

	return &Config{
		Server: ServerConfig{
			Port:             getEnv("SERVER_PORT", "8000"),
			ReadTimeout:      time.Duration(readTimeout) * time.Second,
			WriteTimeout:     time.Duration(writeTimeout) * time.Second,
			CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(getEnv("STORAGE_BACKEND", BackendPostgres)),
			Database: DatabaseConfig{
				Host:     getEnv("DB_HOST", "localhost"),
				Port:     getEnv("DB_PORT", "5432"),
				User:     getEnv("DB_USER", "myuser"),
				Password: getEnv("DB_PASSWORD", "mypassword"),
				DBName:   getEnv("DB_NAME", "mydatabase"),
				SSLMode:  getEnv("DB_SSLMODE", "disable"),
				MaxConns: int32(maxConns),
			},
			SQLitePath: getEnv("SQLITE_DB_PATH", "./data/finwiz.db"),
		},
		Startup: StartupConfig{
			ProbeAttempts: probeAttempts,
			ProbeInterval: probeInterval,
		},
		AI: AIConfig{
			Provider: provider,
			APIKey:   os.Getenv(apiKeyVars[provider]),
			Model:    getEnv("AI_MODEL", defaultModels[provider]),
			BaseURL:  getEnv("AI_BASE_URL", defaultBaseURLs[provider]),
			Timeout:  aiTimeout,
			GigaChat: GigaChatConfig{
				Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
				InsecureSkipVerify: getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "false") == "true",
			},
		},
		Advice: AdviceConfig{
			CurrencySymbol: getEnv("ADVICE_CURRENCY_SYMBOL", "$"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// Validate reports every configuration problem at once. A missing provider
// key is wrapped with ErrMissingAPIKey.
func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid SERVER_PORT %q: must be a number between 1 and 65535", c.Server.Port))
	}

	switch c.Storage.Backend {
	case BackendPostgres, BackendMemory:
	case BackendSQLite:
		switch {
		case c.Storage.SQLitePath == "":
			errs = append(errs, errors.New("SQLITE_DB_PATH cannot be empty when using the sqlite backend"))
		case c.Storage.SQLitePath == ":memory:" || strings.Contains(c.Storage.SQLitePath, "mode=memory"):
			errs = append(errs, errors.New("SQLITE_DB_PATH cannot be an in-memory database, use STORAGE_BACKEND=memory"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid STORAGE_BACKEND %q: must be one of %s, %s, %s",
			c.Storage.Backend, BackendPostgres, BackendSQLite, BackendMemory))
	}

	if c.Startup.ProbeAttempts < 1 {
		errs = append(errs, fmt.Errorf("invalid STARTUP_PROBE_ATTEMPTS %d: must be at least 1", c.Startup.ProbeAttempts))
	}

	keyVar, ok := apiKeyVars[c.AI.Provider]
	if !ok {
		errs = append(errs, fmt.Errorf("invalid AI_PROVIDER %q: must be one of %s, %s, %s",
			c.AI.Provider, ProviderGemini, ProviderOpenAI, ProviderGigaChat))
	} else if c.AI.APIKey == "" {
		errs = append(errs, fmt.Errorf("%w: %s is not set", ErrMissingAPIKey, keyVar))
	}

	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

// getEnvDuration accepts Go duration strings ("5s") or plain seconds ("5").
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
