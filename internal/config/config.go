package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Database (PostgreSQL, stores generated stories as jsonb)
	DBHost        string        `envconfig:"DB_HOST" required:"true"`
	DBPort        string        `envconfig:"DB_PORT" default:"5432"`
	DBUser        string        `envconfig:"DB_USER" required:"true"`
	DBName        string        `envconfig:"DB_NAME" required:"true"`
	DBSSLMode     string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns    int           `envconfig:"DB_MAX_CONNS" default:"10"`
	DBIdleTimeout time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"5m"`
	// Secret field WITHOUT an envconfig tag, read from a secret file.
	DBPassword string

	// OpenAI. The API key is optional: without it every request is
	// served by the sample generator. Loaded from the env var or,
	// when present, the openai_api_key Docker secret.
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	TextModel     string        `envconfig:"OPENAI_TEXT_MODEL" default:"gpt-4o"`
	ImageModel    string        `envconfig:"OPENAI_IMAGE_MODEL" default:"gpt-image-1"`
	Temperature   float32       `envconfig:"OPENAI_TEMPERATURE" default:"0.7"`
	OpenAITimeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"120s"`

	// Illustration pipeline
	IllustrationsDir     string        `envconfig:"ILLUSTRATIONS_DIR" default:"story_illustrations"`
	CharacterImageSize   string        `envconfig:"CHARACTER_IMAGE_SIZE" default:"1024x1024"`
	PageImageSize        string        `envconfig:"PAGE_IMAGE_SIZE" default:"1024x1024"`
	ImageQuality         string        `envconfig:"IMAGE_QUALITY" default:"low"`
	CharacterWorkers     int           `envconfig:"CHARACTER_WORKERS" default:"5"`
	PageWorkers          int           `envconfig:"PAGE_WORKERS" default:"5"`
	RetryMaxAttempts     int           `envconfig:"IMAGE_RETRY_MAX_ATTEMPTS" default:"3"`
	RetryInitialInterval time.Duration `envconfig:"IMAGE_RETRY_INITIAL_INTERVAL" default:"2s"`
	RetryMaxInterval     time.Duration `envconfig:"IMAGE_RETRY_MAX_INTERVAL" default:"10s"`

	// Static assets and uploads
	PromptsDir string `envconfig:"PROMPTS_DIR" default:"prompts"`
	SampleDir  string `envconfig:"SAMPLE_DIR" default:"sample_books"`
	UploadsDir string `envconfig:"UPLOADS_DIR" default:"uploads"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// GetDSN builds the PostgreSQL connection string.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		err = godotenv.Load(envFilePath)
		if err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Required secret: database password.
	cfg.DBPassword, err = readSecret("db_password")
	if err != nil {
		return nil, err
	}

	// Optional secret: OpenAI key. The secret takes precedence over the env var.
	if key, err := readSecret("openai_api_key"); err == nil {
		cfg.OpenAIAPIKey = key
		log.Println("OpenAI API key loaded from secret.")
	} else if cfg.OpenAIAPIKey == "" {
		log.Printf("Optional secret 'openai_api_key' not found: %v. Falling back to sample stories.", err)
	}

	log.Println("Configuration loaded successfully (secrets read from files).")
	return &cfg, nil
}

// readSecret reads a Docker secret from the standard mount path.
func readSecret(secretName string) (string, error) {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}
