package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	MongoDB   MongoDBConfig
	Storage   StorageConfig
	MinIO     MinIOConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	Auth      AuthConfig
	LLM       LLMConfig
	Latex     LatexConfig
	Templates TemplatesConfig
	Kafka     KafkaConfig
	Jobs      JobsConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigin   string
}

type LogConfig struct {
	Level  string
	Format string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// StorageConfig selects the blob backend: gridfs (default), minio or memory.
type StorageConfig struct {
	Backend        string
	GridFSBucket   string
	Timeout        time.Duration
	MaxUploadBytes int64
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

type RateLimitConfig struct {
	Enabled       bool
	UseRedis      bool
	RPS           float64
	Burst         int
	WindowSeconds int
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

type AuthConfig struct {
	AllowInsecureToken bool
}

// LLMConfig configures the OpenAI-compatible chat-completion provider.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	MaxSourceChars int
	Timeout        time.Duration
}

// LatexConfig configures the external typesetting toolchain.
type LatexConfig struct {
	Binary  string
	Passes  int
	Timeout time.Duration
	Workers int
	TempDir string
}

type TemplatesConfig struct {
	Dir  string
	Seed bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

type JobsConfig struct {
	Workers     int
	QueueSize   int
	MaxAttempts int
}

// Warnings collects non-fatal configuration problems for the caller to log.
var Warnings []string

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 300)
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017/resume-pilot")
	v.SetDefault("MONGODB_DATABASE", "resume-pilot")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("STORAGE_BACKEND", "gridfs")
	v.SetDefault("GRIDFS_BUCKET", "fs")
	v.SetDefault("BLOB_TIMEOUT", 30)
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
	v.SetDefault("MINIO_BUCKET", "resume-pilot")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("RATE_LIMIT_RPS", 1)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("LLM_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_MODEL", "gpt-4")
	v.SetDefault("LLM_MAX_TOKENS", 2500)
	v.SetDefault("LLM_TEMPERATURE", 0.3)
	v.SetDefault("LLM_MAX_SOURCE_CHARS", 3000)
	v.SetDefault("LLM_TIMEOUT", 120)
	v.SetDefault("LATEX_BINARY", "pdflatex")
	v.SetDefault("LATEX_PASSES", 2)
	v.SetDefault("LATEX_TIMEOUT", 60)
	v.SetDefault("LATEX_WORKERS", 2)
	v.SetDefault("TEMPLATES_DIR", "templates")
	v.SetDefault("TEMPLATES_SEED", true)
	v.SetDefault("KAFKA_TOPIC", "resume-generation")
	v.SetDefault("KAFKA_GROUP_ID", "resume-pilot-generator")
	v.SetDefault("GENERATION_WORKERS", 4)
	v.SetDefault("GENERATION_QUEUE_SIZE", 64)
	v.SetDefault("GENERATION_MAX_ATTEMPTS", 3)

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  seconds(v, "SERVER_READ_TIMEOUT"),
			WriteTimeout: seconds(v, "SERVER_WRITE_TIMEOUT"),
			CORSOrigin:   v.GetString("CORS_ORIGIN"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  seconds(v, "MONGODB_TIMEOUT"),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(v.GetString("STORAGE_BACKEND")),
			GridFSBucket:   v.GetString("GRIDFS_BUCKET"),
			Timeout:        seconds(v, "BLOB_TIMEOUT"),
			MaxUploadBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
		},
		Auth: AuthConfig{
			AllowInsecureToken: v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		LLM: LLMConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			BaseURL:        strings.TrimRight(v.GetString("LLM_BASE_URL"), "/"),
			Model:          v.GetString("LLM_MODEL"),
			MaxTokens:      v.GetInt("LLM_MAX_TOKENS"),
			Temperature:    v.GetFloat64("LLM_TEMPERATURE"),
			MaxSourceChars: v.GetInt("LLM_MAX_SOURCE_CHARS"),
			Timeout:        seconds(v, "LLM_TIMEOUT"),
		},
		Latex: LatexConfig{
			Binary:  v.GetString("LATEX_BINARY"),
			Passes:  v.GetInt("LATEX_PASSES"),
			Timeout: seconds(v, "LATEX_TIMEOUT"),
			Workers: v.GetInt("LATEX_WORKERS"),
			TempDir: v.GetString("LATEX_TEMP_DIR"),
		},
		Templates: TemplatesConfig{
			Dir:  v.GetString("TEMPLATES_DIR"),
			Seed: v.GetBool("TEMPLATES_SEED"),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
			GroupID: v.GetString("KAFKA_GROUP_ID"),
		},
		Jobs: JobsConfig{
			Workers:     v.GetInt("GENERATION_WORKERS"),
			QueueSize:   v.GetInt("GENERATION_QUEUE_SIZE"),
			MaxAttempts: v.GetInt("GENERATION_MAX_ATTEMPTS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	Warnings = nil
	if cfg.JWT.Secret == "" && cfg.Keycloak.URL == "" {
		Warnings = append(Warnings, "JWT_SECRET is not set; set a secure value in production")
	}
	if cfg.LLM.APIKey == "" {
		Warnings = append(Warnings, "OPENAI_API_KEY is not set; generation requests will fail upstream")
	}

	return cfg, nil
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "gridfs", "minio", "memory":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q (want gridfs, minio or memory)", c.Storage.Backend)
	}
	if c.Storage.Backend == "minio" && c.MinIO.Endpoint == "" {
		return fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Storage.MaxUploadBytes)
	}
	if c.Latex.Passes < 1 {
		return fmt.Errorf("LATEX_PASSES must be at least 1, got %d", c.Latex.Passes)
	}
	if c.Latex.Workers < 1 {
		return fmt.Errorf("LATEX_WORKERS must be at least 1, got %d", c.Latex.Workers)
	}
	if c.LLM.MaxSourceChars < 1 {
		return fmt.Errorf("LLM_MAX_SOURCE_CHARS must be at least 1, got %d", c.LLM.MaxSourceChars)
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("GENERATION_WORKERS must be at least 1, got %d", c.Jobs.Workers)
	}
	return nil
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
