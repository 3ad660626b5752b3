package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ProjectName = "講義アンケート分析アプリ"

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	LLM       LLMConfig       `yaml:"llm"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	CORSOrigins     []string      `yaml:"corsOrigins"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

type LLMConfig struct {
	// Provider is gemini or openai.
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"apiKey"`
	BaseURL     string        `yaml:"baseURL"`
	CallTimeout time.Duration `yaml:"callTimeout"`
	MaxTokens   int           `yaml:"maxTokens"`
}

type AnalysisConfig struct {
	BatchSize        int           `yaml:"batchSize"`
	Concurrency      int           `yaml:"concurrency"`
	MaxAttempts      int           `yaml:"maxAttempts"`
	RetryDelay       time.Duration `yaml:"retryDelay"`
	PositiveClusters int           `yaml:"positiveClusters"`
	NegativeClusters int           `yaml:"negativeClusters"`
	ClusterInputCap  int           `yaml:"clusterInputCap"`
}

type StorageConfig struct {
	// Driver is local or minio.
	Driver   string      `yaml:"driver"`
	LocalDir string      `yaml:"localDir"`
	Minio    MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	Prefix     string `yaml:"prefix"`
	UseSSL     bool   `yaml:"useSSL"`
}

type DatabaseConfig struct {
	// Driver is memory, mysql or postgres.
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled"`
	Capacity        int  `yaml:"capacity"`
	RefillPerSecond int  `yaml:"refillPerSecond"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            8000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    10 * time.Minute,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			MaxUploadBytes:  32 << 20,
		},
		Logging: LoggingConfig{Level: "info"},
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-1.5-flash-latest",
			CallTimeout: 60 * time.Second,
			MaxTokens:   8192,
		},
		Analysis: AnalysisConfig{
			BatchSize:        50,
			Concurrency:      1,
			MaxAttempts:      3,
			RetryDelay:       2 * time.Second,
			PositiveClusters: 5,
			NegativeClusters: 7,
			ClusterInputCap:  500,
		},
		Storage: StorageConfig{
			Driver:   "local",
			LocalDir: "temp_files",
			Minio:    MinioConfig{BucketName: "survey-uploads", Prefix: "uploads"},
		},
		Database:  DatabaseConfig{Driver: "memory", SSLMode: "disable"},
		RateLimit: RateLimitConfig{Enabled: true, Capacity: 30, RefillPerSecond: 1},
	}
}

// Load reads .env (if present), then the YAML file at path (if present), then
// environment overrides. An empty path falls back to CONFIG_PATH, then config.yaml.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	explicit := path != ""
	if path == "" {
		path = "config.yaml"
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		// defaults + env only
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if err := setInt("PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	setString("LOG_LEVEL", &cfg.Logging.Level)
	if v := os.Getenv("LOG_JSON"); v != "" {
		cfg.Logging.JSON = v == "1" || strings.EqualFold(v, "true")
	}

	setString("LLM_PROVIDER", &cfg.LLM.Provider)
	setString("LLM_MODEL", &cfg.LLM.Model)
	setString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		setString("OPENAI_API_KEY", &cfg.LLM.APIKey)
	default:
		setString("GEMINI_API_KEY", &cfg.LLM.APIKey)
	}

	if err := setInt("BATCH_SIZE", &cfg.Analysis.BatchSize); err != nil {
		return err
	}
	if err := setInt("ANALYSIS_CONCURRENCY", &cfg.Analysis.Concurrency); err != nil {
		return err
	}

	setString("STORAGE_DRIVER", &cfg.Storage.Driver)
	setString("STORAGE_DIR", &cfg.Storage.LocalDir)
	setString("MINIO_ENDPOINT", &cfg.Storage.Minio.Endpoint)
	setString("MINIO_ACCESS_KEY", &cfg.Storage.Minio.AccessKey)
	setString("MINIO_SECRET_KEY", &cfg.Storage.Minio.SecretKey)
	setString("MINIO_BUCKET", &cfg.Storage.Minio.BucketName)

	setString("DB_DRIVER", &cfg.Database.Driver)
	setString("DB_HOST", &cfg.Database.Host)
	if err := setInt("DB_PORT", &cfg.Database.Port); err != nil {
		return err
	}
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.Name)
	return nil
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

// Validate checks the settings main relies on.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "openai":
	default:
		return fmt.Errorf("llm.provider must be gemini or openai, got %q", c.LLM.Provider)
	}
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm api key is required (GEMINI_API_KEY or OPENAI_API_KEY)")
	}
	if c.Analysis.BatchSize <= 0 {
		return errors.New("analysis.batchSize must be positive")
	}
	if c.Analysis.MaxAttempts <= 0 {
		return errors.New("analysis.maxAttempts must be positive")
	}
	switch c.Storage.Driver {
	case "local":
		if c.Storage.LocalDir == "" {
			return errors.New("storage.localDir is required")
		}
	case "minio":
		if c.Storage.Minio.Endpoint == "" || c.Storage.Minio.BucketName == "" {
			return errors.New("storage.minio endpoint and bucketName are required")
		}
	default:
		return fmt.Errorf("storage.driver must be local or minio, got %q", c.Storage.Driver)
	}
	switch c.Database.Driver {
	case "memory", "mysql", "postgres":
	default:
		return fmt.Errorf("database.driver must be memory, mysql or postgres, got %q", c.Database.Driver)
	}
	return nil
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Database.User, c.Database.Password),
		Host:   fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:   "/" + c.Database.Name,
	}
	q := url.Values{}
	if c.Database.SSLMode != "" {
		q.Set("sslmode", c.Database.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}
