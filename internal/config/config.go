package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Vision VisionConfig
	Import ImportConfig
	LLM    LLMConfig
	Rules  RulesConfig
	CORS   CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LLMProviderConfig holds settings for a single extraction model provider.
type LLMProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds structured extraction settings with multi-provider support.
type LLMConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   LLMProviderConfig `mapstructure:"primary"`
	Secondary LLMProviderConfig `mapstructure:"secondary"`
	Tertiary  LLMProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *LLMConfig) PrimaryConfig() *LLMProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &LLMProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		BaseURL:      p.BaseURL,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *LLMConfig) SecondaryConfig() *LLMProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *LLMConfig) TertiaryConfig() *LLMProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// Enabled reports whether a credential is configured for the primary provider.
func (p *LLMConfig) Enabled() bool {
	return p.PrimaryConfig().APIKey != ""
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds settings for validating platform-issued access tokens.
type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`
}

// S3Config holds settings for the S3-compatible platform storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	ExportBucket  string `mapstructure:"export_bucket"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// VisionConfig holds OCR backend and staging bucket settings.
type VisionConfig struct {
	CredentialsFile string        `mapstructure:"credentials_file"`
	CredentialsJSON string        `mapstructure:"credentials_json"`
	Endpoint        string        `mapstructure:"endpoint"`
	StorageEndpoint string        `mapstructure:"storage_endpoint"`
	Bucket          string        `mapstructure:"bucket"`
	InputPrefix     string        `mapstructure:"input_prefix"`
	OutputPrefix    string        `mapstructure:"output_prefix"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	MaxPollAttempts int           `mapstructure:"max_poll_attempts"`
	MaxOCRChars     int           `mapstructure:"max_ocr_chars"`
	BatchSize       int64         `mapstructure:"batch_size"`
}

// ImportConfig holds pipeline budgets.
type ImportConfig struct {
	ChunkChars   int `mapstructure:"chunk_chars"`
	OverlapLines int `mapstructure:"overlap_lines"`
	PersistLimit int `mapstructure:"persist_limit"`
	PreviewChars int `mapstructure:"preview_chars"`
}

// RulesConfig holds the rule parser's heuristic thresholds.
type RulesConfig struct {
	ProseMaxWords    int `mapstructure:"prose_max_words"`
	ProseMaxChars    int `mapstructure:"prose_max_chars"`
	GrapeMaxWords    int `mapstructure:"grape_max_words"`
	GrapeMaxChars    int `mapstructure:"grape_max_chars"`
	LocationMaxWords int `mapstructure:"location_max_words"`
	LocationMaxChars int `mapstructure:"location_max_chars"`
	MinPrice         int `mapstructure:"min_price"`
	MaxPrice         int `mapstructure:"max_price"`
}

// Load reads configuration from environment variables with the WINELIST_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix("WINELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "winelist")
	v.SetDefault("db.password", "winelist_secret")
	v.SetDefault("db.name", "winelist_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "")
	v.SetDefault("jwt.audience", "authenticated")

	// S3 defaults
	v.SetDefault("s3.region", "eu-central-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.export_bucket", "exports")
	v.SetDefault("s3.max_file_size_mb", 25)
	v.SetDefault("s3.presign_expiry", 3600)

	// Vision defaults
	v.SetDefault("vision.bucket", "winelist-ocr")
	v.SetDefault("vision.input_prefix", "ocr-input")
	v.SetDefault("vision.output_prefix", "ocr-output")
	v.SetDefault("vision.poll_interval", "2s")
	v.SetDefault("vision.max_poll_attempts", 60)
	v.SetDefault("vision.max_ocr_chars", 120000)
	v.SetDefault("vision.batch_size", 20)

	// Import defaults
	v.SetDefault("import.chunk_chars", 12000)
	v.SetDefault("import.overlap_lines", 12)
	v.SetDefault("import.persist_limit", 500)
	v.SetDefault("import.preview_chars", 2000)

	// Rule parser defaults
	v.SetDefault("rules.prose_max_words", 8)
	v.SetDefault("rules.prose_max_chars", 45)
	v.SetDefault("rules.grape_max_words", 3)
	v.SetDefault("rules.grape_max_chars", 25)
	v.SetDefault("rules.location_max_words", 4)
	v.SetDefault("rules.location_max_chars", 32)
	v.SetDefault("rules.min_price", 1)
	v.SetDefault("rules.max_price", 500)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// LLM defaults (legacy flat)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.default_model", "gpt-4o-mini")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.timeout_secs", 120)

	// LLM primary/secondary/tertiary defaults
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("llm."+tier+".provider", "")
		v.SetDefault("llm."+tier+".api_key", "")
		v.SetDefault("llm."+tier+".default_model", "")
		v.SetDefault("llm."+tier+".base_url", "")
		v.SetDefault("llm."+tier+".max_retries", 2)
		v.SetDefault("llm."+tier+".timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "WINELIST_SERVER_PORT",
		"server.read_timeout":      "WINELIST_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "WINELIST_SERVER_WRITE_TIMEOUT",
		"server.environment":       "WINELIST_SERVER_ENVIRONMENT",
		"db.host":                  "WINELIST_DB_HOST",
		"db.port":                  "WINELIST_DB_PORT",
		"db.user":                  "WINELIST_DB_USER",
		"db.password":              "WINELIST_DB_PASSWORD",
		"db.name":                  "WINELIST_DB_NAME",
		"db.sslmode":               "WINELIST_DB_SSLMODE",
		"db.max_open":              "WINELIST_DB_MAX_OPEN",
		"db.max_idle":              "WINELIST_DB_MAX_IDLE",
		"jwt.secret":               "WINELIST_JWT_SECRET",
		"jwt.issuer":               "WINELIST_JWT_ISSUER",
		"jwt.audience":             "WINELIST_JWT_AUDIENCE",
		"s3.region":                "WINELIST_S3_REGION",
		"s3.endpoint":              "WINELIST_S3_ENDPOINT",
		"s3.access_key":            "WINELIST_S3_ACCESS_KEY",
		"s3.secret_key":            "WINELIST_S3_SECRET_KEY",
		"s3.export_bucket":         "WINELIST_S3_EXPORT_BUCKET",
		"s3.max_file_size_mb":      "WINELIST_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":        "WINELIST_S3_PRESIGN_EXPIRY",
		"vision.credentials_file":  "WINELIST_VISION_CREDENTIALS_FILE",
		"vision.credentials_json":  "WINELIST_VISION_CREDENTIALS_JSON",
		"vision.endpoint":          "WINELIST_VISION_ENDPOINT",
		"vision.storage_endpoint":  "WINELIST_VISION_STORAGE_ENDPOINT",
		"vision.bucket":            "WINELIST_VISION_BUCKET",
		"vision.input_prefix":      "WINELIST_VISION_INPUT_PREFIX",
		"vision.output_prefix":     "WINELIST_VISION_OUTPUT_PREFIX",
		"vision.poll_interval":     "WINELIST_VISION_POLL_INTERVAL",
		"vision.max_poll_attempts": "WINELIST_VISION_MAX_POLL_ATTEMPTS",
		"vision.max_ocr_chars":     "WINELIST_VISION_MAX_OCR_CHARS",
		"vision.batch_size":        "WINELIST_VISION_BATCH_SIZE",
		"import.chunk_chars":       "WINELIST_IMPORT_CHUNK_CHARS",
		"import.overlap_lines":     "WINELIST_IMPORT_OVERLAP_LINES",
		"import.persist_limit":     "WINELIST_IMPORT_PERSIST_LIMIT",
		"import.preview_chars":     "WINELIST_IMPORT_PREVIEW_CHARS",
		"rules.prose_max_words":    "WINELIST_RULES_PROSE_MAX_WORDS",
		"rules.prose_max_chars":    "WINELIST_RULES_PROSE_MAX_CHARS",
		"rules.grape_max_words":    "WINELIST_RULES_GRAPE_MAX_WORDS",
		"rules.grape_max_chars":    "WINELIST_RULES_GRAPE_MAX_CHARS",
		"rules.location_max_words": "WINELIST_RULES_LOCATION_MAX_WORDS",
		"rules.location_max_chars": "WINELIST_RULES_LOCATION_MAX_CHARS",
		"rules.min_price":          "WINELIST_RULES_MIN_PRICE",
		"rules.max_price":          "WINELIST_RULES_MAX_PRICE",
		"cors.allowed_origins":     "WINELIST_CORS_ALLOWED_ORIGINS",
		"llm.provider":             "WINELIST_LLM_PROVIDER",
		"llm.api_key":              "WINELIST_LLM_API_KEY",
		"llm.default_model":        "WINELIST_LLM_DEFAULT_MODEL",
		"llm.base_url":             "WINELIST_LLM_BASE_URL",
		"llm.max_retries":          "WINELIST_LLM_MAX_RETRIES",
		"llm.timeout_secs":         "WINELIST_LLM_TIMEOUT_SECS",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "base_url", "max_retries", "timeout_secs"} {
			key := "llm." + tier + "." + field
			envBindings[key] = "WINELIST_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// PaaS hosts set a PORT env var. Use it if WINELIST_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("WINELIST_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:   v.GetString("jwt.secret"),
		Issuer:   v.GetString("jwt.issuer"),
		Audience: v.GetString("jwt.audience"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		ExportBucket:  v.GetString("s3.export_bucket"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Vision = VisionConfig{
		CredentialsFile: v.GetString("vision.credentials_file"),
		CredentialsJSON: v.GetString("vision.credentials_json"),
		Endpoint:        v.GetString("vision.endpoint"),
		StorageEndpoint: v.GetString("vision.storage_endpoint"),
		Bucket:          v.GetString("vision.bucket"),
		InputPrefix:     strings.Trim(v.GetString("vision.input_prefix"), "/"),
		OutputPrefix:    strings.Trim(v.GetString("vision.output_prefix"), "/"),
		PollInterval:    v.GetDuration("vision.poll_interval"),
		MaxPollAttempts: v.GetInt("vision.max_poll_attempts"),
		MaxOCRChars:     v.GetInt("vision.max_ocr_chars"),
		BatchSize:       v.GetInt64("vision.batch_size"),
	}
	cfg.Import = ImportConfig{
		ChunkChars:   v.GetInt("import.chunk_chars"),
		OverlapLines: v.GetInt("import.overlap_lines"),
		PersistLimit: v.GetInt("import.persist_limit"),
		PreviewChars: v.GetInt("import.preview_chars"),
	}
	cfg.Rules = RulesConfig{
		ProseMaxWords:    v.GetInt("rules.prose_max_words"),
		ProseMaxChars:    v.GetInt("rules.prose_max_chars"),
		GrapeMaxWords:    v.GetInt("rules.grape_max_words"),
		GrapeMaxChars:    v.GetInt("rules.grape_max_chars"),
		LocationMaxWords: v.GetInt("rules.location_max_words"),
		LocationMaxChars: v.GetInt("rules.location_max_chars"),
		MinPrice:         v.GetInt("rules.min_price"),
		MaxPrice:         v.GetInt("rules.max_price"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		DefaultModel: v.GetString("llm.default_model"),
		BaseURL:      v.GetString("llm.base_url"),
		MaxRetries:   v.GetInt("llm.max_retries"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		Primary:      loadProvider(v, "primary"),
		Secondary:    loadProvider(v, "secondary"),
		Tertiary:     loadProvider(v, "tertiary"),
	}

	return cfg, nil
}

func loadProvider(v *viper.Viper, tier string) LLMProviderConfig {
	prefix := "llm." + tier + "."
	return LLMProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		BaseURL:      v.GetString(prefix + "base_url"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}
