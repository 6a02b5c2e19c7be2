package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/compensation-backend-go/internal/pkg/validator"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

type Config struct {
	Database       DatabaseConfig
	JWT            JWTConfig
	App            AppConfig
	SuccessFactors SuccessFactorsConfig
	Compensation   CompensationConfig
	Workflow       WorkflowConfig
	RBP            RBPConfig
	Sync           SyncConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

// SuccessFactorsConfig points at the HR platform OData API. An empty URL
// disables the integration.
type SuccessFactorsConfig struct {
	URL          string
	CompanyID    string
	Username     string
	Password     string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Timeout      time.Duration
}

func (c SuccessFactorsConfig) Enabled() bool {
	return c.URL != "" && ((c.ClientID != "" && c.ClientSecret != "") || (c.Username != "" && c.Password != ""))
}

type CompensationConfig struct {
	DefaultMode string
	Store       string
}

type WorkflowConfig struct {
	Store             string
	RoleDirectoryPath string
	TemplatePath      string
}

type RBPConfig struct {
	FailOpen bool
	// RoleAliases maps HR platform role names onto local roles.
	RoleAliases map[string]string
}

type SyncConfig struct {
	RetryInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file loaded, using process environment")
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}
	connLifetime, err := time.ParseDuration(getEnv("DB_MAX_CONN_LIFETIME", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONN_LIFETIME: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "compensation"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(maxConns),
		MinConns:        int32(minConns),
		MaxConnLifetime: connLifetime,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// SuccessFactors
	sfTimeout, err := time.ParseDuration(getEnv("SF_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SF_TIMEOUT: %w", err)
	}
	config.SuccessFactors = SuccessFactorsConfig{
		URL:          strings.TrimRight(getEnv("SF_URL", "https://api.successfactors.eu"), "/"),
		CompanyID:    getEnv("SF_COMPANY_ID", "SFHUB003674"),
		Username:     getEnv("SF_USERNAME", ""),
		Password:     getEnv("SF_PASSWORD", ""),
		ClientID:     getEnv("SF_CLIENT_ID", ""),
		ClientSecret: getEnv("SF_CLIENT_SECRET", ""),
		TokenURL:     getEnv("SF_TOKEN_URL", ""),
		Timeout:      sfTimeout,
	}

	config.Compensation = CompensationConfig{
		DefaultMode: getEnv("COMPENSATION_CALCULATION_MODE", "components"),
		Store:       getEnv("COMPENSATION_STORE", StoreMemory),
	}

	config.Workflow = WorkflowConfig{
		Store:             getEnv("WORKFLOW_STORE", StoreMemory),
		RoleDirectoryPath: getEnv("ROLE_DIRECTORY_PATH", ""),
		TemplatePath:      getEnv("WORKFLOW_TEMPLATE_PATH", ""),
	}

	failOpen, err := strconv.ParseBool(getEnv("RBP_FAIL_OPEN", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RBP_FAIL_OPEN: %w", err)
	}
	aliases, err := parseAliases(getEnv("RBP_ROLE_ALIASES", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid RBP_ROLE_ALIASES: %w", err)
	}
	config.RBP = RBPConfig{
		FailOpen:    failOpen,
		RoleAliases: aliases,
	}

	retryInterval, err := time.ParseDuration(getEnv("SYNC_RETRY_INTERVAL", "15m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SYNC_RETRY_INTERVAL: %w", err)
	}
	config.Sync = SyncConfig{RetryInterval: retryInterval}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if !validator.IsInSlice(c.Compensation.DefaultMode, []string{"components", "simple"}) {
		return fmt.Errorf("COMPENSATION_CALCULATION_MODE must be components or simple")
	}
	for name, store := range map[string]string{"WORKFLOW_STORE": c.Workflow.Store, "COMPENSATION_STORE": c.Compensation.Store} {
		if !validator.IsInSlice(store, []string{StoreMemory, StorePostgres}) {
			return fmt.Errorf("%s must be %s or %s", name, StoreMemory, StorePostgres)
		}
	}
	if c.UsesDatabase() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Sync.RetryInterval <= 0 {
		return fmt.Errorf("SYNC_RETRY_INTERVAL must be positive")
	}
	return nil
}

// UsesDatabase reports whether any store is backed by PostgreSQL.
func (c *Config) UsesDatabase() bool {
	return c.Workflow.Store == StorePostgres || c.Compensation.Store == StorePostgres
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// parseAliases reads "SF_ROLE=LOCAL_ROLE,OTHER=LOCAL_ROLE".
func parseAliases(value string) (map[string]string, error) {
	aliases := make(map[string]string)
	if value == "" {
		return aliases, nil
	}
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, "=")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("malformed alias %q", pair)
		}
		aliases[from] = to
	}
	return aliases, nil
}
