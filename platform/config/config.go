// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// EmailConfig provides settings for email sending over SMTP.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// ArchiveConfig provides settings for MinIO raw submission archival.
type ArchiveConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetRawSubmissionsBucket() string
	IsArchiveEnabled() bool
}

// StreamConfig provides settings for the Kafka lead event stream.
type StreamConfig interface {
	GetKafkaBrokers() []string
	GetKafkaLeadTopic() string
	IsStreamEnabled() bool
}

// AgentsConfig provides settings for the agents module.
type AgentsConfig interface {
	GetAgentPolicyFile() string
	GetDefaultPhoneRegion() string
}

// IntakeConfig provides settings for the public intake endpoints.
type IntakeConfig interface {
	GetIntakeRateLimit() float64
	GetIntakeRateBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromName        string
	EmailFromAddress     string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	RawSubmissionsBucket string
	KafkaBrokers         []string
	KafkaLeadTopic       string
	AgentPolicyFile      string
	DefaultPhoneRegion   string
	IntakeRateLimit      float64
	IntakeRateBurst      int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// ArchiveConfig implementation
func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetRawSubmissionsBucket() string { return c.RawSubmissionsBucket }
func (c *Config) IsArchiveEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// StreamConfig implementation
func (c *Config) GetKafkaBrokers() []string { return c.KafkaBrokers }
func (c *Config) GetKafkaLeadTopic() string { return c.KafkaLeadTopic }
func (c *Config) IsStreamEnabled() bool {
	return len(c.KafkaBrokers) > 0 && c.KafkaLeadTopic != ""
}

// AgentsConfig implementation
func (c *Config) GetAgentPolicyFile() string    { return c.AgentPolicyFile }
func (c *Config) GetDefaultPhoneRegion() string { return c.DefaultPhoneRegion }

// IntakeConfig implementation
func (c *Config) GetIntakeRateLimit() float64 { return c.IntakeRateLimit }
func (c *Config) GetIntakeRateBurst() int     { return c.IntakeRateBurst }

// Load reads configuration from the environment, with .env file support.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	smtpHost := getEnv("SMTP_HOST", "")
	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		EmailEnabled:         emailEnabled && smtpHost != "",
		SMTPHost:             smtpHost,
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Lead Intake"),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE_NAME", "intake"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "5")),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		RawSubmissionsBucket: getEnv("MINIO_BUCKET_RAW_SUBMISSIONS", "raw-submissions"),
		KafkaBrokers:         splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaLeadTopic:       getEnv("KAFKA_LEAD_TOPIC", "lead-events"),
		AgentPolicyFile:      getEnv("AGENT_POLICY_FILE", ""),
		DefaultPhoneRegion:   getEnv("DEFAULT_PHONE_REGION", "US"),
		IntakeRateLimit:      mustFloat(getEnv("INTAKE_RATE_LIMIT", "10")),
		IntakeRateBurst:      mustInt(getEnv("INTAKE_RATE_BURST", "20")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.IntakeRateLimit <= 0 || cfg.IntakeRateBurst <= 0 {
		return nil, fmt.Errorf("INTAKE_RATE_LIMIT and INTAKE_RATE_BURST must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
