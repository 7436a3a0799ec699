// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	RedisURL       string `mapstructure:"REDIS_URL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	// BaseURL is the externally reachable origin used in email links.
	BaseURL string `mapstructure:"BASE_URL"`

	// TokenSecret signs every account-lifecycle and API token.
	TokenSecret string `mapstructure:"TOKEN_SECRET"`
	// TokenTTLSeconds is the default lifetime of confirmation, password-reset
	// and email-change tokens.
	TokenTTLSeconds int `mapstructure:"TOKEN_TTL_SECONDS"`
	// TokenLeewaySeconds absorbs clock skew when checking token expiry.
	TokenLeewaySeconds int `mapstructure:"TOKEN_LEEWAY_SECONDS"`

	// AdminEmail grants the Administrator role to the user registering with
	// this address.
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	SMTPHost          string `mapstructure:"SMTP_HOST"`
	SMTPPort          int    `mapstructure:"SMTP_PORT"`
	SMTPUser          string `mapstructure:"SMTP_USER"`
	SMTPPassword      string `mapstructure:"SMTP_PASSWORD"`
	MailSender        string `mapstructure:"MAIL_SENDER"`
	MailSubjectPrefix string `mapstructure:"MAIL_SUBJECT_PREFIX"`
}

// TokenTTL returns the configured token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLSeconds) * time.Second
}

// TokenLeeway returns the configured expiry leeway as a duration.
func (c *Config) TokenLeeway() time.Duration {
	return time.Duration(c.TokenLeewaySeconds) * time.Second
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// Initial read to get APP_ENV if set in base config
	// We intentionally ignore this error as the config file may not exist yet
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	// Set default values for development
	viper.SetDefault("PORT", "8460")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "user")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "quill")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("TOKEN_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("TOKEN_TTL_SECONDS", 1800)
	viper.SetDefault("TOKEN_LEEWAY_SECONDS", 10)
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("SMTP_HOST", "localhost")
	viper.SetDefault("SMTP_PORT", 1025)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("MAIL_SENDER", "Quill <noreply@quill.local>")
	viper.SetDefault("MAIL_SUBJECT_PREFIX", "[Quill] ")
	viper.SetDefault("BASE_URL", "http://localhost:8460")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.TokenSecret == "" {
		return errors.New("TOKEN_SECRET is required")
	}
	if c.TokenTTLSeconds <= 0 {
		return errors.New("TOKEN_TTL_SECONDS must be positive")
	}
	if c.TokenLeewaySeconds < 0 {
		return errors.New("TOKEN_LEEWAY_SECONDS must not be negative")
	}

	isProduction := c.Env == "production" || c.Env == "prod"

	// Strict checks for production
	if isProduction {
		if c.TokenSecret == "your-secret-key-change-in-production" {
			return errors.New("TOKEN_SECRET must be changed from the default value in production")
		}
		if len(c.TokenSecret) < 32 {
			return errors.New("TOKEN_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			log.Println("WARNING: DB_SSLMODE is 'disable' in production. It is highly recommended to use SSL for database connections.")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		// Development/Test warnings
		if len(c.TokenSecret) < 32 {
			log.Println("WARNING: TOKEN_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
