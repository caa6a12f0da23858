package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type EmailConfig struct {
	Provider   string        `mapstructure:"provider"`
	From       string        `mapstructure:"from"`
	APIKey     string        `mapstructure:"api_key"`
	APIBaseURL string        `mapstructure:"api_base_url"`
	SMTPHost   string        `mapstructure:"smtp_host"`
	SMTPPort   int           `mapstructure:"smtp_port"`
	Username   string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	SESRegion  string        `mapstructure:"ses_region"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Timezone   string        `mapstructure:"timezone"`
}

// HasAPIKey reports whether an API key credential was supplied.
func (c EmailConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// HasSMTPCredentials reports whether a complete user/password pair was supplied.
func (c EmailConfig) HasSMTPCredentials() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	ServerPort string      `mapstructure:"server_port"`
	LogLevel   string      `mapstructure:"log_level"`
	CORS       CORSConfig  `mapstructure:"cors"`
	Email      EmailConfig `mapstructure:"email"`
}

// Load reads the optional config.yaml file, overlays environment variables
// and returns the resulting Config. A missing config file is not an error.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// Look for config in the current directory and ./config
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)

	// EMAIL_API_KEY overrides email.api_key, SERVER_PORT overrides server_port, etc.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	normalize(&config)
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server_port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("email.provider", "auto")
	v.SetDefault("email.from", "onboarding@resend.dev")
	v.SetDefault("email.api_key", "")
	v.SetDefault("email.api_base_url", "https://api.resend.com")
	v.SetDefault("email.smtp_host", "smtp.gmail.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.user", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.ses_region", "us-east-1")
	v.SetDefault("email.timeout", 10*time.Second)
	v.SetDefault("email.timezone", "UTC")
}

// Fallback defaults for values that were explicitly set empty.
func normalize(config *Config) {
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	config.Email.Provider = strings.ToLower(strings.TrimSpace(config.Email.Provider))
	if config.Email.Provider == "" {
		config.Email.Provider = "auto"
	}
	if config.Email.SMTPPort == 0 {
		config.Email.SMTPPort = 587
	}
	if config.Email.Timeout <= 0 {
		config.Email.Timeout = 10 * time.Second
	}
	if config.Email.Timezone == "" {
		config.Email.Timezone = "UTC"
	}
}
