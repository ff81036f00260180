package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Secrets     SecretsConfig
	Broker      BrokerConfig
	SMTP        SMTPConfig
	CORS        CORSConfig
	FrontendURL string
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret                   string
	AccessTokenExpireMinutes int
	RefreshTokenExpireDays   int
}

// SecretsConfig holds the expiry windows for the one-time secrets stored on
// the user row.
type SecretsConfig struct {
	VerificationExpireHours  int
	PasswordResetExpireHours int
}

type BrokerConfig struct {
	URL            string
	ClientID       string
	Username       string
	Password       string
	ConnectTimeout int
	PublishTimeout int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:                   viper.GetString("JWT_SECRET"),
			AccessTokenExpireMinutes: viper.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES"),
			RefreshTokenExpireDays:   viper.GetInt("REFRESH_TOKEN_EXPIRE_DAYS"),
		},
		Secrets: SecretsConfig{
			VerificationExpireHours:  viper.GetInt("VERIFICATION_TOKEN_EXPIRE_HOURS"),
			PasswordResetExpireHours: viper.GetInt("PASSWORD_RESET_TOKEN_EXPIRE_HOURS"),
		},
		Broker: BrokerConfig{
			URL:            viper.GetString("BROKER_URL"),
			ClientID:       viper.GetString("BROKER_CLIENT_ID"),
			Username:       viper.GetString("BROKER_USERNAME"),
			Password:       viper.GetString("BROKER_PASSWORD"),
			ConnectTimeout: viper.GetInt("BROKER_CONNECT_TIMEOUT"),
			PublishTimeout: viper.GetInt("BROKER_PUBLISH_TIMEOUT"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		FrontendURL: viper.GetString("FRONTEND_URL"),
	}

	return config, nil
}

func setDefaults() {
	viper.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	viper.SetDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	viper.SetDefault("VERIFICATION_TOKEN_EXPIRE_HOURS", 24)
	viper.SetDefault("PASSWORD_RESET_TOKEN_EXPIRE_HOURS", 1)
	viper.SetDefault("BROKER_CLIENT_ID", "auth-service")
	viper.SetDefault("BROKER_CONNECT_TIMEOUT", 5)
	viper.SetDefault("BROKER_PUBLISH_TIMEOUT", 5)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
