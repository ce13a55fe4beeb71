package main

import (
	"errors"
	"strings"
	"time"

	"user_service/internal/credentials"
	"user_service/internal/handlers"
	"user_service/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

var errNoSigningKey = errors.New("auth.signing_key is required outside debug mode (set APP_AUTH_SIGNING_KEY)")

// appConfig is the resolved runtime configuration.
type appConfig struct {
	Port      string
	Mode      string
	DBPath    string
	LogLevel  string
	LogFormat string
	Auth      credentials.Options
	HTTP      handlers.Options
	Server    server.Config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("mode", gin.ReleaseMode)
	v.SetDefault("db.path", "app.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("auth.token_ttl", time.Hour)
	v.SetDefault("auth.issuer", "user_service")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("ratelimit.auth.requests", handlers.DefaultAuthLimit.RequestsPerWindow)
	v.SetDefault("ratelimit.auth.window", handlers.DefaultAuthLimit.Window)
	v.SetDefault("ratelimit.auth.burst", handlers.DefaultAuthLimit.Burst)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("server.read_header_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
}

// loadConfig reads configs/config.yml (optional) and APP_* environment overrides.
func loadConfig(v *viper.Viper, paths ...string) error {
	for _, p := range paths {
		v.AddConfigPath(p) // <p>/config.yml
	}
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}

// resolveConfig turns viper values into typed settings and enforces the signing key rule.
func resolveConfig(v *viper.Viper) (appConfig, error) {
	cfg := appConfig{
		Port:      v.GetString("port"),
		Mode:      v.GetString("mode"),
		DBPath:    v.GetString("db.path"),
		LogLevel:  v.GetString("log.level"),
		LogFormat: v.GetString("log.format"),
		Auth: credentials.Options{
			SigningKey: v.GetString("auth.signing_key"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			Issuer:     v.GetString("auth.issuer"),
			BcryptCost: v.GetInt("auth.bcrypt_cost"),
		},
		HTTP: handlers.Options{
			AuthLimit: handlers.RateLimitConfig{
				RequestsPerWindow: v.GetInt("ratelimit.auth.requests"),
				Window:            v.GetDuration("ratelimit.auth.window"),
				Burst:             v.GetInt("ratelimit.auth.burst"),
			},
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		Server: server.Config{
			ReadHeaderTimeout: v.GetDuration("server.read_header_timeout"),
			WriteTimeout:      v.GetDuration("server.write_timeout"),
			IdleTimeout:       v.GetDuration("server.idle_timeout"),
		},
	}
	if cfg.Auth.SigningKey == "" && cfg.Mode != gin.DebugMode {
		return appConfig{}, errNoSigningKey
	}
	return cfg, nil
}
