package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Mode     string `mapstructure:"mode"`
	LogLevel string `mapstructure:"log_level"`
	HTTPPort int    `mapstructure:"http_port" validate:"gt=0,lte=65535"`

	Token      string `mapstructure:"token" validate:"required"`
	APIBaseURL string `mapstructure:"api_base_url" validate:"required,url"`
	GatewayURL string `mapstructure:"gateway_url" validate:"required"`
	BotUserID  string `mapstructure:"bot_user_id" validate:"required"`

	Redis struct {
		Addr     string `mapstructure:"addr" validate:"required,hostname_port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	CallTimeout time.Duration `mapstructure:"call_timeout" validate:"gt=0"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_port", 8081)
	v.SetDefault("api_base_url", "https://discord.com/api/v10")
	v.SetDefault("gateway_url", "wss://gateway.discord.gg")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("call_timeout", "15s")

	v.SetEnvPrefix("MH")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
