// Package config loads application settings from a YAML file pointed to by
// CONFIG_PATH, with environment variable overrides.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root settings structure.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	AMQPConnectionString    string `yaml:"amqp_connection_string" env:"AMQP_CONNECTION_STRING"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	AIProviders             `yaml:"ai_providers"`
	Images                  `yaml:"images"`
}

// HTTPServer holds HTTP listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"90s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"120s"`
}

// RedisConnection holds redis client settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken holds token signing settings.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"168h"`
}

// AIProviders holds upstream AI API credentials and gateway settings.
type AIProviders struct {
	AnthropicAPIKey   string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	GoogleAIAPIKey    string        `yaml:"google_ai_api_key" env:"GOOGLE_AI_API_KEY"`
	OpenAIAPIKey      string        `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	GatewayAPIKey     string        `yaml:"gateway_api_key" env:"GATEWAY_API_KEY"`
	RequestsPerMinute int           `yaml:"requests_per_minute" env-default:"10"`
	CallTimeout       time.Duration `yaml:"call_timeout" env-default:"30s"`
}

// Images holds uploaded-image storage settings.
type Images struct {
	StoragePath string `yaml:"storage_path" env-default:"./storage/images"`
	MaxSizeMB   int64  `yaml:"max_size_mb" env-default:"5"`
	PublicBase  string `yaml:"public_base" env-default:"/diary/images"`
}

// MustLoad reads the config file at CONFIG_PATH and exits on failure.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
