package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the whole application configuration.
type Config struct {
	Environment     string        `mapstructure:"environment"`
	HTTPPort        int           `mapstructure:"http_port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	ServiceName     string        `mapstructure:"service_name"`
	PublicURL       string        `mapstructure:"public_url"` // prefix of links sent by email
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Jwt       JwtAuthOptions  `mapstructure:"jwtauthoptions"`
	Smtp      EmailOptions    `mapstructure:"smtpconfiguration"`
	Admin     AdminConfig     `mapstructure:"admin"`
	SPA       SPAConfig       `mapstructure:"spa"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Consul    ConsulConfig    `mapstructure:"consul"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // mysql, postgres or sqlite
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// JwtAuthOptions controls how tokens are issued and which checks are applied
// when they come back.
type JwtAuthOptions struct {
	SecretKey        string `mapstructure:"secretkey"`
	Issuer           string `mapstructure:"issuer"`
	Audience         string `mapstructure:"audience"`
	LifetimeMinutes  int    `mapstructure:"lifetimeminutes"`
	ValidateIssuer   bool   `mapstructure:"validateissuer"`
	ValidateAudience bool   `mapstructure:"validateaudience"`
	ValidateLifetime bool   `mapstructure:"validatelifetime"`
	ClockSkewSeconds int    `mapstructure:"clockskewseconds"`
}

func (o JwtAuthOptions) Lifetime() time.Duration {
	return time.Duration(o.LifetimeMinutes) * time.Minute
}

func (o JwtAuthOptions) ClockSkew() time.Duration {
	return time.Duration(o.ClockSkewSeconds) * time.Second
}

// EmailOptions is the SmtpConfiguration section. An empty Host disables sending.
type EmailOptions struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	UserName  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	EnableSsl bool   `mapstructure:"enablessl"`
}

// AdminConfig holds the credentials of the admin seeded on first start.
type AdminConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

// SPAConfig locates the front-end build and, in development, its dev server.
type SPAConfig struct {
	Root         string `mapstructure:"root"`
	DevServerURL string `mapstructure:"dev_server_url"`
}

// RateLimitConfig limits requests per client IP. RPS 0 disables it.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// ConsulConfig controls self-registration with a Consul agent.
type ConsulConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Address       string `mapstructure:"address"`
	CheckInterval string `mapstructure:"check_interval"`
	CheckTimeout  string `mapstructure:"check_timeout"`
}

var AppConfig Config

const defaultSecret = "default-very-insecure-secret-key"

// InitConfig loads the configuration into AppConfig and panics when it cannot.
func InitConfig() {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Errorf("fatal error loading config: %w", err))
	}
	AppConfig = *cfg
}

// Load reads config.yaml (or the file at path when set), an optional .env file
// and BOOKSTORE_* environment variables, in increasing order of precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path == "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvProduction)
	v.SetDefault("http_port", 8080)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("service_name", "bookstore")
	v.SetDefault("public_url", "http://localhost:8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:bookstore.db?_foreign_keys=on")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "log.txt")

	v.SetDefault("jwtauthoptions.secretkey", defaultSecret) // CHANGE THIS IN PRODUCTION
	v.SetDefault("jwtauthoptions.issuer", "bookstore")
	v.SetDefault("jwtauthoptions.audience", "bookstore-client")
	v.SetDefault("jwtauthoptions.lifetimeminutes", 60)
	v.SetDefault("jwtauthoptions.validateissuer", true)
	v.SetDefault("jwtauthoptions.validateaudience", true)
	v.SetDefault("jwtauthoptions.validatelifetime", true)
	v.SetDefault("jwtauthoptions.clockskewseconds", 0)

	v.SetDefault("smtpconfiguration.host", "")
	v.SetDefault("smtpconfiguration.port", 587)
	v.SetDefault("smtpconfiguration.username", "")
	v.SetDefault("smtpconfiguration.password", "")
	v.SetDefault("smtpconfiguration.from", "bookstore@example.com")
	v.SetDefault("smtpconfiguration.enablessl", false)

	v.SetDefault("admin.email", "admin@example.com")
	v.SetDefault("admin.password", "adminpassword")

	v.SetDefault("spa.root", "ClientApp/dist")
	v.SetDefault("spa.dev_server_url", "")

	v.SetDefault("rate_limit.rps", 0)
	v.SetDefault("rate_limit.burst", 20)

	v.SetDefault("consul.enabled", false)
	v.SetDefault("consul.address", "127.0.0.1:8500")
	v.SetDefault("consul.check_interval", "10s")
	v.SetDefault("consul.check_timeout", "1s")
}

func (c *Config) validate() error {
	switch c.Environment {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.Jwt.SecretKey == "" {
		return errors.New("JwtAuthOptions.SecretKey must not be empty")
	}
	if c.Jwt.LifetimeMinutes <= 0 {
		return errors.New("JwtAuthOptions.LifetimeMinutes must be positive")
	}
	return nil
}

// IsDevelopment reports whether the environment is development.
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// UsesDefaultSecret reports whether the signing key was never configured.
func (c *Config) UsesDefaultSecret() bool {
	return c.Jwt.SecretKey == defaultSecret
}

// String returns a printable form of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, HTTP: %d, gRPC: %d, DB: %s, Log: %s@%s, SMTP: %s:%d, Jwt: *** (masked) ***}",
		c.Environment, c.HTTPPort, c.GRPCPort, c.Database.Driver, c.Log.Level, c.Log.File, c.Smtp.Host, c.Smtp.Port)
}
