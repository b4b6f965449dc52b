package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPath  = ".env"
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"

	StoreBackendPinata = "pinata"
	StoreBackendMemory = "memory"
)

type Config struct {
	Env      string
	DB       DB
	Server   Server
	Logger   Logger
	Store    Store
	Vault    Vault
	Mail     Mail
	OAuth    OAuth
	Session  Session
	Delivery Delivery
}

type DB struct {
	DatabaseURI string `mapstructure:"database_uri"`
}

type Server struct {
	RunAddress string `mapstructure:"run_address"`
	BaseURL    string `mapstructure:"base_url"`
}

type Logger struct {
	LogLevel string `mapstructure:"log_level"`
}

type Store struct {
	Backend     string
	APIURL      string
	GatewayURL  string
	APIKey      string
	APISecret   string
	JWT         string
	Timeout     time.Duration
	RetryMax    int
	Concurrency int
}

type Vault struct {
	Scheme     string
	BcryptCost int
}

type Mail struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (o OAuth) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

type Session struct {
	TTL time.Duration
}

type Delivery struct {
	Schedule            string
	InactivityThreshold time.Duration
	LastSeenInterval    time.Duration
	CronSecret          string
}

var defaults = map[string]any{
	"app_env":              EnvLocal,
	"run_address":          ":8080",
	"base_url":             "http://localhost:8080",
	"log_level":            "info",
	"store_backend":        StoreBackendPinata,
	"pinata_api_url":       "https://api.pinata.cloud",
	"pinata_gateway_url":   "https://gateway.pinata.cloud",
	"store_timeout":        "30s",
	"store_retry_max":      3,
	"store_concurrency":    4,
	"vault_scheme":         "hash_gated",
	"bcrypt_cost":          10,
	"smtp_port":            587,
	"mail_from":            "Digital Afterlife <noreply@localhost>",
	"session_ttl":          "24h",
	"delivery_schedule":    "0 * * * *",
	"inactivity_threshold": "4368h",
	"last_seen_interval":   "15m",
}

// Load reads .env, the optional config file at path and the environment,
// in increasing order of precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env: v.GetString("app_env"),
		DB:  DB{DatabaseURI: v.GetString("database_uri")},
		Server: Server{
			RunAddress: v.GetString("run_address"),
			BaseURL:    strings.TrimRight(v.GetString("base_url"), "/"),
		},
		Logger: Logger{LogLevel: v.GetString("log_level")},
		Store: Store{
			Backend:     v.GetString("store_backend"),
			APIURL:      v.GetString("pinata_api_url"),
			GatewayURL:  v.GetString("pinata_gateway_url"),
			APIKey:      v.GetString("pinata_api_key"),
			APISecret:   v.GetString("pinata_secret"),
			JWT:         v.GetString("pinata_jwt"),
			Timeout:     v.GetDuration("store_timeout"),
			RetryMax:    v.GetInt("store_retry_max"),
			Concurrency: v.GetInt("store_concurrency"),
		},
		Vault: Vault{
			Scheme:     v.GetString("vault_scheme"),
			BcryptCost: v.GetInt("bcrypt_cost"),
		},
		Mail: Mail{
			Host:     v.GetString("smtp_host"),
			Port:     v.GetInt("smtp_port"),
			Username: v.GetString("smtp_username"),
			Password: v.GetString("smtp_password"),
			From:     v.GetString("mail_from"),
		},
		OAuth: OAuth{
			ClientID:     v.GetString("google_client_id"),
			ClientSecret: v.GetString("google_client_secret"),
			RedirectURL:  v.GetString("google_redirect_url"),
		},
		Session: Session{TTL: v.GetDuration("session_ttl")},
		Delivery: Delivery{
			Schedule:            v.GetString("delivery_schedule"),
			InactivityThreshold: v.GetDuration("inactivity_threshold"),
			LastSeenInterval:    v.GetDuration("last_seen_interval"),
			CronSecret:          v.GetString("cron_secret"),
		},
	}

	if cfg.OAuth.RedirectURL == "" {
		cfg.OAuth.RedirectURL = cfg.Server.BaseURL + "/auth/google/callback"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MustLoad is Load that exits on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalln(err)
	}
	return cfg
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("app_env must be one of %s, %s, %s", EnvLocal, EnvDev, EnvProd)
	}

	switch c.Store.Backend {
	case StoreBackendPinata:
		if c.Store.JWT == "" && (c.Store.APIKey == "" || c.Store.APISecret == "") && c.Env == EnvProd {
			return fmt.Errorf("pinata credentials are required: set pinata_jwt or pinata_api_key and pinata_secret")
		}
	case StoreBackendMemory:
		if c.Env == EnvProd {
			return fmt.Errorf("store_backend %q is not allowed in %s", StoreBackendMemory, EnvProd)
		}
	default:
		return fmt.Errorf("unknown store_backend %q", c.Store.Backend)
	}

	if c.Vault.Scheme != "hash_gated" && c.Vault.Scheme != "legacy_encrypted" {
		return fmt.Errorf("vault_scheme must be hash_gated or legacy_encrypted")
	}

	return nil
}
