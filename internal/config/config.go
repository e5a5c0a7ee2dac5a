package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ticketera/internal/models"
)

const (
	DefaultPath = "config/config.yaml"

	MailDriverSMTP   = "smtp"
	MailDriverHTTP   = "http"
	MailDriverDryRun = "dry_run"
)

type FilesConfig struct {
	RootDir       string `yaml:"root_dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	FontPath      string `yaml:"font_path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type EmailConfig struct {
	Driver       string `yaml:"driver"`
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
	RelayURL     string `yaml:"relay_url"`
}

type AuthConfig struct {
	JWTSecret string             `yaml:"jwt_secret"`
	TokenTTL  time.Duration      `yaml:"token_ttl"`
	Admins    []models.AdminUser `yaml:"admins"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

type LimitsConfig struct {
	CodeTTL         time.Duration `yaml:"code_ttl"`
	MaxCodeAttempts int           `yaml:"max_code_attempts"`
	AttemptLimit    int           `yaml:"attempt_limit"`
	AttemptWindow   time.Duration `yaml:"attempt_window"`
	CheckoutTTL     time.Duration `yaml:"checkout_ttl"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
	MaxVoucherBytes int64         `yaml:"max_voucher_bytes"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN     string `yaml:"url"`
		Migrate bool   `yaml:"migrate"`
	} `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Email    EmailConfig    `yaml:"email"`
	Files    FilesConfig    `yaml:"files"`
	Auth     AuthConfig     `yaml:"auth"`
	Telegram TelegramConfig `yaml:"telegram"`
	Limits   LimitsConfig   `yaml:"limits"`
}

// Path returns TICKETERA_CONFIG or config/config.yaml.
func Path() string {
	if p := os.Getenv("TICKETERA_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads .env (if present), the YAML file, then env overrides and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env not loaded: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig panics when the config cannot be loaded.
func LoadConfig() *Config {
	cfg, err := Load(Path())
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Email.SMTPPassword = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Files.RootDir == "" {
		c.Files.RootDir = "./files"
	}
	if c.Files.PublicBaseURL == "" {
		c.Files.PublicBaseURL = fmt.Sprintf("http://localhost:%d/vouchers", c.Server.Port)
	}
	if c.Email.Driver == "" {
		c.Email.Driver = MailDriverDryRun
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "ticketera:"
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}

	l := &c.Limits
	if l.CodeTTL == 0 {
		l.CodeTTL = 15 * time.Minute
	}
	if l.MaxCodeAttempts == 0 {
		l.MaxCodeAttempts = 3
	}
	if l.AttemptLimit == 0 {
		l.AttemptLimit = 5
	}
	if l.AttemptWindow == 0 {
		l.AttemptWindow = 15 * time.Minute
	}
	if l.CheckoutTTL == 0 {
		l.CheckoutTTL = 2 * time.Hour
	}
	if l.JanitorInterval == 0 {
		l.JanitorInterval = 5 * time.Minute
	}
	if l.MaxVoucherBytes == 0 {
		l.MaxVoucherBytes = 5 << 20
	}
}

func (c *Config) validate() error {
	switch c.Email.Driver {
	case MailDriverSMTP:
		if c.Email.SMTPHost == "" || c.Email.FromEmail == "" {
			return fmt.Errorf("email: smtp driver needs smtp_host and from_email")
		}
	case MailDriverHTTP:
		if c.Email.RelayURL == "" {
			return fmt.Errorf("email: http driver needs relay_url")
		}
	case MailDriverDryRun:
	default:
		return fmt.Errorf("email: unknown driver %q", c.Email.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database: url is required")
	}
	return nil
}
