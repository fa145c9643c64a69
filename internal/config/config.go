package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Xendit struct {
		BaseURL            string `yaml:"base_url"`
		DefaultCurrency    string `yaml:"default_currency"`
		PayerEmail         string `yaml:"payer_email"`
		SuccessRedirectURL string `yaml:"success_redirect_url"`
		FailureRedirectURL string `yaml:"failure_redirect_url"`
	} `yaml:"xendit"`

	// Secrets are never kept in the YAML file; they are resolved from the
	// environment after the file is parsed.
	XenditAPIKey        string `yaml:"-"`
	XenditCallbackToken string `yaml:"-"`
	JWTSigningKey       string `yaml:"-"`
	FirebaseCredentials string `yaml:"-"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Failed to read config file: %v", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Database.URL = url
	}
	cfg.XenditAPIKey = os.Getenv("XENDIT_API_KEY")
	cfg.XenditCallbackToken = os.Getenv("XENDIT_CALLBACK_TOKEN")
	cfg.JWTSigningKey = os.Getenv("JWT_SIGNING_KEY")
	cfg.FirebaseCredentials = os.Getenv("FIREBASE_CREDENTIALS_JSON")

	if cfg.JWTSigningKey == "" {
		log.Fatal("JWT_SIGNING_KEY is not set")
	}
	if cfg.Xendit.DefaultCurrency == "" {
		cfg.Xendit.DefaultCurrency = "PHP"
	}

	return cfg
}
