package utils

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	// Application
	AppPort      string `yaml:"APP_PORT"`
	AppURL       string `yaml:"APP_URL"`
	Timezone     string `yaml:"TIMEZONE"`
	RateLimitMax string `yaml:"RATE_LIMIT_MAX"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`
	DBSSLMode  string `yaml:"DB_SSLMODE"`

	JWTSecret string `yaml:"JWT_SECRET"`
	JWTTTL    string `yaml:"JWT_TTL"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`

	// AWS configuration
	AWSS3Bucket   string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region   string `yaml:"AWS_S3_REGION"`
	AWSAccessKey  string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey  string `yaml:"AWS_SECRET_KEY"`
	SignedURLTTL  string `yaml:"SIGNED_URL_TTL"`
	StorageEnable string `yaml:"STORAGE_ENABLED"`

	// Vision model configuration
	LLMProvider         string `yaml:"LLM_PROVIDER"`
	OpenAIAPIKey        string `yaml:"OPENAI_API_KEY"`
	OpenAIModel         string `yaml:"OPENAI_MODEL"`
	OpenAIBaseURL       string `yaml:"OPENAI_BASE_URL"`
	GeminiAPIKey        string `yaml:"GEMINI_API_KEY"`
	GeminiModel         string `yaml:"GEMINI_MODEL"`
	ClassifierProvider  string `yaml:"CLASSIFIER_PROVIDER"`
	AnalysisMaxAttempts string `yaml:"ANALYSIS_MAX_ATTEMPTS"`
	AnalysisBackoffBase string `yaml:"ANALYSIS_BACKOFF_BASE"`
	FreeDailyQuota      string `yaml:"FREE_DAILY_QUOTA"`

	// Messaging
	RabbitMQURL      string `yaml:"RABBITMQ_URL"`
	RabbitMQExchange string `yaml:"RABBITMQ_EXCHANGE"`

	// Logging
	LogLevel       string `yaml:"LOG_LEVEL"`
	LogDir         string `yaml:"LOG_DIR"`
	LogELKURL      string `yaml:"LOG_ELK_URL"`
	LogELKIndex    string `yaml:"LOG_ELK_INDEX"`
	LogLogstashURL string `yaml:"LOG_LOGSTASH_URL"`
}

var config Config

// LoadConfig reads config.yaml, then lets a .env file and the process
// environment override any key.
func LoadConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error reading .env file: %s\n", err)
	}

	file, err := os.ReadFile(configPath())
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	if err := yaml.Unmarshal(file, &config); err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config.yaml"
}

func lookup(key string) string {
	switch key {
	case "APP_PORT":
		return config.AppPort
	case "APP_URL":
		return config.AppURL
	case "TIMEZONE":
		return config.Timezone
	case "RATE_LIMIT_MAX":
		return config.RateLimitMax
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "DB_SSLMODE":
		return config.DBSSLMode
	case "JWT_SECRET":
		return config.JWTSecret
	case "JWT_TTL":
		return config.JWTTTL
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "SIGNED_URL_TTL":
		return config.SignedURLTTL
	case "STORAGE_ENABLED":
		return config.StorageEnable
	case "LLM_PROVIDER":
		return config.LLMProvider
	case "OPENAI_API_KEY":
		return config.OpenAIAPIKey
	case "OPENAI_MODEL":
		return config.OpenAIModel
	case "OPENAI_BASE_URL":
		return config.OpenAIBaseURL
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return config.GeminiModel
	case "CLASSIFIER_PROVIDER":
		return config.ClassifierProvider
	case "ANALYSIS_MAX_ATTEMPTS":
		return config.AnalysisMaxAttempts
	case "ANALYSIS_BACKOFF_BASE":
		return config.AnalysisBackoffBase
	case "FREE_DAILY_QUOTA":
		return config.FreeDailyQuota
	case "RABBITMQ_URL":
		return config.RabbitMQURL
	case "RABBITMQ_EXCHANGE":
		return config.RabbitMQExchange
	case "LOG_LEVEL":
		return config.LogLevel
	case "LOG_DIR":
		return config.LogDir
	case "LOG_ELK_URL":
		return config.LogELKURL
	case "LOG_ELK_INDEX":
		return config.LogELKIndex
	case "LOG_LOGSTASH_URL":
		return config.LogLogstashURL
	default:
		return ""
	}
}

// GetConfig returns the value for key. A non-empty environment variable wins
// over config.yaml.
func GetConfig(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return lookup(key)
}

func GetConfigDefault(key, def string) string {
	if v := GetConfig(key); v != "" {
		return v
	}
	return def
}

func GetConfigInt(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(GetConfig(key)))
	if err != nil {
		return def
	}
	return v
}

func GetConfigDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(GetConfig(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func GetConfigBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(GetConfig(key)))
	if err != nil {
		return def
	}
	return v
}

// Location returns the configured TIMEZONE, falling back to the server's
// local zone.
func Location() *time.Location {
	name := GetConfig("TIMEZONE")
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using local time\n", name)
		return time.Local
	}
	return loc
}
