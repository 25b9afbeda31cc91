package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"clip-and-ship/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Events      Events      `json:"events"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	YouTube     YouTube     `json:"youtube"`
	Automation  Automation  `json:"automation"`
	Webhook     Webhook     `json:"webhook"`
	Jobs        Jobs        `json:"jobs"`
	Storage     Storage     `json:"storage"`
	Metrics     Metrics     `json:"metrics"`
	Sentry      Sentry      `json:"sentry"`
}

type App struct {
	Port           int      `json:"port"`
	SecretKey      string   `json:"secretKey"`
	AppURL         string   `json:"appURL"`
	AllowedOrigins []string `json:"allowedOrigins"`
	TLSEnabled     bool     `json:"tlsEnabled"`
	TLSCertFile    string   `json:"tlsCertFile"`
	TLSKeyFile     string   `json:"tlsKeyFile"`
}

type Database struct {
	Psql Db `json:"psql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

// Events selects the lifecycle event bus: "pubsub", "servicebus" or "" (disabled).
type Events struct {
	Driver string `json:"driver"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	Username string `json:"username"`
	DB       int    `json:"db"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

type YouTube struct {
	ClientID     string   `json:"clientId"`
	ClientSecret string   `json:"clientSecret"`
	RedirectURI  string   `json:"redirectURI"`
	StateSecret  string   `json:"stateSecret"`
	DemoUserID   string   `json:"demoUserId"`
	Scopes       []string `json:"scopes"`
}

// Automation holds the external workflow endpoints.
type Automation struct {
	GenerationWebhookURL string `json:"generationWebhookURL"`
	ApprovalWebhookURL   string `json:"approvalWebhookURL"`
	PublishWebhookURL    string `json:"publishWebhookURL"`
	CallbackBaseURL      string `json:"callbackBaseURL"`
	TimeoutSeconds       int    `json:"timeoutSeconds"`
}

// Webhook configures the inbound automation receivers.
type Webhook struct {
	ServiceKey              string `json:"serviceKey"`
	FallbackTestUserID      string `json:"fallbackTestUserId"`
	ApprovalRecencyFallback *bool  `json:"approvalRecencyFallback"`
}

type Jobs struct {
	RejectedSweepInterval string `json:"rejectedSweepInterval"`
	HealthProbeInterval   string `json:"healthProbeInterval"`
}

type Storage struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	PublicBaseURL   string `json:"publicBaseURL"`
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
}

type Metrics struct {
	Namespace string `json:"namespace"`
}

type Sentry struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initAutomation(&C)
	initWebhook(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
	logger.SetLevel(C.Logger.Level)
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "clipship")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")
	logger.GetLogger().WithFields(map[string]interface{}{
		"host": C.Database.Psql.Host,
		"port": C.Database.Psql.Port,
		"name": C.Database.Psql.Name,
	}).Info("Database configuration")
}

func initApp(C *Config) {
	// SECRET_KEY verifies user access tokens; env overrides the config file.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order: APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	C.App.AppURL = getConfigValue(C.App.AppURL, "APP_URL", "https://clipandship.ca/app")
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
	C.Sentry.DSN = getConfigValue(C.Sentry.DSN, "SENTRY_DSN", "")
	C.Sentry.Environment = getConfigValue(C.Sentry.Environment, "ENV", "local")
	if C.Metrics.Namespace == "" {
		C.Metrics.Namespace = "clipship"
	}
}

func initAutomation(C *Config) {
	C.Automation.GenerationWebhookURL = getConfigValue(C.Automation.GenerationWebhookURL, "VIDEO_GENERATION_WEBHOOK_URL", "")
	C.Automation.ApprovalWebhookURL = getConfigValue(C.Automation.ApprovalWebhookURL, "VIDEO_APPROVAL_WEBHOOK_URL", "")
	C.Automation.PublishWebhookURL = getConfigValue(C.Automation.PublishWebhookURL, "VIDEO_PUBLISH_WEBHOOK_URL", "")
	C.Automation.CallbackBaseURL = getConfigValue(C.Automation.CallbackBaseURL, "CALLBACK_BASE_URL", "")
	if C.Automation.TimeoutSeconds == 0 {
		C.Automation.TimeoutSeconds = 30
	}
	if C.Automation.GenerationWebhookURL == "" {
		logger.GetLogger().Warn("VIDEO_GENERATION_WEBHOOK_URL not set; submitted ideas stay pending")
	}
}

func initWebhook(C *Config) {
	C.Webhook.ServiceKey = getConfigValue(C.Webhook.ServiceKey, "WEBHOOK_SERVICE_KEY", "")
	C.Webhook.FallbackTestUserID = getConfigValue(C.Webhook.FallbackTestUserID, "FALLBACK_TEST_USER_ID", "")
	if C.Webhook.ApprovalRecencyFallback == nil {
		enabled := true
		C.Webhook.ApprovalRecencyFallback = &enabled
	}
}

// Duration parses a duration setting, falling back to def when empty or malformed.
func Duration(value string, def time.Duration) time.Duration {
	if value == "" {
		return def
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logger.GetLogger().WithField("value", value).Warn("Invalid duration in configuration, using default")
		return def
	}
	return d
}
