package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env            string        `mapstructure:"ENV"`
	Port           string        `mapstructure:"PORT"`
	AdminKey       string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed    string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`

	FirestoreProjectID string `mapstructure:"FIRESTORE_PROJECT_ID"`
	GoogleCredentials  string `mapstructure:"GOOGLE_CREDENTIALS_FILE"`
	SheetsSpreadsheet  string `mapstructure:"SHEETS_SPREADSHEET_ID"`

	RedisAddr string        `mapstructure:"REDIS_ADDR"`
	CacheTTL  time.Duration `mapstructure:"CACHE_TTL"`

	RawDataDir       string `mapstructure:"RAW_DATA_DIR"`
	ProcessedDataDir string `mapstructure:"PROCESSED_DATA_DIR"`
	ScheduleFile     string `mapstructure:"SCHEDULE_FILE"`

	HubSpotBaseURL string `mapstructure:"HUBSPOT_BASE_URL"`
	HubSpotAPIKey  string `mapstructure:"HUBSPOT_API_KEY"`

	LiveChatBaseURL string `mapstructure:"LIVECHAT_BASE_URL"`
	LiveChatToken   string `mapstructure:"LIVECHAT_TOKEN"`

	AssistantBaseURL   string `mapstructure:"ASSISTANT_BASE_URL"`
	AssistantModel     string `mapstructure:"ASSISTANT_MODEL"`
	AssistantAPIKey    string `mapstructure:"ASSISTANT_API_KEY"`
	AssistantMaxTokens int    `mapstructure:"ASSISTANT_MAX_TOKENS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	// Every key gets a default so AutomaticEnv can see it during Unmarshal.
	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("RAW_DATA_DIR", "data/raw")
	v.SetDefault("PROCESSED_DATA_DIR", "data/processed")
	v.SetDefault("SCHEDULE_FILE", "config/schedule.yaml")
	v.SetDefault("HUBSPOT_BASE_URL", "https://api.hubapi.com")
	v.SetDefault("LIVECHAT_BASE_URL", "https://api.livechatinc.com")
	v.SetDefault("ASSISTANT_MAX_TOKENS", 512)
	for _, key := range []string{
		"ADMIN_KEY", "FIRESTORE_PROJECT_ID", "GOOGLE_CREDENTIALS_FILE",
		"SHEETS_SPREADSHEET_ID", "REDIS_ADDR", "HUBSPOT_API_KEY",
		"LIVECHAT_TOKEN", "ASSISTANT_BASE_URL", "ASSISTANT_MODEL",
		"ASSISTANT_API_KEY",
	} {
		v.SetDefault(key, "")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
