package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/poem-studio/backend/internal/service/ai"
)

const (
	ProviderOpenAI = "openai"
	ProviderArk    = "ark"

	defaultBaseURL = "https://oi-server.onrender.com"
	defaultModel   = "anthropic/claude-3.5-sonnet"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Storage StorageConfig
	Log     LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	aiCfg, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	log, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: aiCfg, Storage: storage, Log: log}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr          string
	AllowedOrigin string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origin := getEnvOrDefault("CORS_ALLOWED_ORIGIN", "*")

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are taken as-is.
		return ServerConfig{Addr: port, AllowedOrigin: origin}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigin: origin}, nil
}

// AIConfig 描述大模型相关配置。
type AIConfig struct {
	Provider   string
	BaseURL    string
	APIKey     string
	CustomerID string
	Model      string
	Timeout    time.Duration

	// Ark credentials, used when Provider is "ark".
	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkBaseURL   string
	ArkRegion    string
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	if c.Model == "" {
		return false
	}
	switch c.Provider {
	case ProviderArk:
		return c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != "")
	default:
		return c.BaseURL != "" && c.APIKey != ""
	}
}

// NewChatModel 使用配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.BaseChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("%s provider credentials or model missing", c.Provider)
	}

	switch c.Provider {
	case ProviderArk:
		cfg := &ark.ChatModelConfig{
			BaseURL:   c.ArkBaseURL,
			Region:    c.ArkRegion,
			APIKey:    c.ArkAPIKey,
			AccessKey: c.ArkAccessKey,
			SecretKey: c.ArkSecretKey,
			Model:     c.Model,
		}
		noRetries := 0
		cfg.RetryTimes = &noRetries
		if c.Timeout > 0 {
			timeout := c.Timeout
			cfg.Timeout = &timeout
		}
		return ark.NewChatModel(ctx, cfg)
	default:
		return ai.NewCompletionModel(ai.CompletionConfig{
			BaseURL:    c.BaseURL,
			APIKey:     c.APIKey,
			CustomerID: c.CustomerID,
			Model:      c.Model,
			Timeout:    c.Timeout,
		})
	}
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("POEM_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid POEM_PROVIDER value %q", provider)
	}

	timeoutSeconds, err := parseOptionalIntEnv("POEM_TIMEOUT")
	if err != nil {
		return AIConfig{}, err
	}
	var timeout time.Duration
	if timeoutSeconds != nil {
		if *timeoutSeconds < 0 {
			return AIConfig{}, fmt.Errorf("invalid POEM_TIMEOUT value %d", *timeoutSeconds)
		}
		timeout = time.Duration(*timeoutSeconds) * time.Second
	}

	return AIConfig{
		Provider:     provider,
		BaseURL:      getEnvOrDefault("POEM_BASE_URL", defaultBaseURL),
		APIKey:       strings.TrimSpace(os.Getenv("POEM_API_KEY")),
		CustomerID:   strings.TrimSpace(os.Getenv("POEM_CUSTOMER_ID")),
		Model:        getEnvOrDefault("POEM_MODEL", defaultModel),
		Timeout:      timeout,
		ArkAPIKey:    strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey: strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey: strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkBaseURL:   getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:    getEnvOrDefault("ARK_REGION", "cn-beijing"),
	}, nil
}

// StorageConfig 描述收藏列表的存储位置。
type StorageConfig struct {
	Driver string
	Path   string
}

func loadStorageConfig() (StorageConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("POEM_STORE", "file"))

	var path string
	switch driver {
	case "file":
		path = getEnvOrDefault("POEM_STORE_PATH", "data/poems")
	case "sqlite":
		path = getEnvOrDefault("POEM_STORE_PATH", "data/poems.db")
	case "memory":
	default:
		return StorageConfig{}, fmt.Errorf("invalid POEM_STORE value %q", driver)
	}

	return StorageConfig{Driver: driver, Path: path}, nil
}

// LogConfig 描述日志级别与格式。
type LogConfig struct {
	Level logrus.Level
	JSON  bool
}

// Apply 将配置应用到全局 logrus 日志器。
func (c LogConfig) Apply() {
	logrus.SetLevel(c.Level)
	if c.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func loadLogConfig() (LogConfig, error) {
	level, err := logrus.ParseLevel(getEnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value: %w", err)
	}

	format := strings.ToLower(getEnvOrDefault("LOG_FORMAT", "text"))
	if format != "text" && format != "json" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	return LogConfig{Level: level, JSON: format == "json"}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
