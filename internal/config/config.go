package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	speechmodel "github.com/shetkarimitra/advisor/internal/model/speech"
)

// Config aggregates every configuration section.
type Config struct {
	LogLevel string
	Server   ServerConfig
	AI       AIConfig
	Speech   SpeechConfig
	Store    StoreConfig
	Client   ClientConfig
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig()
	if err != nil {
		return nil, err
	}

	client, err := loadClientConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		Server:   server,
		AI:       ai,
		Speech:   speech,
		Store:    store,
		Client:   client,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are accepted as-is.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// AIConfig describes the Ark chat model used by the advisory backend.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether enough credentials were provided to build a model.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel builds the Ark chat model described by the config.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: set ARK_API_KEY (or ARK_ACCESS_KEY/ARK_SECRET_KEY) and ARK_MODEL")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("ARK_MODEL")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

// SpeechConfig describes the Volcengine speech credentials and voices.
type SpeechConfig struct {
	AppID          string
	AccessToken    string
	ConcurrentMode bool
	ASRLanguage    string
	VoiceHindi     string
	VoiceEnglish   string
	TTSVolume      float32
	Timeout        time.Duration
	Enabled        bool
}

// Model converts the section into the speech service configuration.
func (c SpeechConfig) Model() *speechmodel.SpeechConfig {
	return &speechmodel.SpeechConfig{
		AppID:          c.AppID,
		AccessToken:    c.AccessToken,
		ConcurrentMode: c.ConcurrentMode,
		ASRLanguage:    c.ASRLanguage,
		VoiceHindi:     c.VoiceHindi,
		VoiceEnglish:   c.VoiceEnglish,
		TTSVolume:      c.TTSVolume,
		Timeout:        c.Timeout,
	}
}

func loadSpeechConfig() (SpeechConfig, error) {
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	volume, err := parseOptionalFloat32Env("SPEECH_TTS_VOLUME")
	if err != nil {
		return SpeechConfig{}, err
	}
	ttsVolume := float32(1.0)
	if volume != nil {
		ttsVolume = *volume
	}

	concurrent, err := parseBoolEnv("SPEECH_ASR_CONCURRENT", false)
	if err != nil {
		return SpeechConfig{}, err
	}

	appID := strings.TrimSpace(os.Getenv("SPEECH_APP_ID"))
	accessToken := strings.TrimSpace(os.Getenv("SPEECH_ACCESS_TOKEN"))
	if accessToken == "" {
		accessToken = strings.TrimSpace(os.Getenv("SPEECH_API_KEY"))
	}

	return SpeechConfig{
		AppID:          appID,
		AccessToken:    accessToken,
		ConcurrentMode: concurrent,
		ASRLanguage:    getEnvOrDefault("SPEECH_ASR_LANGUAGE", "hi-IN"),
		VoiceHindi:     getEnvOrDefault("SPEECH_TTS_VOICE_HI", "hi_female_sweet_mars_bigtts"),
		VoiceEnglish:   getEnvOrDefault("SPEECH_TTS_VOICE_EN", "en_female_amy_jupiter_bigtts"),
		TTSVolume:      ttsVolume,
		Timeout:        time.Duration(timeoutSeconds) * time.Second,
		Enabled:        appID != "" && accessToken != "",
	}, nil
}

// StoreConfig selects the transcript store of the advisory backend.
type StoreConfig struct {
	Driver     string
	SQLitePath string
	RedisURL   string
}

func loadStoreConfig() (StoreConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("CHAT_STORE", "memory"))
	switch driver {
	case "memory", "sqlite", "redis":
	default:
		return StoreConfig{}, fmt.Errorf("invalid CHAT_STORE value %q: want memory, sqlite or redis", driver)
	}

	cfg := StoreConfig{
		Driver:     driver,
		SQLitePath: getEnvOrDefault("CHAT_SQLITE_PATH", "./data/shetkari.db"),
		RedisURL:   getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
	}
	return cfg, nil
}

// ClientConfig describes the terminal chat client.
type ClientConfig struct {
	BackendURL        string
	StateDir          string
	MockMode          bool
	MockDelay         time.Duration
	MockCatalog       string
	AutoSpeak         bool
	RecognitionLocale string
	RecordCommand     string
	PlayerCommand     string
}

func loadClientConfig() (ClientConfig, error) {
	mock, err := parseBoolEnv("SHETKARI_MOCK", false)
	if err != nil {
		return ClientConfig{}, err
	}

	autoSpeak, err := parseBoolEnv("SHETKARI_AUTO_SPEAK", false)
	if err != nil {
		return ClientConfig{}, err
	}

	delay, err := parseOptionalIntEnv("SHETKARI_MOCK_DELAY_MS")
	if err != nil {
		return ClientConfig{}, err
	}
	mockDelay := 1500 * time.Millisecond
	if delay != nil {
		if *delay < 0 {
			return ClientConfig{}, fmt.Errorf("invalid SHETKARI_MOCK_DELAY_MS value %d: must not be negative", *delay)
		}
		mockDelay = time.Duration(*delay) * time.Millisecond
	}

	stateDir := strings.TrimSpace(os.Getenv("SHETKARI_STATE_DIR"))
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ClientConfig{}, fmt.Errorf("resolve home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".shetkari-mitra")
	}

	return ClientConfig{
		BackendURL:        strings.TrimRight(getEnvOrDefault("SHETKARI_BACKEND_URL", "http://localhost:8080"), "/"),
		StateDir:          stateDir,
		MockMode:          mock,
		MockDelay:         mockDelay,
		MockCatalog:       strings.TrimSpace(os.Getenv("SHETKARI_MOCK_CATALOG")),
		AutoSpeak:         autoSpeak,
		RecognitionLocale: getEnvOrDefault("SHETKARI_RECOGNITION_LOCALE", "hi-IN"),
		RecordCommand:     getEnvOrDefault("SHETKARI_RECORD_CMD", "arecord -q -d 5 -f S16_LE -r 16000 -c 1 -t wav -"),
		PlayerCommand:     getEnvOrDefault("SHETKARI_PLAYER_CMD", "mpg123 -q -"),
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalFloat32Env(key string) (*float32, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	result := float32(val)
	return &result, nil
}
