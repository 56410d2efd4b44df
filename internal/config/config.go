package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zhouzirui/shree/backend/internal/logging"
	"github.com/zhouzirui/shree/backend/internal/model/speech"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Assistant AssistantConfig
	Speech    SpeechConfig
	Log       logging.Config
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	assistant, err := loadAssistantConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	log, err := loadLogConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Assistant: assistant, Speech: speech, Log: log}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr       string
	CORSOrigin string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origin := getEnvOrDefault("CORS_ORIGIN", "*")

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, CORSOrigin: origin}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, CORSOrigin: origin}, nil
}

// AssistantConfig 描述会话与回复生成配置。
type AssistantConfig struct {
	PersonaID string
	// Seed 非空时第 N 个会话使用 Seed+N，回复可复现。
	Seed *uint64
}

func loadAssistantConfig() (AssistantConfig, error) {
	seed, err := parseOptionalUint64Env("ASSISTANT_RANDOM_SEED")
	if err != nil {
		return AssistantConfig{}, err
	}

	return AssistantConfig{
		PersonaID: getEnvOrDefault("ASSISTANT_PERSONA", "shree"),
		Seed:      seed,
	}, nil
}

// SpeechConfig 描述语音播放相关配置
type SpeechConfig struct {
	Playback      speech.SpeechConfig
	Command       string
	CommandVoices []speech.Voice
}

func loadSpeechConfig() (SpeechConfig, error) {
	defaults := speech.DefaultSpeechConfig()

	autoVoice, err := parseBoolEnv("SPEECH_AUTO_VOICE", defaults.AutoVoice)
	if err != nil {
		return SpeechConfig{}, err
	}

	pitch, err := parseOptionalFloatEnv("SPEECH_PITCH")
	if err != nil {
		return SpeechConfig{}, err
	}
	if pitch == nil {
		pitch = &defaults.Pitch
	}

	rate, err := parseOptionalFloatEnv("SPEECH_RATE")
	if err != nil {
		return SpeechConfig{}, err
	}
	if rate == nil {
		rate = &defaults.Rate
	}
	if *pitch <= 0 || *rate <= 0 {
		return SpeechConfig{}, fmt.Errorf("SPEECH_PITCH and SPEECH_RATE must be positive, got %v and %v", *pitch, *rate)
	}

	locales := parseListEnv("SPEECH_LOCALE_PREFERENCES")
	if len(locales) == 0 {
		locales = defaults.LocalePriority
	}

	voices, err := parseVoicesEnv("SPEECH_COMMAND_VOICES", "mr-IN=mr,hi-IN=hi,en-IN=en-in")
	if err != nil {
		return SpeechConfig{}, err
	}

	return SpeechConfig{
		Playback: speech.SpeechConfig{
			AutoVoice:       autoVoice,
			Pitch:           *pitch,
			Rate:            *rate,
			DefaultLanguage: getEnvOrDefault("SPEECH_DEFAULT_LANGUAGE", defaults.DefaultLanguage),
			LocalePriority:  locales,
		},
		Command:       getEnvOrDefault("SPEECH_COMMAND", "espeak-ng"),
		CommandVoices: voices,
	}, nil
}

func loadLogConfig() (logging.Config, error) {
	level, err := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return logging.Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	pretty, err := parseBoolEnv("LOG_PRETTY", false)
	if err != nil {
		return logging.Config{}, err
	}

	return logging.Config{Level: level, Pretty: pretty, App: "shree"}, nil
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
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalUint64Env(key string) (*uint64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

// parseListEnv 解析逗号分隔的列表，忽略空项。
func parseListEnv(key string) []string {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}

	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// parseVoicesEnv 解析 "locale=identifier" 列表。
func parseVoicesEnv(key, defaultValue string) ([]speech.Voice, error) {
	raw := getEnvOrDefault(key, defaultValue)

	var voices []speech.Voice
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		locale, id, ok := strings.Cut(part, "=")
		locale, id = strings.TrimSpace(locale), strings.TrimSpace(id)
		if !ok || locale == "" || id == "" {
			return nil, fmt.Errorf("invalid %s entry %q: want locale=identifier", key, part)
		}
		voices = append(voices, speech.Voice{LocaleTag: locale, Identifier: id})
	}
	return voices, nil
}
