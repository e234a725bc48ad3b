package config

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 应用配置
type Config struct {
	Port          string        `yaml:"port"`
	DBPath        string        `yaml:"db_path"`
	DatasetSource string        `yaml:"dataset_source"` // file path or URL of the event dataset
	WikiBaseURL   string        `yaml:"wiki_base_url"`
	JWTSecret     string        `yaml:"jwt_secret"`
	SummaryTTL    time.Duration `yaml:"summary_ttl"`
	PopupTTL      time.Duration `yaml:"popup_ttl"`
	PrewarmCount  int           `yaml:"prewarm_count"` // linked features to prewarm after load, 0 disables
	Debug         bool          `yaml:"debug"`
}

// Load 加载配置：先读 YAML 文件（CONFIG_PATH，可选），环境变量覆盖
func Load() *Config {
	cfg := &Config{
		Port:          ":8080",
		DBPath:        "./data/chronomap.db",
		DatasetSource: "./data/events.json",
		WikiBaseURL:   "https://en.wikipedia.org",
		JWTSecret:     "your-secret-key-change-in-production",
		SummaryTTL:    24 * time.Hour,
		PopupTTL:      10 * time.Minute,
		PrewarmCount:  20,
	}

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if raw, err := os.ReadFile(path); err == nil {
			// 配置文件损坏时保留默认值
			_ = yaml.Unmarshal(raw, cfg)
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if !strings.HasPrefix(v, ":") {
			v = ":" + v
		}
		cfg.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DATASET_SOURCE"); v != "" {
		cfg.DatasetSource = v
	}
	if v := os.Getenv("WIKI_BASE_URL"); v != "" {
		cfg.WikiBaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWTSecret = v
	}
	if v := os.Getenv("SUMMARY_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SummaryTTL = d
		}
	}
	if os.Getenv("DEBUG") == "1" {
		cfg.Debug = true
	}

	return cfg
}
