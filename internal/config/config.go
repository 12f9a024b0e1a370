package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	DBPath        string          `json:"db_path"`
	Port          int             `json:"port"`
	BaseURL       string          `json:"base_url"`
	Log           LogConfig       `json:"log"`
	CORSAllowlist []string        `json:"cors_allowlist"`
	FileStore     FileStoreConfig `json:"file_store"`
	Extractor     ExtractorConfig `json:"extractor"`
	Video         VideoConfig     `json:"video"`
	AI            AIConfig        `json:"ai"`
	Jobs          JobsConfig      `json:"jobs"`
}

type LogConfig struct {
	Level   string `json:"level"`
	Console bool   `json:"console"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type ExtractorConfig struct {
	TimeoutSeconds  int `json:"timeout_seconds"`
	CacheSize       int `json:"cache_size"`
	CacheTTLMinutes int `json:"cache_ttl_minutes"`
}

type VideoConfig struct {
	EnableProbe bool `json:"enable_probe"`
}

type AIConfig struct {
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
	Data     interface{} `json:"data"`
}

type JobsConfig struct {
	// cron spec for the referential-integrity sweep; empty disables it
	IntegritySweepSpec string `json:"integrity_sweep_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db_path is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
		cfg.FileStore.Data = map[string]interface{}{"dir": "uploads"}
	}
	return &cfg, nil
}
