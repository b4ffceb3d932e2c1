package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"mdmserver/engine"
	"mdmserver/matching"
)

// Config конфигурация сервера
type Config struct {
	// Сервер
	Port string `json:"port"`

	// База справочника МТР
	DatabasePath string `json:"database_path"`

	// Справочник категорий, пустой путь - встроенный справочник
	CategoryConfigPath string `json:"category_config_path"`

	// Connection pooling
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`

	// Логирование
	LogLevel string `json:"log_level"`

	// Поиск похожих
	MatchDefaultThreshold float64 `json:"match_default_threshold"`
	MatchMaxResults       int     `json:"match_max_results"`
	MatchRuleWeight       float64 `json:"match_rule_weight"`

	// Классификация
	ClassifyMinConfidence   float64 `json:"classify_min_confidence"`
	ClassifyRichnessShift   float64 `json:"classify_richness_shift"`
	ClassifyInheritKeywords bool    `json:"classify_inherit_keywords"`

	// Пакетная обработка
	BatchWorkers int `json:"batch_workers"`

	// Ограничение частоты запросов
	RateLimitRPS   float64 `json:"rate_limit_rps"`
	RateLimitBurst int     `json:"rate_limit_burst"`
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	defaults := GetDefaults()

	config := &Config{
		// Сервер
		Port: getEnv("SERVER_PORT", defaults.Port),

		// Базы данных
		DatabasePath:       getEnv("DATABASE_PATH", defaults.DatabasePath),
		CategoryConfigPath: os.Getenv("CATEGORY_CONFIG_PATH"),

		// Connection pooling
		MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", defaults.MaxOpenConns),
		MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", defaults.MaxIdleConns),
		ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", defaults.ConnMaxLifetime),

		// Логирование
		LogLevel: getEnv("LOG_LEVEL", defaults.LogLevel),

		// Поиск похожих
		MatchDefaultThreshold: getEnvFloat("MATCH_DEFAULT_THRESHOLD", defaults.MatchDefaultThreshold),
		MatchMaxResults:       getEnvInt("MATCH_MAX_RESULTS", defaults.MatchMaxResults),
		MatchRuleWeight:       getEnvFloat("MATCH_RULE_WEIGHT", defaults.MatchRuleWeight),

		// Классификация
		ClassifyMinConfidence:   getEnvFloat("CLASSIFY_MIN_CONFIDENCE", defaults.ClassifyMinConfidence),
		ClassifyRichnessShift:   getEnvFloat("CLASSIFY_RICHNESS_SHIFT", defaults.ClassifyRichnessShift),
		ClassifyInheritKeywords: getEnv("CLASSIFY_INHERIT_KEYWORDS", "false") == "true",

		BatchWorkers: getEnvInt("BATCH_WORKERS", defaults.BatchWorkers),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", defaults.RateLimitRPS),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", defaults.RateLimitBurst),
	}

	// Валидация
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// EngineConfig настройки движка, производные от конфигурации сервера
func (c *Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.DefaultThreshold = c.MatchDefaultThreshold
	cfg.MaxResults = c.MatchMaxResults
	cfg.MatchWeights = matching.WeightsFromRule(c.MatchRuleWeight)
	cfg.Classification.Fusion.MinConfidence = c.ClassifyMinConfidence
	cfg.Classification.Fusion.RichnessShift = c.ClassifyRichnessShift
	cfg.Classification.Rule.InheritKeywords = c.ClassifyInheritKeywords
	return cfg
}

// getEnv получает переменную окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает переменную окружения как int или возвращает значение по умолчанию
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat получает переменную окружения как float64 или возвращает значение по умолчанию
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration получает переменную окружения как Duration или возвращает значение по умолчанию
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
