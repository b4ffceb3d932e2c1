package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	var errors []string

	// Валидация порта
	if c.Port == "" {
		errors = append(errors, "port is required")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid port: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("port must be between 1 and 65535, got %d", port))
		}
	}

	if c.DatabasePath == "" {
		errors = append(errors, "database path is required")
	}

	// Валидация connection pooling
	if c.MaxOpenConns < 1 {
		errors = append(errors, "max open connections must be at least 1")
	}
	if c.MaxIdleConns < 1 {
		errors = append(errors, "max idle connections must be at least 1")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		errors = append(errors, "max idle connections cannot be greater than max open connections")
	}
	if c.ConnMaxLifetime < time.Second {
		errors = append(errors, "connection max lifetime must be at least 1 second")
	}

	// Валидация уровня логирования
	validLogLevels := []string{"DEBUG", "INFO", "WARN", "ERROR"}
	if c.LogLevel != "" {
		valid := false
		logLevelUpper := strings.ToUpper(c.LogLevel)
		for _, level := range validLogLevels {
			if logLevelUpper == level {
				valid = true
				break
			}
		}
		if !valid {
			errors = append(errors, fmt.Sprintf("invalid log level: %s (valid: %s)",
				c.LogLevel, strings.Join(validLogLevels, ", ")))
		}
	}

	// Валидация параметров поиска
	if c.MatchDefaultThreshold < 0 || c.MatchDefaultThreshold > 1 {
		errors = append(errors, fmt.Sprintf("match default threshold must be in [0, 1], got %v", c.MatchDefaultThreshold))
	}
	if c.MatchMaxResults < 1 {
		errors = append(errors, "match max results must be at least 1")
	}
	if c.MatchRuleWeight < 0 || c.MatchRuleWeight > 1 {
		errors = append(errors, fmt.Sprintf("match rule weight must be in [0, 1], got %v", c.MatchRuleWeight))
	}

	// Валидация параметров классификации
	if c.ClassifyMinConfidence < 0 || c.ClassifyMinConfidence > 1 {
		errors = append(errors, "classify min confidence must be between 0 and 1")
	}
	if c.ClassifyRichnessShift < 0 || c.ClassifyRichnessShift > 0.5 {
		errors = append(errors, "classify richness shift must be between 0 and 0.5")
	}

	if c.BatchWorkers < 1 {
		errors = append(errors, "batch workers must be at least 1")
	}

	// Валидация ограничения частоты
	if c.RateLimitRPS <= 0 {
		errors = append(errors, "rate limit rps must be positive")
	}
	if c.RateLimitBurst < 1 {
		errors = append(errors, "rate limit burst must be at least 1")
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// GetDefaults возвращает конфигурацию со значениями по умолчанию
func GetDefaults() *Config {
	return &Config{
		Port:                  "9999",
		DatabasePath:          "master_data.db",
		MaxOpenConns:          25,
		MaxIdleConns:          5,
		ConnMaxLifetime:       5 * time.Minute,
		LogLevel:              "INFO",
		MatchDefaultThreshold: 0.5,
		MatchMaxResults:       10,
		MatchRuleWeight:       0.5,
		ClassifyMinConfidence: 0.05,
		ClassifyRichnessShift: 0.2,
		BatchWorkers:          4,
		RateLimitRPS:          50,
		RateLimitBurst:        100,
	}
}
