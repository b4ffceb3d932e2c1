package engine

import (
	"fmt"
	"strings"

	"mdmserver/classification"
	"mdmserver/deduplication"
	"mdmserver/internal/domain/material"
	"mdmserver/matching"
)

// Config параметры движка классификации и поиска похожих
type Config struct {
	Classification classification.Config `json:"classification"`
	MatchWeights   matching.Weights      `json:"match_weights"`
	DedupLevels    deduplication.Levels  `json:"dedup_levels"`

	// DefaultThreshold порог, если вызывающий не задал свой
	DefaultThreshold float64 `json:"default_threshold"`
	// MaxResults число результатов поиска по умолчанию
	MaxResults int `json:"max_results"`
	// IndexCacheSize сколько индексов корпусов держать в памяти
	IndexCacheSize int `json:"index_cache_size"`
}

// DefaultConfig конфигурация по умолчанию
func DefaultConfig() Config {
	return Config{
		Classification:   classification.DefaultConfig(),
		MatchWeights:     matching.DefaultWeights(),
		DedupLevels:      deduplication.DefaultLevels(),
		DefaultThreshold: 0.5,
		MaxResults:       10,
		IndexCacheSize:   4,
	}
}

// Validate проверяет конфигурацию и возвращает все найденные проблемы разом
func (c Config) Validate() error {
	var problems []string

	if err := c.MatchWeights.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if err := material.ValidateThreshold(c.DefaultThreshold); err != nil {
		problems = append(problems, "default_threshold: "+err.Error())
	}
	if c.MaxResults <= 0 {
		problems = append(problems, "max_results must be positive")
	}
	if c.IndexCacheSize < 0 {
		problems = append(problems, "index_cache_size must not be negative")
	}
	if c.Classification.Fusion.MinConfidence < 0 || c.Classification.Fusion.MinConfidence > 1 {
		problems = append(problems, "fusion.min_confidence must be in [0, 1]")
	}
	if c.Classification.Fusion.RichnessShift < 0 || c.Classification.Fusion.RichnessShift > 0.5 {
		problems = append(problems, "fusion.richness_shift must be in [0, 0.5]")
	}
	if c.DedupLevels.Medium < 0 || c.DedupLevels.High > 1 || c.DedupLevels.Medium > c.DedupLevels.High {
		problems = append(problems, "dedup levels must satisfy 0 <= medium <= high <= 1")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid engine configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
