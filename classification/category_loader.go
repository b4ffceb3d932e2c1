package classification

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryConfig документ справочника категорий (YAML или JSON)
type CategoryConfig struct {
	Version    string               `json:"version,omitempty" yaml:"version,omitempty"`
	Categories []CategoryDefinition `json:"categories" yaml:"categories"`
}

// ParseCategoryConfig разбирает документ справочника.
// JSON является подмножеством YAML, поэтому разбирается тем же декодером.
// Неизвестные поля считаются ошибкой, чтобы опечатки не терялись молча.
func ParseCategoryConfig(data []byte) (*CategoryConfig, error) {
	var cfg CategoryConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse category config: %w", err)
	}
	return &cfg, nil
}

// LoadCategoryConfig читает справочник из файла
func LoadCategoryConfig(path string) (*CategoryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read category config %s: %w", path, err)
	}
	return ParseCategoryConfig(data)
}

// LoadCategoryIndex читает и проверяет справочник.
// Пустой путь означает встроенный справочник.
func LoadCategoryIndex(path string) (*CategoryIndex, error) {
	var (
		cfg *CategoryConfig
		err error
	)
	if path == "" {
		cfg, err = DefaultCategoryConfig()
	} else {
		cfg, err = LoadCategoryConfig(path)
	}
	if err != nil {
		return nil, err
	}
	return NewCategoryIndex(cfg.Categories)
}

// MarshalDocument сериализует справочник обратно в YAML
func (c *CategoryConfig) MarshalDocument() ([]byte, error) {
	return yaml.Marshal(c)
}
