package classification

import (
	_ "embed"
)

//go:embed categories.yaml
var defaultCategoriesYAML []byte

// DefaultCategoryConfig встроенный справочник категорий МТР
func DefaultCategoryConfig() (*CategoryConfig, error) {
	return ParseCategoryConfig(defaultCategoriesYAML)
}
