package classification

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"mdmserver/normalization/algorithms"
)

// CategoryDefinition узел справочника категорий МТР.
// Level вычисляется по дереву (корень = 1), значение из документа игнорируется.
type CategoryDefinition struct {
	ID            string   `json:"id" yaml:"id"`
	Name          string   `json:"name" yaml:"name"`
	ParentID      string   `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Level         int      `json:"level" yaml:"level,omitempty"`
	Keywords      []string `json:"keywords" yaml:"keywords"`
	SpecPatterns  []string `json:"spec_patterns,omitempty" yaml:"spec_patterns,omitempty"`
	Weight        float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	Manufacturers []string `json:"manufacturers,omitempty" yaml:"manufacturers,omitempty"`
}

// ConfigError ошибка справочника категорий
type ConfigError struct {
	CategoryID string
	Field      string
	Reason     string
	Err        error
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("category %q: %s: %s", e.CategoryID, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ErrEmptyCategories справочник без единой категории
var ErrEmptyCategories = errors.New("category configuration is empty")

const (
	defaultCategoryWeight = 1.0
	maxCategoryWeight     = 2.0
)

// Category скомпилированная категория
type Category struct {
	CategoryDefinition

	keywords      []string
	patterns      []*regexp.Regexp
	manufacturers []string
	ancestors     []int
}

// CategoryIndex проверенный и скомпилированный справочник.
// Категории упорядочены по ID, после создания не изменяется.
type CategoryIndex struct {
	categories []*Category
	byID       map[string]int
}

// NewCategoryIndex проверяет справочник и компилирует шаблоны.
// Все найденные ошибки возвращаются вместе, некорректные записи не пропускаются молча.
func NewCategoryIndex(defs []CategoryDefinition) (*CategoryIndex, error) {
	if len(defs) == 0 {
		return nil, ErrEmptyCategories
	}

	var errs []error
	byID := make(map[string]int, len(defs))
	sorted := make([]CategoryDefinition, 0, len(defs))

	for i, def := range defs {
		def.ID = strings.TrimSpace(def.ID)
		def.ParentID = strings.TrimSpace(def.ParentID)
		if def.ID == "" {
			errs = append(errs, &ConfigError{CategoryID: fmt.Sprintf("#%d", i), Field: "id", Reason: "empty id"})
			continue
		}
		if _, dup := byID[def.ID]; dup {
			errs = append(errs, &ConfigError{CategoryID: def.ID, Field: "id", Reason: "duplicate id"})
			continue
		}
		byID[def.ID] = -1
		sorted = append(sorted, def)
	}

	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i, def := range sorted {
		byID[def.ID] = i
	}

	idx := &CategoryIndex{
		categories: make([]*Category, len(sorted)),
		byID:       byID,
	}

	for i, def := range sorted {
		cat, catErrs := compileCategory(def)
		errs = append(errs, catErrs...)
		idx.categories[i] = cat
	}

	errs = append(errs, idx.linkParents()...)

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid category configuration: %w", errors.Join(errs...))
	}
	return idx, nil
}

func compileCategory(def CategoryDefinition) (*Category, []error) {
	var errs []error

	if strings.TrimSpace(def.Name) == "" {
		errs = append(errs, &ConfigError{CategoryID: def.ID, Field: "name", Reason: "empty name"})
	}

	switch {
	case def.Weight == 0:
		def.Weight = defaultCategoryWeight
	case def.Weight < 0 || def.Weight > maxCategoryWeight:
		errs = append(errs, &ConfigError{
			CategoryID: def.ID,
			Field:      "weight",
			Reason:     fmt.Sprintf("weight %v out of range (0, %v]", def.Weight, maxCategoryWeight),
		})
	}

	cat := &Category{CategoryDefinition: def}
	cat.keywords = cleanList(def.Keywords)
	cat.manufacturers = cleanList(def.Manufacturers)

	for _, expr := range def.SpecPatterns {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			errs = append(errs, &ConfigError{CategoryID: def.ID, Field: "spec_patterns", Reason: "unparseable pattern " + expr, Err: err})
			continue
		}
		cat.patterns = append(cat.patterns, re)
	}

	return cat, errs
}

// linkParents проверяет ссылки на родителей, ищет циклы и вычисляет уровни
func (idx *CategoryIndex) linkParents() []error {
	var errs []error

	for _, cat := range idx.categories {
		if cat.ParentID == "" {
			continue
		}
		if cat.ParentID == cat.ID {
			errs = append(errs, &ConfigError{CategoryID: cat.ID, Field: "parent_id", Reason: "category is its own parent"})
			continue
		}
		if _, ok := idx.byID[cat.ParentID]; !ok {
			errs = append(errs, &ConfigError{CategoryID: cat.ID, Field: "parent_id", Reason: "unknown parent " + cat.ParentID})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for i, cat := range idx.categories {
		var ancestors []int
		visited := map[int]bool{i: true}
		cycle := false
		for parent := cat.ParentID; parent != ""; {
			p := idx.byID[parent]
			if visited[p] {
				cycle = true
				break
			}
			visited[p] = true
			ancestors = append(ancestors, p)
			parent = idx.categories[p].ParentID
		}
		if cycle {
			errs = append(errs, &ConfigError{CategoryID: cat.ID, Field: "parent_id", Reason: "cyclic parent reference"})
			continue
		}
		cat.ancestors = ancestors
		cat.Level = len(ancestors) + 1
	}
	return errs
}

func cleanList(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		c := algorithms.CleanText(v)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Len количество категорий
func (idx *CategoryIndex) Len() int {
	return len(idx.categories)
}

// At категория по порядковому номеру
func (idx *CategoryIndex) At(i int) *Category {
	return idx.categories[i]
}

// Get категория по ID
func (idx *CategoryIndex) Get(id string) (*Category, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return idx.categories[i], true
}

// Definitions копия определений с вычисленными уровнями
func (idx *CategoryIndex) Definitions() []CategoryDefinition {
	out := make([]CategoryDefinition, len(idx.categories))
	for i, cat := range idx.categories {
		def := cat.CategoryDefinition
		def.Keywords = append([]string(nil), def.Keywords...)
		def.SpecPatterns = append([]string(nil), def.SpecPatterns...)
		def.Manufacturers = append([]string(nil), def.Manufacturers...)
		out[i] = def
	}
	return out
}

// Lexicon ключевые слова и названия всех категорий для словаря сегментатора
func (idx *CategoryIndex) Lexicon() []string {
	var words []string
	for _, cat := range idx.categories {
		words = append(words, cat.keywords...)
		words = append(words, algorithms.CleanText(cat.Name))
	}
	return words
}

// Path названия категорий от корня до указанной
func (idx *CategoryIndex) Path(id string) []string {
	cat, ok := idx.Get(id)
	if !ok {
		return nil
	}
	path := make([]string, 0, len(cat.ancestors)+1)
	for i := len(cat.ancestors) - 1; i >= 0; i-- {
		path = append(path, idx.categories[cat.ancestors[i]].Name)
	}
	return append(path, cat.Name)
}
