package material

import (
	"fmt"
	"math"
	"strings"
)

// Record описание позиции МТР (материально-технических ресурсов)
type Record struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Spec         string `json:"spec"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Unit         string `json:"unit,omitempty"`
	Category     string `json:"category,omitempty"`
}

// Поля записи, участвующие в отчетах о дубликатах
const (
	FieldName         = "name"
	FieldSpec         = "spec"
	FieldManufacturer = "manufacturer"
	FieldUnit         = "unit"
	FieldCategory     = "category"
)

// Fields порядок полей в отчетах
var Fields = []string{FieldName, FieldSpec, FieldManufacturer, FieldUnit, FieldCategory}

// Field значение поля по имени
func (r Record) Field(name string) string {
	switch name {
	case FieldName:
		return r.Name
	case FieldSpec:
		return r.Spec
	case FieldManufacturer:
		return r.Manufacturer
	case FieldUnit:
		return r.Unit
	case FieldCategory:
		return r.Category
	}
	return ""
}

// EmptyFields количество незаполненных полей
func (r Record) EmptyFields() int {
	empty := 0
	for _, f := range Fields {
		if strings.TrimSpace(r.Field(f)) == "" {
			empty++
		}
	}
	return empty
}

// Text текст, по которому ищутся похожие записи: наименование и характеристики
func (r Record) Text() string {
	return strings.TrimSpace(r.Name + " " + r.Spec)
}

// ValidateQuery проверяет запрос на классификацию или поиск.
// Пустое наименование не ошибка вызова, а невалидный ввод.
func (r Record) ValidateQuery() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ValidateCorpus проверяет набор записей корпуса: непустые и уникальные ID
func ValidateCorpus(records []Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.ID) == "" {
			return fmt.Errorf("record #%d: %w", i, ErrEmptyRecordID)
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("record %q: %w", r.ID, ErrDuplicateRecordID)
		}
		seen[r.ID] = struct{}{}
	}
	return nil
}

// ValidateThreshold проверяет порог до начала вычислений
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v", ErrThresholdOutOfRange, threshold)
	}
	return nil
}

// MatchType способ, которым найдено совпадение
type MatchType string

const (
	MatchExact  MatchType = "exact"
	MatchRule   MatchType = "rule"
	MatchVector MatchType = "vector"
	MatchFused  MatchType = "fused"
)

// MatchExplanation разложение оценки по составляющим
type MatchExplanation struct {
	TokenOverlap   float64  `json:"token_overlap"`
	SpecAgreement  float64  `json:"spec_agreement"`
	RuleScore      float64  `json:"rule_score"`
	VectorScore    float64  `json:"vector_score"`
	SharedTokens   []string `json:"shared_tokens,omitempty"`
	ConflictFamily []string `json:"conflict_families,omitempty"`
}

// MatchResult найденная похожая запись
type MatchResult struct {
	CandidateID string            `json:"candidate_id"`
	Score       float64           `json:"score"`
	MatchType   MatchType         `json:"match_type"`
	Explanation *MatchExplanation `json:"explanation,omitempty"`
}

// ConfidenceLevel уровень уверенности в том, что кластер - одна позиция
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceSingle ConfidenceLevel = "single"
)

// MergeAction рекомендуемое действие над кластером
type MergeAction string

const (
	ActionAutoMerge    MergeAction = "auto_merge"
	ActionManualReview MergeAction = "manual_review"
	ActionSeparate     MergeAction = "separate"
	ActionKeep         MergeAction = "keep"
)

// DedupCluster группа записей, считающихся одной позицией
type DedupCluster struct {
	ClusterID         string              `json:"cluster_id"`
	MemberIDs         []string            `json:"member_ids"`
	RepresentativeID  string              `json:"representative_id"`
	ConflictingFields map[string][]string `json:"conflicting_fields"`
	AverageSimilarity float64             `json:"average_similarity"`
	ConfidenceLevel   ConfidenceLevel     `json:"confidence_level"`
	RecommendedAction MergeAction         `json:"recommended_action"`
}

// IsSingleton кластер из одной записи
func (c DedupCluster) IsSingleton() bool {
	return len(c.MemberIDs) == 1
}
