package classification

import (
	"fmt"
	"sort"

	"mdmserver/normalization/algorithms"
)

// Источник итоговой оценки категории
const (
	SourceRule   = "rule"
	SourceVector = "vector"
	SourceFused  = "fused"
)

// FusionPolicy настройки объединения оценок
type FusionPolicy struct {
	// RichnessShift насколько вес правил растет при r = 1 (от базовых 0.5)
	RichnessShift float64 `json:"richness_shift"`
	// MinConfidence категории ниже порога не возвращаются
	MinConfidence float64 `json:"min_confidence"`
}

// DefaultFusionPolicy политика по умолчанию
func DefaultFusionPolicy() FusionPolicy {
	return FusionPolicy{RichnessShift: 0.2, MinConfidence: 0.05}
}

// FusionWeights веса правил и векторов для насыщенности r, в сумме 1
func (p FusionPolicy) FusionWeights(r float64) (rule, vector float64) {
	rule = algorithms.Clamp01(0.5 + p.RichnessShift*algorithms.Clamp01(r))
	return rule, 1 - rule
}

// CategoryScore итоговая рекомендация категории
type CategoryScore struct {
	CategoryID       string   `json:"category_id"`
	CategoryName     string   `json:"category_name"`
	Level            int      `json:"level"`
	Path             []string `json:"path,omitempty"`
	Confidence       float64  `json:"confidence"`
	RuleConfidence   float64  `json:"rule_confidence"`
	VectorSimilarity float64  `json:"vector_similarity"`
	Source           string   `json:"source"`
	Reasons          []string `json:"reasons,omitempty"`
}

// Fuse объединяет оценки правил и векторов. Категория из одного источника
// сохраняет свою оценку без штрафа, из обоих - взвешенная сумма.
func Fuse(index *CategoryIndex, rules []RuleScore, vectors []VectorScore, richness float64, policy FusionPolicy) []CategoryScore {
	ruleW, vectorW := policy.FusionWeights(richness)

	byID := make(map[string]*CategoryScore)
	get := func(id string) *CategoryScore {
		if s, ok := byID[id]; ok {
			return s
		}
		s := &CategoryScore{CategoryID: id}
		if cat, ok := index.Get(id); ok {
			s.CategoryName = cat.Name
			s.Level = cat.Level
			s.Path = index.Path(id)
		}
		byID[id] = s
		return s
	}

	for _, r := range rules {
		s := get(r.CategoryID)
		s.RuleConfidence = r.Confidence
		s.Source = SourceRule
		if len(r.MatchedKeywords) > 0 {
			s.Reasons = append(s.Reasons, fmt.Sprintf("keywords: %v", r.MatchedKeywords))
		}
		if r.SpecHits > 0 {
			s.Reasons = append(s.Reasons, fmt.Sprintf("spec patterns matched: %d", r.SpecHits))
		}
		if r.ManufacturerMatch {
			s.Reasons = append(s.Reasons, "manufacturer whitelisted")
		}
	}
	for _, v := range vectors {
		s := get(v.CategoryID)
		s.VectorSimilarity = v.Similarity
		if s.Source == SourceRule {
			s.Source = SourceFused
		} else {
			s.Source = SourceVector
		}
		s.Reasons = append(s.Reasons, fmt.Sprintf("vector similarity: %.3f", v.Similarity))
	}

	results := make([]CategoryScore, 0, len(byID))
	for _, s := range byID {
		switch s.Source {
		case SourceFused:
			s.Confidence = ruleW*s.RuleConfidence + vectorW*s.VectorSimilarity
		case SourceRule:
			s.Confidence = s.RuleConfidence
		case SourceVector:
			s.Confidence = s.VectorSimilarity
		}
		s.Confidence = algorithms.Clamp01(s.Confidence)
		if s.Confidence < policy.MinConfidence {
			continue
		}
		results = append(results, *s)
	}

	sort.Slice(results, func(i, j int) bool {
		return rankBefore(results[i].Confidence, results[j].Confidence,
			results[i].Level, results[j].Level,
			results[i].CategoryID, results[j].CategoryID)
	})
	return results
}
