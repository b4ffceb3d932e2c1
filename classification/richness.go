package classification

import (
	"unicode/utf8"

	"mdmserver/normalization/algorithms"
)

// RichnessPolicy настраиваемая оценка "насыщенности" характеристик.
// Формула не закон, а политика: контракт только в том, что более
// насыщенные характеристики дают больший вес правил по характеристикам.
type RichnessPolicy struct {
	// PerFamily вклад каждого различного семейства характеристик
	PerFamily float64 `json:"per_family"`
	// PerExtraToken вклад каждой характеристики сверх первой в семействе
	PerExtraToken float64 `json:"per_extra_token"`
	// LongSpecBonus бонус за длинную запись характеристик
	LongSpecBonus float64 `json:"long_spec_bonus"`
	// LongSpecRunes с какой длины (в символах) запись считается длинной
	LongSpecRunes int `json:"long_spec_runes"`
}

// DefaultRichnessPolicy политика по умолчанию
func DefaultRichnessPolicy() RichnessPolicy {
	return RichnessPolicy{
		PerFamily:     0.25,
		PerExtraToken: 0.1,
		LongSpecBonus: 0.1,
		LongSpecRunes: 20,
	}
}

// Richness возвращает насыщенность r ∈ [0, 1]; без характеристик r = 0
func (p RichnessPolicy) Richness(n algorithms.NormalizedText) float64 {
	if len(n.SpecTokens) == 0 {
		return 0
	}

	families := len(n.SpecFamilies())
	extra := len(n.SpecTokens) - families

	specRunes := 0
	for _, t := range n.SpecTokens {
		specRunes += utf8.RuneCountInString(t)
	}

	r := p.PerFamily*float64(families) + p.PerExtraToken*float64(extra)
	if p.LongSpecRunes > 0 && specRunes >= p.LongSpecRunes {
		r += p.LongSpecBonus
	}
	return algorithms.Clamp01(r)
}

// RuleWeights веса составляющих оценки правил
type RuleWeights struct {
	Keyword      float64
	Spec         float64
	Manufacturer float64
}

// WeightsFor распределяет веса правил по насыщенности r:
// вес характеристик растет от 0.3 до 0.7, вес ключевых слов убывает
func WeightsFor(r float64) RuleWeights {
	r = algorithms.Clamp01(r)
	spec := 0.3 + 0.4*r
	manufacturer := 0.1
	return RuleWeights{
		Keyword:      1 - spec - manufacturer,
		Spec:         spec,
		Manufacturer: manufacturer,
	}
}
