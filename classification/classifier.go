package classification

import (
	"mdmserver/internal/domain/material"
	"mdmserver/normalization/algorithms"
)

// Config настройки гибридного классификатора
type Config struct {
	Rule        RulePolicy   `json:"rule"`
	Fusion      FusionPolicy `json:"fusion"`
	VectorFloor float64      `json:"vector_floor"`
}

// DefaultConfig настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		Rule:   DefaultRulePolicy(),
		Fusion: DefaultFusionPolicy(),
	}
}

// Outcome результат классификации одной записи
type Outcome struct {
	Categories []CategoryScore           `json:"categories"`
	Richness   float64                   `json:"spec_richness"`
	Normalized algorithms.NormalizedText `json:"normalized"`
	Invalid    bool                      `json:"invalid,omitempty"`
	Reason     string                    `json:"reason,omitempty"`
}

// Classifier гибридный классификатор: правила + векторы + объединение оценок.
// Неизменяем после создания, безопасен для параллельного использования.
type Classifier struct {
	index      *CategoryIndex
	normalizer *algorithms.TextNormalizer
	rule       *RuleClassifier
	vector     *VectorClassifier
	cfg        Config
}

// NewClassifier собирает классификатор по справочнику
func NewClassifier(index *CategoryIndex, normalizer *algorithms.TextNormalizer, cfg Config) *Classifier {
	return &Classifier{
		index:      index,
		normalizer: normalizer,
		rule:       NewRuleClassifier(index, cfg.Rule),
		vector:     NewVectorClassifier(index, normalizer, cfg.VectorFloor),
		cfg:        cfg,
	}
}

// Index справочник классификатора
func (c *Classifier) Index() *CategoryIndex {
	return c.index
}

// Vocabulary словарь векторов категорий
func (c *Classifier) Vocabulary() *algorithms.Vocabulary {
	return c.vector.Vocabulary()
}

// Classify рекомендует категории для записи.
// Пустое наименование дает невалидный результат без ошибки.
func (c *Classifier) Classify(rec material.Record) Outcome {
	if err := rec.ValidateQuery(); err != nil {
		return Outcome{Invalid: true, Reason: err.Error()}
	}

	n := c.normalizer.Normalize(rec.Text())
	if n.IsEmpty() {
		return Outcome{Normalized: n, Invalid: true, Reason: "no tokens after normalization"}
	}

	richness := c.cfg.Rule.Richness.Richness(n)
	rules := c.rule.Classify(n, rec.Manufacturer)
	vectors := c.vector.Classify(c.vector.Vectorize(n))

	return Outcome{
		Categories: Fuse(c.index, rules, vectors, richness, c.cfg.Fusion),
		Richness:   richness,
		Normalized: n,
	}
}

// ClassifyRules только оценка по правилам
func (c *Classifier) ClassifyRules(rec material.Record) []RuleScore {
	return c.rule.Classify(c.normalizer.Normalize(rec.Text()), rec.Manufacturer)
}

// ClassifyVectors только векторная оценка
func (c *Classifier) ClassifyVectors(rec material.Record) []VectorScore {
	return c.vector.Classify(c.vector.Vectorize(c.normalizer.Normalize(rec.Text())))
}
