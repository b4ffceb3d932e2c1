package engine

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"mdmserver/classification"
	"mdmserver/deduplication"
	"mdmserver/internal/domain/material"
	"mdmserver/matching"
	"mdmserver/normalization/algorithms"
)

// Engine неизменяемое значение: справочник категорий, словарь и настройки.
// Все методы безопасны для параллельного вызова. Смена справочника
// создает новый Engine, старый продолжает обслуживать начатые запросы.
type Engine struct {
	cfg        Config
	categories *classification.CategoryIndex
	normalizer *algorithms.TextNormalizer
	classifier *classification.Classifier
	dedup      *deduplication.Engine
	indexes    *indexCache
	logger     *slog.Logger
}

// Option дополнительная настройка Engine
type Option func(*Engine)

// WithLogger задает логгер событий построения индексов
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New строит движок по определениям категорий. Ошибки справочника
// возвращаются все сразу как *classification.ConfigError.
func New(categories []classification.CategoryDefinition, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	index, err := classification.NewCategoryIndex(categories)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		categories: index,
		indexes:    newIndexCache(cfg.IndexCacheSize),
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}

	start := time.Now()
	e.normalizer = algorithms.NewTextNormalizer(index.Lexicon()...)
	e.classifier = classification.NewClassifier(index, e.normalizer, cfg.Classification)
	e.dedup = deduplication.NewEngine(e.normalizer, cfg.MatchWeights, cfg.DedupLevels)

	e.logger.Info("engine built",
		"categories", index.Len(),
		"vocabulary", e.classifier.Vocabulary().Size(),
		"duration", time.Since(start),
	)
	return e, nil
}

// WithCategories новый движок с другим справочником и теми же настройками.
// Текущий движок не изменяется.
func (e *Engine) WithCategories(categories []classification.CategoryDefinition) (*Engine, error) {
	return New(categories, e.cfg, WithLogger(e.logger))
}

// Config настройки движка
func (e *Engine) Config() Config {
	return e.cfg
}

// Categories справочник категорий
func (e *Engine) Categories() *classification.CategoryIndex {
	return e.categories
}

// Classify рекомендует категории для записи
func (e *Engine) Classify(rec material.Record) classification.Outcome {
	return e.classifier.Classify(rec)
}

// Explanation разбор классификации по шагам
type Explanation struct {
	Normalized algorithms.NormalizedText    `json:"normalized"`
	Rules      []classification.RuleScore   `json:"rules"`
	Vectors    []classification.VectorScore `json:"vectors"`
	Outcome    classification.Outcome       `json:"outcome"`
}

// Explain показывает токены, оценки правил и векторов отдельно от итога
func (e *Engine) Explain(rec material.Record) Explanation {
	return Explanation{
		Normalized: e.normalizer.Normalize(rec.Text()),
		Rules:      e.classifier.ClassifyRules(rec),
		Vectors:    e.classifier.ClassifyVectors(rec),
		Outcome:    e.classifier.Classify(rec),
	}
}

// Index индекс корпуса. Индексы переиспользуются между вызовами, пока
// содержимое корпуса не меняется.
func (e *Engine) Index(corpus []material.Record) (*matching.Index, error) {
	start := time.Now()
	idx, cached, err := e.indexes.getOrBuild(corpus, func() (*matching.Index, error) {
		return matching.NewIndex(corpus, e.normalizer, e.cfg.MatchWeights)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to index corpus: %w", err)
	}
	if !cached {
		e.logger.Debug("corpus indexed",
			"records", idx.Len(),
			"vocabulary", idx.Vocabulary().Size(),
			"duration", time.Since(start),
		)
	}
	return idx, nil
}

// FindSimilar ищет в корпусе записи, похожие на запрос.
// Аргументы проверяются до построения индекса.
func (e *Engine) FindSimilar(query material.Record, corpus []material.Record, threshold float64, maxResults int) (matching.Outcome, error) {
	if err := material.ValidateThreshold(threshold); err != nil {
		return matching.Outcome{}, err
	}
	if maxResults <= 0 {
		return matching.Outcome{}, fmt.Errorf("%w: %d", material.ErrInvalidMaxResults, maxResults)
	}

	idx, err := e.Index(corpus)
	if err != nil {
		return matching.Outcome{}, err
	}
	return idx.FindSimilar(query, threshold, maxResults)
}

// Deduplicate группирует пакет записей в кластеры дубликатов
func (e *Engine) Deduplicate(records []material.Record, threshold float64) ([]material.DedupCluster, error) {
	start := time.Now()
	clusters, err := e.dedup.Deduplicate(records, threshold)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("batch deduplicated",
		"records", len(records),
		"clusters", len(clusters),
		"duration", time.Since(start),
	)
	return clusters, nil
}

func sortByID(records []material.Record) {
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
}
