package matching

import (
	"fmt"
	"sort"
	"strings"

	"mdmserver/internal/domain/material"
	"mdmserver/normalization/algorithms"
)

// Weights веса составляющих итоговой оценки схожести
type Weights struct {
	Rule   float64 `json:"rule"`
	Vector float64 `json:"vector"`
}

// DefaultWeights равные веса правил и векторов
func DefaultWeights() Weights {
	return Weights{Rule: 0.5, Vector: 0.5}
}

// WeightsFromRule веса по доле правил, векторам достается остаток
func WeightsFromRule(rule float64) Weights {
	rule = algorithms.Clamp01(rule)
	return Weights{Rule: rule, Vector: 1 - rule}
}

// Validate веса неотрицательны и в сумме дают 1
func (w Weights) Validate() error {
	if w.Rule < 0 || w.Vector < 0 {
		return fmt.Errorf("match weights must be non-negative: rule=%v vector=%v", w.Rule, w.Vector)
	}
	if sum := w.Rule + w.Vector; sum < 0.999 || sum > 1.001 {
		return fmt.Errorf("match weights must sum to 1, got %v", sum)
	}
	return nil
}

// Outcome результат поиска похожих записей
type Outcome struct {
	Results []material.MatchResult `json:"results"`
	Invalid bool                   `json:"invalid,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
}

type document struct {
	record material.Record
	text   string
	tokens map[string]struct{}
	specs  map[algorithms.SpecFamily]map[string]struct{}
}

func newDocument(rec material.Record, n algorithms.NormalizedText) document {
	specs := make(map[algorithms.SpecFamily]map[string]struct{})
	for _, m := range n.Specs {
		values, ok := specs[m.Family]
		if !ok {
			values = make(map[string]struct{})
			specs[m.Family] = values
		}
		values[m.Token] = struct{}{}
	}
	return document{
		record: rec,
		text:   n.Text,
		tokens: algorithms.StringSet(n.Tokens),
		specs:  specs,
	}
}

// Index поисковый индекс по корпусу записей.
// Словарь TF-IDF обучается на корпусе при построении и дальше не меняется.
// Индекс неизменяем и безопасен для параллельного поиска.
type Index struct {
	normalizer *algorithms.TextNormalizer
	weights    Weights
	docs       []document
	positions  map[string]int
	exact      map[string][]int
	vocab      *algorithms.Vocabulary
	vectors    []algorithms.FeatureVector
	postings   *algorithms.InvertedIndex
}

// NewIndex нормализует и индексирует корпус. Записи упорядочиваются по ID,
// исходный срез не изменяется.
func NewIndex(corpus []material.Record, normalizer *algorithms.TextNormalizer, weights Weights) (*Index, error) {
	if err := material.ValidateCorpus(corpus); err != nil {
		return nil, err
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	records := make([]material.Record, len(corpus))
	copy(records, corpus)
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	idx := &Index{
		normalizer: normalizer,
		weights:    weights,
		docs:       make([]document, len(records)),
		positions:  make(map[string]int, len(records)),
		exact:      make(map[string][]int),
	}

	tokens := make([][]string, len(records))
	for i, rec := range records {
		n := normalizer.Normalize(rec.Text())
		tokens[i] = n.Tokens
		idx.docs[i] = newDocument(rec, n)
		idx.positions[rec.ID] = i
		if n.Text != "" {
			idx.exact[n.Text] = append(idx.exact[n.Text], i)
		}
	}

	idx.vocab = algorithms.Fit(tokens)
	idx.vectors = idx.vocab.TransformAll(tokens)
	idx.postings = algorithms.NewInvertedIndex(idx.vectors, idx.vocab.Size())
	return idx, nil
}

// Len размер корпуса
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Record запись корпуса по позиции (позиции упорядочены по ID)
func (idx *Index) Record(pos int) material.Record {
	return idx.docs[pos].record
}

// Position позиция записи с данным ID
func (idx *Index) Position(id string) (int, bool) {
	pos, ok := idx.positions[id]
	return pos, ok
}

// Vocabulary словарь корпуса
func (idx *Index) Vocabulary() *algorithms.Vocabulary {
	return idx.vocab
}

// FindSimilar ищет в корпусе записи, похожие на запрос.
// Точные совпадения нормализованного текста возвращаются всегда, остальные
// кандидаты должны иметь положительную оценку не ниже порога.
func (idx *Index) FindSimilar(query material.Record, threshold float64, maxResults int) (Outcome, error) {
	if err := material.ValidateThreshold(threshold); err != nil {
		return Outcome{}, err
	}
	if maxResults <= 0 {
		return Outcome{}, fmt.Errorf("%w: %d", material.ErrInvalidMaxResults, maxResults)
	}
	if err := query.ValidateQuery(); err != nil {
		return Outcome{Invalid: true, Reason: err.Error(), Results: []material.MatchResult{}}, nil
	}

	n := idx.normalizer.Normalize(query.Text())
	if n.IsEmpty() {
		return Outcome{Invalid: true, Reason: "no tokens after normalization", Results: []material.MatchResult{}}, nil
	}

	q := newDocument(query, n)
	results := idx.search(q, idx.vocab.Transform(n.Tokens), threshold, maxResults, nil)
	return Outcome{Results: results}, nil
}

// SimilarTo ищет записи, похожие на запись корпуса в позиции pos.
// allow ограничивает кандидатов, сама запись в результат не попадает.
// Количество результатов не ограничено.
func (idx *Index) SimilarTo(pos int, threshold float64, allow func(pos int) bool) ([]material.MatchResult, error) {
	if err := material.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if pos < 0 || pos >= len(idx.docs) {
		return nil, fmt.Errorf("position %d out of range [0, %d)", pos, len(idx.docs))
	}
	filter := func(p int) bool {
		return p != pos && (allow == nil || allow(p))
	}
	return idx.search(idx.docs[pos], idx.vectors[pos], threshold, 0, filter), nil
}

// PairScore оценка схожести двух записей корпуса
func (idx *Index) PairScore(a, b int) float64 {
	da, db := &idx.docs[a], &idx.docs[b]
	shared := 0
	for t := range da.tokens {
		if _, ok := db.tokens[t]; ok {
			shared++
		}
	}
	cos := algorithms.CosineSimilarity(idx.vectors[a], idx.vectors[b])
	score, _, _ := idx.score(da, db, cos, shared)
	return score
}

type candidate struct {
	pos    int
	result material.MatchResult
}

// search оценивает кандидатов одним проходом по инвертированному индексу.
// limit <= 0 снимает ограничение на число неточных совпадений.
func (idx *Index) search(q document, qvec algorithms.FeatureVector, threshold float64, limit int, allow func(int) bool) []material.MatchResult {
	board := idx.postings.Score(qvec)

	var exact, ranked []candidate
	seen := make(map[int]struct{}, len(board.Touched))

	for _, pos := range idx.exact[q.text] {
		if allow != nil && !allow(pos) {
			continue
		}
		seen[pos] = struct{}{}
		exact = append(exact, candidate{pos: pos, result: material.MatchResult{
			CandidateID: idx.docs[pos].record.ID,
			Score:       1.0,
			MatchType:   material.MatchExact,
			Explanation: &material.MatchExplanation{
				TokenOverlap:  1,
				SpecAgreement: 1,
				RuleScore:     1,
				VectorScore:   1,
				SharedTokens:  sortedTokens(q.tokens),
			},
		}})
	}

	for _, pos := range board.Touched {
		if _, dup := seen[pos]; dup {
			continue
		}
		if allow != nil && !allow(pos) {
			continue
		}
		d := &idx.docs[pos]
		score, matchType, explanation := idx.score(&q, d, board.Dots[pos], board.Shared[pos])
		if score <= 0 || score < threshold {
			continue
		}
		ranked = append(ranked, candidate{pos: pos, result: material.MatchResult{
			CandidateID: d.record.ID,
			Score:       score,
			MatchType:   matchType,
			Explanation: explanation,
		}})
	}

	sortCandidates(ranked)
	if limit > 0 {
		free := limit - len(exact)
		if free < 0 {
			free = 0
		}
		if len(ranked) > free {
			ranked = ranked[:free]
		}
	}

	all := append(exact, ranked...)
	sortCandidates(all)

	results := make([]material.MatchResult, len(all))
	for i, c := range all {
		results[i] = c.result
	}
	return results
}

// score объединяет правило и вектор. Правило: пересечение токенов (Жаккар),
// умноженное на согласованность характеристик одинаковых семейств.
func (idx *Index) score(q, d *document, cos float64, shared int) (float64, material.MatchType, *material.MatchExplanation) {
	overlap := algorithms.JaccardFromCounts(shared, len(q.tokens), len(d.tokens))
	agreement, conflicts := specAgreement(q.specs, d.specs)
	rule := overlap * agreement

	score := algorithms.Clamp01(idx.weights.Rule*rule + idx.weights.Vector*cos)

	matchType := material.MatchFused
	switch {
	case rule == 0:
		matchType = material.MatchVector
	case cos == 0:
		matchType = material.MatchRule
	}

	return score, matchType, &material.MatchExplanation{
		TokenOverlap:   overlap,
		SpecAgreement:  agreement,
		RuleScore:      rule,
		VectorScore:    cos,
		SharedTokens:   sharedTokens(q.tokens, d.tokens),
		ConflictFamily: conflicts,
	}
}

// specAgreement доля общих семейств характеристик, в которых у записей есть
// совпадающее значение. Без общих семейств возвращает 1.
func specAgreement(a, b map[algorithms.SpecFamily]map[string]struct{}) (float64, []string) {
	common, agree := 0, 0
	var conflicts []string
	for family, va := range a {
		vb, ok := b[family]
		if !ok {
			continue
		}
		common++
		matched := false
		for v := range va {
			if _, ok := vb[v]; ok {
				matched = true
				break
			}
		}
		if matched {
			agree++
		} else {
			conflicts = append(conflicts, string(family))
		}
	}
	if common == 0 {
		return 1, nil
	}
	sort.Strings(conflicts)
	return float64(agree) / float64(common), conflicts
}

func sharedTokens(a, b map[string]struct{}) []string {
	var out []string
	for t := range a {
		if _, ok := b[t]; ok {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func sortedTokens(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// sortCandidates оценка по убыванию, затем ID по возрастанию
func sortCandidates(c []candidate) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].result.Score != c[j].result.Score {
			return c[i].result.Score > c[j].result.Score
		}
		return c[i].result.CandidateID < c[j].result.CandidateID
	})
}

// CategoryStats число записей корпуса по категориям, записи без категории не учитываются
func (idx *Index) CategoryStats() map[string]int {
	stats := make(map[string]int)
	for _, d := range idx.docs {
		if c := strings.TrimSpace(d.record.Category); c != "" {
			stats[c]++
		}
	}
	return stats
}

// DefaultCategoryLimit размер выдачи SearchByCategory по умолчанию
const DefaultCategoryLimit = 50

// SearchByCategory записи корпуса с заданной категорией в порядке ID
func (idx *Index) SearchByCategory(category string, limit int) []material.Record {
	if limit <= 0 {
		limit = DefaultCategoryLimit
	}
	category = strings.TrimSpace(category)
	out := []material.Record{}
	for _, d := range idx.docs {
		if strings.TrimSpace(d.record.Category) != category {
			continue
		}
		out = append(out, d.record)
		if len(out) == limit {
			break
		}
	}
	return out
}
