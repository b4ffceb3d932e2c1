package classification

import (
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"mdmserver/normalization/algorithms"
)

// RulePolicy настройки классификации по правилам
type RulePolicy struct {
	// InheritKeywords ключевые слова предков засчитываются потомкам с половинным весом
	InheritKeywords bool           `json:"inherit_keywords"`
	Richness        RichnessPolicy `json:"richness"`
}

// DefaultRulePolicy политика по умолчанию
func DefaultRulePolicy() RulePolicy {
	return RulePolicy{Richness: DefaultRichnessPolicy()}
}

// RuleScore оценка категории по правилам
type RuleScore struct {
	CategoryID        string   `json:"category_id"`
	Level             int      `json:"level"`
	Confidence        float64  `json:"confidence"`
	KeywordScore      float64  `json:"keyword_score"`
	SpecScore         float64  `json:"spec_score"`
	ManufacturerMatch bool     `json:"manufacturer_match"`
	MatchedKeywords   []string `json:"matched_keywords,omitempty"`
	SpecHits          int      `json:"spec_hits"`
}

type keywordOwner struct {
	category  int
	inherited bool
}

// RuleClassifier сопоставляет ключевые слова, шаблоны характеристик и
// производителей категорий с нормализованным описанием.
// Все ключевые слова ищутся за один проход автоматом Ахо-Корасик.
type RuleClassifier struct {
	index    *CategoryIndex
	policy   RulePolicy
	matcher  *ahocorasick.Matcher
	keywords []string
	owners   [][]keywordOwner
}

// NewRuleClassifier строит автомат по ключевым словам справочника
func NewRuleClassifier(index *CategoryIndex, policy RulePolicy) *RuleClassifier {
	rc := &RuleClassifier{index: index, policy: policy}

	position := make(map[string]int)
	addOwner := func(keyword string, owner keywordOwner) {
		i, ok := position[keyword]
		if !ok {
			i = len(rc.keywords)
			position[keyword] = i
			rc.keywords = append(rc.keywords, keyword)
			rc.owners = append(rc.owners, nil)
		}
		rc.owners[i] = append(rc.owners[i], owner)
	}

	for ci := 0; ci < index.Len(); ci++ {
		cat := index.At(ci)
		for _, kw := range cat.keywords {
			addOwner(kw, keywordOwner{category: ci})
		}
		if !policy.InheritKeywords {
			continue
		}
		for _, ai := range cat.ancestors {
			for _, kw := range index.At(ai).keywords {
				addOwner(kw, keywordOwner{category: ci, inherited: true})
			}
		}
	}

	if len(rc.keywords) > 0 {
		rc.matcher = ahocorasick.NewStringMatcher(rc.keywords)
	}
	return rc
}

type ruleAccumulator struct {
	own       map[string]bool
	inherited map[string]bool
}

// Classify оценивает все категории. Категория попадает в результат только
// при хотя бы одном совпадении ключевого слова или шаблона характеристик.
func (rc *RuleClassifier) Classify(n algorithms.NormalizedText, manufacturer string) []RuleScore {
	if n.Text == "" {
		return nil
	}

	accum := rc.matchKeywords(n.Text)
	weights := WeightsFor(rc.policy.Richness.Richness(n))
	hasSpec := len(n.SpecTokens) > 0
	mfr := algorithms.CleanText(manufacturer)

	var results []RuleScore
	for ci := 0; ci < rc.index.Len(); ci++ {
		cat := rc.index.At(ci)
		acc := accum[ci]

		specHits := 0
		for _, re := range cat.patterns {
			if re.MatchString(n.Text) {
				specHits++
			}
		}

		ownHits, inheritedHits := 0, 0
		if acc != nil {
			ownHits = len(acc.own)
			inheritedHits = len(acc.inherited)
		}
		if ownHits == 0 && inheritedHits == 0 && specHits == 0 {
			continue
		}

		kwScore := keywordScore(float64(ownHits) + 0.5*float64(inheritedHits))
		specScore := 0.0
		if len(cat.patterns) > 0 {
			specScore = algorithms.Clamp01(float64(specHits) / float64(min(2, len(cat.patterns))))
		}
		mfrMatch := manufacturerMatches(mfr, cat.manufacturers)

		numerator := weights.Keyword * kwScore
		denominator := weights.Keyword
		if hasSpec && len(cat.patterns) > 0 {
			numerator += weights.Spec * specScore
			denominator += weights.Spec
		}
		if mfrMatch {
			numerator += weights.Manufacturer
		}
		// Совпадение только по шаблону без извлеченных характеристик не дает оценки
		if numerator <= 0 {
			continue
		}

		results = append(results, RuleScore{
			CategoryID:        cat.ID,
			Level:             cat.Level,
			Confidence:        algorithms.Clamp01(cat.Weight * numerator / denominator),
			KeywordScore:      kwScore,
			SpecScore:         specScore,
			ManufacturerMatch: mfrMatch,
			MatchedKeywords:   acc.keywordList(),
			SpecHits:          specHits,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return rankBefore(results[i].Confidence, results[j].Confidence,
			results[i].Level, results[j].Level,
			results[i].CategoryID, results[j].CategoryID)
	})
	return results
}

func (rc *RuleClassifier) matchKeywords(text string) map[int]*ruleAccumulator {
	accum := make(map[int]*ruleAccumulator)
	if rc.matcher == nil {
		return accum
	}

	for _, hit := range rc.matcher.MatchThreadSafe([]byte(text)) {
		if hit < 0 || hit >= len(rc.keywords) {
			continue
		}
		keyword := rc.keywords[hit]
		for _, owner := range rc.owners[hit] {
			acc, ok := accum[owner.category]
			if !ok {
				acc = &ruleAccumulator{own: map[string]bool{}, inherited: map[string]bool{}}
				accum[owner.category] = acc
			}
			if owner.inherited {
				acc.inherited[keyword] = true
			} else {
				acc.own[keyword] = true
			}
		}
	}

	// Слово, найденное как собственное, не учитывается повторно как унаследованное
	for _, acc := range accum {
		for kw := range acc.own {
			delete(acc.inherited, kw)
		}
	}
	return accum
}

func (acc *ruleAccumulator) keywordList() []string {
	if acc == nil {
		return nil
	}
	out := make([]string, 0, len(acc.own)+len(acc.inherited))
	for kw := range acc.own {
		out = append(out, kw)
	}
	for kw := range acc.inherited {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// keywordScore: одно совпадение дает 0.6, каждое следующее +0.2, максимум 1
func keywordScore(hits float64) float64 {
	if hits <= 0 {
		return 0
	}
	return algorithms.Clamp01(0.6 + 0.2*(hits-1))
}

func manufacturerMatches(manufacturer string, whitelist []string) bool {
	if manufacturer == "" {
		return false
	}
	for _, m := range whitelist {
		if strings.Contains(manufacturer, m) || strings.Contains(m, manufacturer) {
			return true
		}
	}
	return false
}

// rankBefore общий порядок результатов: уверенность по убыванию,
// затем более глубокий уровень, затем меньший ID
func rankBefore(confA, confB float64, levelA, levelB int, idA, idB string) bool {
	if confA != confB {
		return confA > confB
	}
	if levelA != levelB {
		return levelA > levelB
	}
	return idA < idB
}
