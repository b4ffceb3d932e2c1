package classification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdmserver/internal/domain/material"
	"mdmserver/normalization/algorithms"
)

func defaultIndex(t *testing.T) *CategoryIndex {
	t.Helper()
	idx, err := LoadCategoryIndex("")
	require.NoError(t, err)
	return idx
}

func newTestClassifier(t *testing.T) (*Classifier, *algorithms.TextNormalizer) {
	t.Helper()
	idx := defaultIndex(t)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	return NewClassifier(idx, normalizer, DefaultConfig()), normalizer
}

func TestRuleClassifier_TieBreakByLevel(t *testing.T) {
	idx := defaultIndex(t)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	rc := NewRuleClassifier(idx, DefaultRulePolicy())

	results := rc.Classify(normalizer.Normalize("截止阀 DN50 PN16"), "")
	require.GreaterOrEqual(t, len(results), 2)

	// "阀" и "截止阀" дают одинаковую уверенность, выше стоит более глубокая категория
	assert.Equal(t, "valve.globe", results[0].CategoryID)
	assert.Equal(t, "valve", results[1].CategoryID)
	assert.Equal(t, results[0].Confidence, results[1].Confidence)
	assert.Equal(t, []string{"截止阀"}, results[0].MatchedKeywords)
	assert.Equal(t, 2, results[0].SpecHits)

	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Confidence, results[i].Confidence)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Confidence, 0.0)
		assert.LessOrEqual(t, r.Confidence, 1.0)
	}
}

func TestRuleClassifier_ManufacturerBonus(t *testing.T) {
	idx := defaultIndex(t)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	rc := NewRuleClassifier(idx, DefaultRulePolicy())
	n := normalizer.Normalize("深沟球轴承 6205")

	without := rc.Classify(n, "")
	with := rc.Classify(n, "SKF")
	require.NotEmpty(t, without)
	require.NotEmpty(t, with)
	require.Equal(t, "bearing", without[0].CategoryID)
	require.Equal(t, "bearing", with[0].CategoryID)

	assert.False(t, without[0].ManufacturerMatch)
	assert.True(t, with[0].ManufacturerMatch)
	assert.Greater(t, with[0].Confidence, without[0].Confidence)
}

func TestRuleClassifier_NoHitsNoCategories(t *testing.T) {
	idx := defaultIndex(t)
	rc := NewRuleClassifier(idx, DefaultRulePolicy())

	assert.Empty(t, rc.Classify(algorithms.NewTextNormalizer().Normalize("鸡蛋面"), ""))
	assert.Empty(t, rc.Classify(algorithms.NormalizedText{}, ""))
}

func TestRuleClassifier_InheritKeywords(t *testing.T) {
	idx, err := NewCategoryIndex([]CategoryDefinition{
		{ID: "valve", Name: "阀门", Keywords: []string{"阀门"}},
		{ID: "valve.gate", Name: "闸阀", ParentID: "valve", Keywords: []string{"闸阀"}},
	})
	require.NoError(t, err)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	n := normalizer.Normalize("阀门配件")

	plain := NewRuleClassifier(idx, DefaultRulePolicy()).Classify(n, "")
	require.Len(t, plain, 1)
	assert.Equal(t, "valve", plain[0].CategoryID)

	policy := DefaultRulePolicy()
	policy.InheritKeywords = true
	inherited := NewRuleClassifier(idx, policy).Classify(n, "")
	require.Len(t, inherited, 2)
	assert.Equal(t, "valve", inherited[0].CategoryID)
	assert.Equal(t, "valve.gate", inherited[1].CategoryID)
	// Унаследованное слово весит вдвое меньше собственного
	assert.Less(t, inherited[1].Confidence, inherited[0].Confidence)
}

func TestRuleClassifier_PatternOnlyHitWithoutSpecTokensExcluded(t *testing.T) {
	idx, err := NewCategoryIndex([]CategoryDefinition{
		{ID: "paint", Name: "涂料", Keywords: []string{"油漆"}, SpecPatterns: []string{"红色"}},
	})
	require.NoError(t, err)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	rc := NewRuleClassifier(idx, DefaultRulePolicy())

	n := normalizer.Normalize("红色 桌子")
	require.Empty(t, n.SpecTokens)
	assert.Empty(t, rc.Classify(n, ""))

	// С ключевым словом категория оценивается как обычно
	results := rc.Classify(normalizer.Normalize("红色 油漆"), "")
	require.Len(t, results, 1)
	assert.Greater(t, results[0].Confidence, 0.0)
}

func TestRuleClassifier_NeverReturnsZeroConfidence(t *testing.T) {
	rc, normalizer := newTestClassifier(t)
	inputs := []string{"红色 桌子", "dn50", "pn16 304", "m20*2.5", "闸阀", "深沟球轴承 6205", "鸡蛋面 dn100"}
	for _, in := range inputs {
		for _, r := range rc.rule.Classify(normalizer.Normalize(in), "") {
			assert.Greater(t, r.Confidence, 0.0, "%q: %s", in, r.CategoryID)
		}
	}
}

// Более насыщенные характеристики сдвигают оценку правил к характеристикам:
// совпавшие шаблоны поднимают уверенность, несовпавшие опускают, а категория
// без шаблонов не зависит от характеристик.
func TestRuleClassifier_RichSpecShiftsConfidence(t *testing.T) {
	idx, err := NewCategoryIndex([]CategoryDefinition{
		{ID: "gate", Name: "闸阀", Keywords: []string{"闸阀"}, SpecPatterns: []string{`dn\s?\d+`, `pn\s?\d+(\.\d+)?`}},
		{ID: "class_rated", Name: "美标阀", Keywords: []string{"闸阀"}, SpecPatterns: []string{`cl\d+`}},
		{ID: "plain", Name: "阀类", Keywords: []string{"闸阀"}},
	})
	require.NoError(t, err)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	rc := NewRuleClassifier(idx, DefaultRulePolicy())

	confidence := func(text string) map[string]float64 {
		out := make(map[string]float64)
		for _, r := range rc.Classify(normalizer.Normalize(text), "") {
			out[r.CategoryID] = r.Confidence
		}
		return out
	}

	bare := confidence("闸阀")
	rich := confidence("闸阀 DN100 PN16")
	require.Len(t, bare, 3)
	require.Len(t, rich, 3)

	assert.Greater(t, rich["gate"], bare["gate"])
	assert.Less(t, rich["class_rated"], bare["class_rated"])
	assert.InDelta(t, bare["plain"], rich["plain"], 1e-12)

	// С ростом насыщенности сдвиг только усиливается
	policy := DefaultRichnessPolicy()
	specs := []string{"dn50", "pn16", "304", "100x50", "l=3m"}
	prev := confidence("闸阀 " + strings.Join(specs[:2], " "))
	prevRichness := policy.Richness(normalizer.Normalize("闸阀 " + strings.Join(specs[:2], " ")))
	for i := 3; i <= len(specs); i++ {
		text := "闸阀 " + strings.Join(specs[:i], " ")
		cur := confidence(text)
		r := policy.Richness(normalizer.Normalize(text))
		if r > prevRichness {
			assert.Greater(t, cur["gate"], prev["gate"], text)
			assert.Less(t, cur["class_rated"], prev["class_rated"], text)
		}
		assert.InDelta(t, prev["plain"], cur["plain"], 1e-12, text)
		prev, prevRichness = cur, r
	}
}

func TestRichness_MonotoneInSpecFamilies(t *testing.T) {
	normalizer := algorithms.NewTextNormalizer()
	policy := DefaultRichnessPolicy()
	specs := []string{"dn50", "pn16", "m20", "304", "100x50", "l=3m", "100℃"}

	assert.Equal(t, 0.0, policy.Richness(normalizer.Normalize("闸阀")))

	prev := 0.0
	for i := 1; i <= len(specs); i++ {
		n := normalizer.Normalize("闸阀 " + strings.Join(specs[:i], " "))
		require.Len(t, n.SpecTokens, i, "spec tokens for %v", specs[:i])

		r := policy.Richness(n)
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 1.0)
		if prev < 1 {
			assert.Greater(t, r, prev, "richness must grow with a new spec family: %v", specs[:i])
		} else {
			assert.Equal(t, 1.0, r)
		}
		prev = r
	}
}

func TestWeightsFor_SpecWeightGrowsWithRichness(t *testing.T) {
	prev := WeightsFor(0)
	assert.InDelta(t, 1.0, prev.Keyword+prev.Spec+prev.Manufacturer, 1e-12)

	for r := 0.05; r <= 1.0001; r += 0.05 {
		w := WeightsFor(r)
		assert.Greater(t, w.Spec, prev.Spec)
		assert.Less(t, w.Keyword, prev.Keyword)
		assert.InDelta(t, 1.0, w.Keyword+w.Spec+w.Manufacturer, 1e-12)
		assert.Greater(t, w.Keyword, 0.0)
		prev = w
	}

	// Вне отрезка [0, 1] значение насыщенности ограничивается
	assert.Equal(t, WeightsFor(1), WeightsFor(5))
	assert.Equal(t, WeightsFor(0), WeightsFor(-1))
}

func TestFusionWeights_ShiftWithRichness(t *testing.T) {
	policy := DefaultFusionPolicy()

	rule, vector := policy.FusionWeights(0)
	assert.Equal(t, 0.5, rule)
	assert.Equal(t, 0.5, vector)

	prevRule := rule
	for _, r := range []float64{0.25, 0.5, 0.75, 1} {
		rule, vector := policy.FusionWeights(r)
		assert.Greater(t, rule, prevRule)
		assert.InDelta(t, 1.0, rule+vector, 1e-12)
		prevRule = rule
	}
}

func TestVectorClassifier_SteamTrap(t *testing.T) {
	idx := defaultIndex(t)
	normalizer := algorithms.NewTextNormalizer(idx.Lexicon()...)
	vc := NewVectorClassifier(idx, normalizer, 0)

	results := vc.Classify(vc.Vectorize(normalizer.Normalize("疏水器")))
	require.Len(t, results, 1)
	assert.Equal(t, "valve.steam_trap", results[0].CategoryID)
	assert.Greater(t, results[0].Similarity, 0.0)

	assert.Empty(t, vc.Classify(algorithms.FeatureVector{}))
}

func TestFuse(t *testing.T) {
	idx, err := NewCategoryIndex([]CategoryDefinition{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	})
	require.NoError(t, err)

	rules := []RuleScore{
		{CategoryID: "a", Level: 1, Confidence: 0.8},
		{CategoryID: "b", Level: 1, Confidence: 0.3},
	}
	vectors := []VectorScore{
		{CategoryID: "a", Level: 1, Similarity: 0.6},
		{CategoryID: "c", Level: 1, Similarity: 0.04},
	}

	fused := Fuse(idx, rules, vectors, 0, DefaultFusionPolicy())
	require.Len(t, fused, 2, "c is below min_confidence and must be dropped")

	assert.Equal(t, "a", fused[0].CategoryID)
	assert.Equal(t, SourceFused, fused[0].Source)
	assert.InDelta(t, 0.7, fused[0].Confidence, 1e-12)
	assert.Equal(t, "A", fused[0].CategoryName)

	// Категория из одного источника сохраняет свою оценку без штрафа
	assert.Equal(t, "b", fused[1].CategoryID)
	assert.Equal(t, SourceRule, fused[1].Source)
	assert.Equal(t, 0.3, fused[1].Confidence)
}

func TestClassifier_Classify(t *testing.T) {
	classifier, _ := newTestClassifier(t)

	outcome := classifier.Classify(material.Record{Name: "截止阀", Spec: "DN50 PN16"})
	require.False(t, outcome.Invalid)
	require.NotEmpty(t, outcome.Categories)

	top := outcome.Categories[0]
	assert.Equal(t, "valve.globe", top.CategoryID)
	assert.Equal(t, SourceFused, top.Source)
	assert.Equal(t, []string{"阀门", "截止阀"}, top.Path)
	assert.InDelta(t, 0.5, outcome.Richness, 1e-12)

	for i := 1; i < len(outcome.Categories); i++ {
		assert.GreaterOrEqual(t, outcome.Categories[i-1].Confidence, outcome.Categories[i].Confidence)
	}
}

func TestClassifier_InvalidInput(t *testing.T) {
	classifier, _ := newTestClassifier(t)

	outcome := classifier.Classify(material.Record{Name: "  ", Spec: "DN50"})
	assert.True(t, outcome.Invalid)
	assert.NotEmpty(t, outcome.Reason)
	assert.Empty(t, outcome.Categories)

	outcome = classifier.Classify(material.Record{Name: "，。"})
	assert.True(t, outcome.Invalid)
}

func TestClassifier_Deterministic(t *testing.T) {
	classifier, _ := newTestClassifier(t)
	rec := material.Record{Name: "不锈钢球阀", Spec: "DN25 PN16 304", Manufacturer: "正泰"}

	first := classifier.Classify(rec)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, classifier.Classify(rec))
	}
}
