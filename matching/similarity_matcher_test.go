package matching

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdmserver/internal/domain/material"
	"mdmserver/normalization/algorithms"
)

func newTestIndex(t *testing.T, corpus []material.Record) *Index {
	t.Helper()
	idx, err := NewIndex(corpus, algorithms.NewTextNormalizer(), DefaultWeights())
	require.NoError(t, err)
	return idx
}

func sampleCorpus() []material.Record {
	return []material.Record{
		{ID: "m-07", Name: "闸阀", Spec: "DN50 PN16", Category: "valve.gate"},
		{ID: "m-01", Name: "板式平焊法兰", Spec: "DN100 PN16", Category: "flange"},
		{ID: "m-03", Name: "板式平焊法兰", Spec: "DN80 PN16", Category: "flange"},
		{ID: "m-02", Name: "截止阀", Spec: "DN50 PN16", Category: "valve.globe"},
		{ID: "m-05", Name: "疏水器", Spec: "DN25 PN1.6", Category: "valve.steam_trap"},
		{ID: "m-04", Name: "六角螺栓", Spec: "M20*2.5 L=100mm", Category: "fastener"},
		{ID: "m-06", Name: "无缝钢管", Spec: "Φ57*3.5 20#"},
		{ID: "m-08", Name: "深沟球轴承", Spec: "6205-2RS", Manufacturer: "SKF", Category: "bearing"},
	}
}

func TestFindSimilar_ExactMatch(t *testing.T) {
	idx := newTestIndex(t, []material.Record{{ID: "1", Name: "疏水器", Spec: "DN25 PN1.6"}})

	out, err := idx.FindSimilar(material.Record{Name: "疏水器", Spec: "DN25 PN1.6"}, 0.5, 10)
	require.NoError(t, err)
	require.False(t, out.Invalid)
	require.Len(t, out.Results, 1)

	assert.Equal(t, "1", out.Results[0].CandidateID)
	assert.Equal(t, 1.0, out.Results[0].Score)
	assert.Equal(t, material.MatchExact, out.Results[0].MatchType)
}

func TestFindSimilar_ExactMatchIgnoresWidthAndCase(t *testing.T) {
	idx := newTestIndex(t, []material.Record{{ID: "1", Name: "疏水器", Spec: "DN25 PN1.6"}})

	out, err := idx.FindSimilar(material.Record{Name: "疏水器", Spec: "ｄｎ２５  ｐｎ１.６"}, 1, 1)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, material.MatchExact, out.Results[0].MatchType)
}

func TestFindSimilar_PartialFlange(t *testing.T) {
	idx := newTestIndex(t, []material.Record{{ID: "1", Name: "板式平焊法兰", Spec: "DN100 PN16"}})

	out, err := idx.FindSimilar(material.Record{Name: "法兰", Spec: "DN100 PN1.6"}, 0.3, 10)
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, "1", r.CandidateID)
	assert.GreaterOrEqual(t, r.Score, 0.35)
	assert.LessOrEqual(t, r.Score, 0.45)
	assert.Equal(t, material.MatchFused, r.MatchType)

	require.NotNil(t, r.Explanation)
	assert.InDelta(t, 1.0/3.0, r.Explanation.TokenOverlap, 1e-9)
	assert.InDelta(t, 0.5, r.Explanation.SpecAgreement, 1e-9)
	assert.InDelta(t, 2/math.Sqrt(10), r.Explanation.VectorScore, 1e-9)
	assert.Equal(t, []string{"dn100", "法兰"}, r.Explanation.SharedTokens)
	assert.Equal(t, []string{"pressure_rating"}, r.Explanation.ConflictFamily)
}

func TestFindSimilar_ExactAlwaysReturned(t *testing.T) {
	idx := newTestIndex(t, []material.Record{
		{ID: "c", Name: "闸阀", Spec: "DN50"},
		{ID: "a", Name: "闸阀", Spec: "DN50"},
		{ID: "b", Name: "闸阀", Spec: "DN50"},
		{ID: "d", Name: "闸阀", Spec: "DN80"},
	})

	out, err := idx.FindSimilar(material.Record{Name: "闸阀", Spec: "DN50"}, 0, 1)
	require.NoError(t, err)

	ids := make([]string, len(out.Results))
	for i, r := range out.Results {
		ids[i] = r.CandidateID
		assert.Equal(t, material.MatchExact, r.MatchType)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestFindSimilar_InvalidArguments(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())
	query := material.Record{Name: "闸阀", Spec: "DN50"}

	for _, threshold := range []float64{-0.01, 1.01, math.NaN()} {
		_, err := idx.FindSimilar(query, threshold, 10)
		assert.ErrorIs(t, err, material.ErrThresholdOutOfRange, "threshold %v", threshold)
	}

	for _, maxResults := range []int{0, -3} {
		_, err := idx.FindSimilar(query, 0.5, maxResults)
		assert.ErrorIs(t, err, material.ErrInvalidMaxResults)
	}

	// Порог проверяется раньше невалидного запроса
	_, err := idx.FindSimilar(material.Record{}, 2, 10)
	assert.ErrorIs(t, err, material.ErrThresholdOutOfRange)
}

func TestFindSimilar_InvalidQuery(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())

	for _, q := range []material.Record{{Name: ""}, {Name: "   ", Spec: "DN50"}, {Name: "，、"}} {
		out, err := idx.FindSimilar(q, 0.3, 10)
		require.NoError(t, err)
		assert.True(t, out.Invalid)
		assert.NotEmpty(t, out.Reason)
		assert.Empty(t, out.Results)
	}
}

func TestFindSimilar_EmptyCorpus(t *testing.T) {
	idx := newTestIndex(t, nil)

	out, err := idx.FindSimilar(material.Record{Name: "闸阀"}, 0, 10)
	require.NoError(t, err)
	assert.False(t, out.Invalid)
	assert.Empty(t, out.Results)
}

func TestFindSimilar_BoundsAndOrder(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())

	queries := []material.Record{
		{Name: "法兰", Spec: "DN100 PN16"},
		{Name: "闸阀", Spec: "DN50 PN16"},
		{Name: "不锈钢球阀", Spec: "DN25 PN16 304"},
		{Name: "螺栓", Spec: "M20"},
		{Name: "鸡蛋面"},
	}
	for _, q := range queries {
		out, err := idx.FindSimilar(q, 0, 100)
		require.NoError(t, err)
		for i, r := range out.Results {
			assert.GreaterOrEqual(t, r.Score, 0.0)
			assert.LessOrEqual(t, r.Score, 1.0)
			if i > 0 {
				prev := out.Results[i-1]
				ordered := prev.Score > r.Score || (prev.Score == r.Score && prev.CandidateID < r.CandidateID)
				assert.True(t, ordered, "results out of order for %q: %v", q.Name, out.Results)
			}
		}
	}
}

func TestFindSimilar_ThresholdMonotone(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())
	query := material.Record{Name: "平焊法兰", Spec: "DN100 PN16"}

	var prev map[string]bool
	for _, threshold := range []float64{0, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1} {
		out, err := idx.FindSimilar(query, threshold, 3)
		require.NoError(t, err)

		current := make(map[string]bool, len(out.Results))
		for _, r := range out.Results {
			current[r.CandidateID] = true
			if r.MatchType != material.MatchExact {
				assert.GreaterOrEqual(t, r.Score, threshold)
			}
		}
		if prev != nil {
			for id := range current {
				assert.True(t, prev[id], "raising threshold to %v added %s", threshold, id)
			}
		}
		prev = current
	}
}

func TestFindSimilar_Deterministic(t *testing.T) {
	corpus := sampleCorpus()
	query := material.Record{Name: "截止阀", Spec: "DN50 PN16"}

	first, err := newTestIndex(t, corpus).FindSimilar(query, 0.1, 5)
	require.NoError(t, err)
	require.NotEmpty(t, first.Results)
	assert.Equal(t, "m-02", first.Results[0].CandidateID)

	for i := 0; i < 5; i++ {
		again, err := newTestIndex(t, corpus).FindSimilar(query, 0.1, 5)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// Корпус вызывающего не переупорядочивается
	assert.Equal(t, "m-07", corpus[0].ID)
}

func TestNewIndex_RejectsBadCorpus(t *testing.T) {
	normalizer := algorithms.NewTextNormalizer()

	_, err := NewIndex([]material.Record{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}}, normalizer, DefaultWeights())
	assert.ErrorIs(t, err, material.ErrDuplicateRecordID)

	_, err = NewIndex([]material.Record{{Name: "a"}}, normalizer, DefaultWeights())
	assert.ErrorIs(t, err, material.ErrEmptyRecordID)

	_, err = NewIndex(nil, normalizer, Weights{Rule: 0.7, Vector: 0.7})
	assert.Error(t, err)
}

func TestWeights(t *testing.T) {
	w := WeightsFromRule(0.3)
	assert.InDelta(t, 0.7, w.Vector, 1e-12)
	assert.NoError(t, w.Validate())

	assert.Equal(t, Weights{Rule: 1, Vector: 0}, WeightsFromRule(4))
	assert.Error(t, Weights{Rule: -0.5, Vector: 1.5}.Validate())
}

func TestSimilarTo_ExcludesSelfAndFiltered(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())

	pos, ok := idx.Position("m-01")
	require.True(t, ok)

	all, err := idx.SimilarTo(pos, 0, nil)
	require.NoError(t, err)
	require.NotEmpty(t, all)
	for _, r := range all {
		assert.NotEqual(t, "m-01", r.CandidateID)
	}
	assert.Equal(t, "m-03", all[0].CandidateID)

	blocked, _ := idx.Position("m-03")
	filtered, err := idx.SimilarTo(pos, 0, func(p int) bool { return p != blocked })
	require.NoError(t, err)
	for _, r := range filtered {
		assert.NotEqual(t, "m-03", r.CandidateID)
	}

	_, err = idx.SimilarTo(idx.Len(), 0, nil)
	assert.Error(t, err)
}

func TestPairScore_Symmetric(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())

	for a := 0; a < idx.Len(); a++ {
		for b := 0; b < idx.Len(); b++ {
			ab, ba := idx.PairScore(a, b), idx.PairScore(b, a)
			assert.InDelta(t, ab, ba, 1e-12)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
		assert.InDelta(t, 1.0, idx.PairScore(a, a), 1e-9)
	}
}

func TestCategoryStatsAndSearch(t *testing.T) {
	idx := newTestIndex(t, sampleCorpus())

	stats := idx.CategoryStats()
	assert.Equal(t, 2, stats["flange"])
	assert.Equal(t, 1, stats["bearing"])
	_, hasEmpty := stats[""]
	assert.False(t, hasEmpty)

	flanges := idx.SearchByCategory("flange", 0)
	require.Len(t, flanges, 2)
	assert.Equal(t, "m-01", flanges[0].ID)
	assert.Equal(t, "m-03", flanges[1].ID)

	assert.Len(t, idx.SearchByCategory("flange", 1), 1)
	assert.Empty(t, idx.SearchByCategory("missing", 10))
}
