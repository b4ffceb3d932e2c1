package deduplication

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdmserver/internal/domain/material"
	"mdmserver/matching"
	"mdmserver/normalization/algorithms"
)

func newTestEngine() *Engine {
	return NewEngine(algorithms.NewTextNormalizer(), matching.DefaultWeights(), DefaultLevels())
}

func gateValveBatch() []material.Record {
	return []material.Record{
		{ID: "3", Name: "闸阀", Spec: "DN50 PN16", Unit: "个", Manufacturer: "正泰"},
		{ID: "1", Name: "闸阀", Spec: "DN50 PN16", Unit: "只"},
		{ID: "4", Name: "深沟球轴承", Spec: "6205"},
		{ID: "2", Name: "闸阀", Spec: "dn50 pn16", Unit: "个", Manufacturer: "正泰有限公司", Category: "valve.gate"},
	}
}

func TestDeduplicate_Empty(t *testing.T) {
	clusters, err := newTestEngine().Deduplicate(nil, 0.8)
	require.NoError(t, err)
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

func TestDeduplicate_Single(t *testing.T) {
	clusters, err := newTestEngine().Deduplicate([]material.Record{{ID: "x", Name: "疏水器"}}, 0.8)
	require.NoError(t, err)
	require.Len(t, clusters, 1)

	c := clusters[0]
	assert.Equal(t, []string{"x"}, c.MemberIDs)
	assert.Equal(t, "x", c.RepresentativeID)
	assert.Empty(t, c.ConflictingFields)
	assert.Equal(t, material.ConfidenceSingle, c.ConfidenceLevel)
	assert.Equal(t, material.ActionKeep, c.RecommendedAction)
}

func TestDeduplicate_Errors(t *testing.T) {
	engine := newTestEngine()

	_, err := engine.Deduplicate([]material.Record{{ID: "1", Name: "a"}, {ID: "1", Name: "b"}}, 0.5)
	assert.ErrorIs(t, err, material.ErrDuplicateRecordID)

	_, err = engine.Deduplicate(gateValveBatch(), 1.5)
	assert.ErrorIs(t, err, material.ErrThresholdOutOfRange)

	// Порог проверяется даже для пустого пакета
	_, err = engine.Deduplicate(nil, -1)
	assert.ErrorIs(t, err, material.ErrThresholdOutOfRange)
}

func TestDeduplicate_ClusterReport(t *testing.T) {
	clusters, err := newTestEngine().Deduplicate(gateValveBatch(), 0.8)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	dup := clusters[0]
	assert.Equal(t, []string{"1", "2", "3"}, dup.MemberIDs)
	assert.Equal(t, "2", dup.RepresentativeID, "record 2 has no empty fields")
	assert.Equal(t, map[string][]string{
		material.FieldManufacturer: {"正泰", "正泰有限公司"},
		material.FieldUnit:         {"个", "只"},
	}, dup.ConflictingFields)
	assert.InDelta(t, 1.0, dup.AverageSimilarity, 1e-9)
	assert.Equal(t, material.ConfidenceHigh, dup.ConfidenceLevel)
	assert.Equal(t, material.ActionAutoMerge, dup.RecommendedAction)
	assert.Equal(t, ClusterID([]string{"3", "1", "2"}), dup.ClusterID)

	single := clusters[1]
	assert.Equal(t, []string{"4"}, single.MemberIDs)
	assert.True(t, single.IsSingleton())
	assert.NotEqual(t, dup.ClusterID, single.ClusterID)
}

func TestDeduplicate_Partition(t *testing.T) {
	batch := append(gateValveBatch(),
		material.Record{ID: "5", Name: "板式平焊法兰", Spec: "DN100 PN16"},
		material.Record{ID: "6", Name: "板式平焊法兰", Spec: "DN80 PN16"},
		material.Record{ID: "7", Name: "法兰", Spec: "DN100 PN1.6"},
		material.Record{ID: "8", Name: "截止阀", Spec: "DN50 PN16"},
		material.Record{ID: "9", Name: "六角螺栓", Spec: "M20*2.5 L=100mm"},
	)

	for _, threshold := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		clusters, err := newTestEngine().Deduplicate(batch, threshold)
		require.NoError(t, err)

		seen := make(map[string]int)
		for _, c := range clusters {
			require.NotEmpty(t, c.MemberIDs)
			assert.True(t, sort.StringsAreSorted(c.MemberIDs))
			assert.Contains(t, c.MemberIDs, c.RepresentativeID)
			for _, id := range c.MemberIDs {
				seen[id]++
			}
			for field, values := range c.ConflictingFields {
				assert.GreaterOrEqual(t, len(values), 2, "field %s", field)
			}
		}

		assert.Len(t, seen, len(batch), "threshold %v", threshold)
		for id, n := range seen {
			assert.Equal(t, 1, n, "record %s in %d clusters at threshold %v", id, n, threshold)
		}
	}
}

func TestDeduplicate_IndependentOfInputOrder(t *testing.T) {
	batch := gateValveBatch()
	first, err := newTestEngine().Deduplicate(batch, 0.5)
	require.NoError(t, err)

	reversed := make([]material.Record, len(batch))
	for i, r := range batch {
		reversed[len(batch)-1-i] = r
	}
	second, err := newTestEngine().Deduplicate(reversed, 0.5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestChooseRepresentative_TieLowestID(t *testing.T) {
	members := []material.Record{
		{ID: "b", Name: "闸阀", Spec: "DN50"},
		{ID: "a", Name: "闸阀", Spec: "DN50"},
		{ID: "c", Name: "闸阀"},
	}
	assert.Equal(t, "a", chooseRepresentative(members))
	assert.Equal(t, "", chooseRepresentative(nil))
}

func TestConflictingFields_CaseAndWidthInsensitive(t *testing.T) {
	members := []material.Record{
		{ID: "1", Name: "闸阀", Spec: "DN50 PN16"},
		{ID: "2", Name: "闸阀", Spec: "dn50  pn16"},
		{ID: "3", Name: "闸阀", Spec: "ＤＮ50 PN16"},
	}
	assert.Empty(t, conflictingFields(members))

	// Остается первое написание в порядке участников
	assert.Equal(t, []string{"DN50 PN16"}, distinctValues(members, material.FieldSpec))

	members = append(members, material.Record{ID: "4", Name: "闸阀", Spec: "DN80 PN16"})
	assert.Equal(t, map[string][]string{
		material.FieldSpec: {"DN50 PN16", "DN80 PN16"},
	}, conflictingFields(members))
}

func TestLevels_Classify(t *testing.T) {
	levels := DefaultLevels()
	tests := []struct {
		avg    float64
		level  material.ConfidenceLevel
		action material.MergeAction
	}{
		{0.95, material.ConfidenceHigh, material.ActionAutoMerge},
		{0.85, material.ConfidenceHigh, material.ActionAutoMerge},
		{0.7, material.ConfidenceMedium, material.ActionManualReview},
		{0.65, material.ConfidenceMedium, material.ActionManualReview},
		{0.3, material.ConfidenceLow, material.ActionSeparate},
	}
	for _, tt := range tests {
		level, action := levels.Classify(tt.avg)
		assert.Equal(t, tt.level, level, "avg %v", tt.avg)
		assert.Equal(t, tt.action, action, "avg %v", tt.avg)
	}
}

func TestSummarize(t *testing.T) {
	clusters, err := newTestEngine().Deduplicate(gateValveBatch(), 0.8)
	require.NoError(t, err)

	s := Summarize(clusters)
	assert.Equal(t, 4, s.TotalRecords)
	assert.Equal(t, 2, s.TotalClusters)
	assert.Equal(t, 1, s.DuplicateClusters)
	assert.Equal(t, 1, s.Singletons)
	assert.Equal(t, 2, s.RedundantRecords)
	assert.Equal(t, 1, s.ByAction[material.ActionAutoMerge])
	assert.Equal(t, 1, s.ByAction[material.ActionKeep])
	assert.Equal(t, 1, s.ConflictsByField[material.FieldUnit])
	assert.InDelta(t, 1.0, s.AverageSimilarity, 1e-9)

	empty := Summarize(nil)
	assert.Equal(t, 0, empty.TotalClusters)
	assert.Equal(t, 0.0, empty.AverageSimilarity)
}
