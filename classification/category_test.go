package classification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCategoryIndex_Levels(t *testing.T) {
	idx, err := NewCategoryIndex([]CategoryDefinition{
		{ID: "valve.gate", Name: "闸阀", ParentID: "valve", Keywords: []string{"闸阀"}},
		{ID: "valve", Name: "阀门", Keywords: []string{"阀门"}},
		{ID: "valve.gate.wedge", Name: "楔式闸阀", ParentID: "valve.gate"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	// Категории упорядочены по ID
	assert.Equal(t, "valve", idx.At(0).ID)
	assert.Equal(t, "valve.gate", idx.At(1).ID)

	wedge, ok := idx.Get("valve.gate.wedge")
	require.True(t, ok)
	assert.Equal(t, 3, wedge.Level)
	assert.Equal(t, 1.0, wedge.Weight)
	assert.Equal(t, []string{"阀门", "闸阀", "楔式闸阀"}, idx.Path("valve.gate.wedge"))
	assert.Nil(t, idx.Path("missing"))
}

func TestNewCategoryIndex_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		defs  []CategoryDefinition
		field string
	}{
		{
			name:  "duplicate id",
			defs:  []CategoryDefinition{{ID: "a", Name: "A"}, {ID: "a", Name: "A2"}},
			field: "id",
		},
		{
			name:  "unknown parent",
			defs:  []CategoryDefinition{{ID: "a", Name: "A", ParentID: "zzz"}},
			field: "parent_id",
		},
		{
			name: "cycle",
			defs: []CategoryDefinition{
				{ID: "a", Name: "A", ParentID: "b"},
				{ID: "b", Name: "B", ParentID: "a"},
			},
			field: "parent_id",
		},
		{
			name:  "self parent",
			defs:  []CategoryDefinition{{ID: "a", Name: "A", ParentID: "a"}},
			field: "parent_id",
		},
		{
			name:  "bad regex",
			defs:  []CategoryDefinition{{ID: "a", Name: "A", SpecPatterns: []string{`dn(\d+`}}},
			field: "spec_patterns",
		},
		{
			name:  "empty name",
			defs:  []CategoryDefinition{{ID: "a"}},
			field: "name",
		},
		{
			name:  "weight out of range",
			defs:  []CategoryDefinition{{ID: "a", Name: "A", Weight: 3}},
			field: "weight",
		},
		{
			name:  "empty id",
			defs:  []CategoryDefinition{{Name: "A"}},
			field: "id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, err := NewCategoryIndex(tt.defs)
			require.Error(t, err)
			assert.Nil(t, idx)

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigError, got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestNewCategoryIndex_Empty(t *testing.T) {
	_, err := NewCategoryIndex(nil)
	assert.ErrorIs(t, err, ErrEmptyCategories)
}

func TestNewCategoryIndex_CollectsAllErrors(t *testing.T) {
	_, err := NewCategoryIndex([]CategoryDefinition{
		{ID: "a", Name: "A", SpecPatterns: []string{`(`}},
		{ID: "b", Name: "", Weight: -1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spec_patterns")
	assert.Contains(t, err.Error(), "name")
	assert.Contains(t, err.Error(), "weight")
}

func TestDefaultCategoryConfig(t *testing.T) {
	cfg, err := DefaultCategoryConfig()
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Categories)

	idx, err := NewCategoryIndex(cfg.Categories)
	require.NoError(t, err)

	trap, ok := idx.Get("valve.steam_trap")
	require.True(t, ok)
	assert.Equal(t, 2, trap.Level)
	assert.Contains(t, idx.Lexicon(), "疏水器")
}

func TestParseCategoryConfig(t *testing.T) {
	jsonDoc := []byte(`{"categories":[{"id":"flange","name":"法兰","keywords":["法兰"],"spec_patterns":["dn\\d+"],"weight":1.2}]}`)
	cfg, err := ParseCategoryConfig(jsonDoc)
	require.NoError(t, err)
	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, "flange", cfg.Categories[0].ID)
	assert.Equal(t, []string{`dn\d+`}, cfg.Categories[0].SpecPatterns)
	assert.Equal(t, 1.2, cfg.Categories[0].Weight)

	_, err = ParseCategoryConfig([]byte("categories:\n  - id: a\n    nmae: typo\n"))
	assert.Error(t, err)

	// Сериализованный справочник читается обратно
	data, err := cfg.MarshalDocument()
	require.NoError(t, err)
	again, err := ParseCategoryConfig(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Categories, again.Categories)
}
