package deduplication

import (
	"sort"
	"strings"

	"mdmserver/internal/domain/material"
	"mdmserver/normalization/algorithms"
)

// chooseRepresentative наиболее полная запись кластера: меньше всего пустых
// полей, при равенстве меньший ID
func chooseRepresentative(members []material.Record) string {
	best := -1
	for i, m := range members {
		if best < 0 {
			best = i
			continue
		}
		be, me := members[best].EmptyFields(), m.EmptyFields()
		if me < be || (me == be && m.ID < members[best].ID) {
			best = i
		}
	}
	if best < 0 {
		return ""
	}
	return members[best].ID
}

// conflictingFields различные непустые значения полей. Поле попадает в
// результат, только если значений хотя бы два.
func conflictingFields(members []material.Record) map[string][]string {
	out := make(map[string][]string)
	for _, field := range material.Fields {
		values := distinctValues(members, field)
		if len(values) >= 2 {
			out[field] = values
		}
	}
	return out
}

func distinctValues(members []material.Record, field string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, m := range members {
		v := strings.TrimSpace(m.Field(field))
		if v == "" {
			continue
		}
		// Регистр и ширина символов не делают значение другим
		key := algorithms.CleanText(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// FieldConflict расхождение значений поля внутри кластера.
// Equivalent: все значения дают одинаковый отпечаток (например, 个 и 只,
// или название производителя с суффиксом и без него).
type FieldConflict struct {
	Field      string   `json:"field"`
	Values     []string `json:"values"`
	Equivalent bool     `json:"equivalent"`
}

// ConflictDetails подробный отчет о конфликтах кластера в порядке полей
func ConflictDetails(members []material.Record) []FieldConflict {
	conflicts := conflictingFields(members)
	var out []FieldConflict
	for _, field := range material.Fields {
		values, ok := conflicts[field]
		if !ok {
			continue
		}
		equivalent := true
		first := fieldFingerprint(field, values[0])
		for _, v := range values[1:] {
			if fieldFingerprint(field, v) != first {
				equivalent = false
				break
			}
		}
		out = append(out, FieldConflict{Field: field, Values: values, Equivalent: equivalent && first != ""})
	}
	return out
}
