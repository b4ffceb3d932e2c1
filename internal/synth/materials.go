// Package synth генерирует синтетический справочник МТР для нагрузочных
// прогонов и бенчмарков.
package synth

import (
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"mdmserver/internal/domain/material"
)

type itemKind struct {
	category string
	names    []string
	spec     func(f *gofakeit.Faker) string
	units    []string
}

var kinds = []itemKind{
	{
		category: "valve",
		names:    []string{"闸阀", "截止阀", "球阀", "止回阀", "蝶阀"},
		spec: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("DN%d PN%s", f.RandomInt([]int{15, 20, 25, 32, 50, 80, 100, 150}), f.RandomString([]string{"1.6", "2.5", "4.0", "16", "25"}))
		},
		units: []string{"个", "只", "台"},
	},
	{
		category: "valve.steam_trap",
		names:    []string{"疏水器", "疏水阀", "热动力疏水阀"},
		spec: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("DN%d PN%s", f.RandomInt([]int{15, 20, 25, 40}), f.RandomString([]string{"1.6", "2.5"}))
		},
		units: []string{"个", "只"},
	},
	{
		category: "bearing",
		names:    []string{"深沟球轴承", "圆锥滚子轴承", "调心球轴承"},
		spec: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("%d2%02d", f.RandomInt([]int{6, 3, 1}), f.Number(0, 20))
		},
		units: []string{"套", "个"},
	},
	{
		category: "flange",
		names:    []string{"板式平焊法兰", "带颈对焊法兰", "法兰盖"},
		spec: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("DN%d PN%d %s", f.RandomInt([]int{50, 80, 100, 200}), f.RandomInt([]int{10, 16, 25}), f.RandomString([]string{"Q235", "20#", "304"}))
		},
		units: []string{"片", "个"},
	},
	{
		category: "fastener",
		names:    []string{"六角螺栓", "双头螺柱", "六角螺母"},
		spec: func(f *gofakeit.Faker) string {
			return fmt.Sprintf("M%d×%d %s", f.RandomInt([]int{8, 10, 12, 16, 20}), f.RandomInt([]int{30, 50, 80, 100}), f.RandomString([]string{"8.8级", "4.8级", "304"}))
		},
		units: []string{"套", "个", "kg"},
	},
}

// Options параметры генерации
type Options struct {
	Seed int64
	// DuplicateRate доля записей, которые являются искаженными копиями уже созданных
	DuplicateRate float64
}

// Materials генерирует n записей с уникальными ID. Дубликаты отличаются
// регистром характеристик, пробелами и единицей измерения.
func Materials(n int, opts Options) []material.Record {
	f := gofakeit.New(opts.Seed)
	manufacturers := make([]string, 12)
	for i := range manufacturers {
		manufacturers[i] = f.Company()
	}

	records := make([]material.Record, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("SYN-%06d", i+1)
		if len(records) > 0 && f.Float64() < opts.DuplicateRate {
			src := records[f.Number(0, len(records)-1)]
			records = append(records, distort(f, id, src))
			continue
		}

		k := kinds[f.Number(0, len(kinds)-1)]
		rec := material.Record{
			ID:       id,
			Name:     f.RandomString(k.names),
			Spec:     k.spec(f),
			Unit:     f.RandomString(k.units),
			Category: k.category,
		}
		if f.Bool() {
			rec.Manufacturer = f.RandomString(manufacturers)
		}
		records = append(records, rec)
	}
	return records
}

func distort(f *gofakeit.Faker, id string, src material.Record) material.Record {
	dup := src
	dup.ID = id
	switch f.Number(0, 2) {
	case 0:
		dup.Spec = strings.ToLower(dup.Spec)
	case 1:
		dup.Spec = strings.ReplaceAll(dup.Spec, " ", "  ")
	default:
		dup.Spec = strings.ReplaceAll(dup.Spec, "DN", "DN ")
	}
	if f.Bool() {
		dup.Unit = ""
	}
	return dup
}
