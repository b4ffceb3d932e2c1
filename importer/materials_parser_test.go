package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"

	"mdmserver/internal/domain/material"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestMapHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    map[string]int
	}{
		{
			name:    "Chinese ERP export",
			headers: []string{"物料编码", "物料名称", "规格型号", "生产厂家", "计量单位", "分类"},
			want: map[string]int{
				"id": 0, material.FieldName: 1, material.FieldSpec: 2,
				material.FieldManufacturer: 3, material.FieldUnit: 4, material.FieldCategory: 5,
			},
		},
		{
			name:    "short Chinese headers",
			headers: []string{"名称", "规格", "单位"},
			want: map[string]int{
				"id": -1, material.FieldName: 0, material.FieldSpec: 1,
				material.FieldManufacturer: -1, material.FieldUnit: 2, material.FieldCategory: -1,
			},
		},
		{
			name:    "manufacturer name is not item name",
			headers: []string{"生产厂家名称", "名称"},
			want: map[string]int{
				"id": -1, material.FieldName: 1, material.FieldSpec: -1,
				material.FieldManufacturer: 0, material.FieldUnit: -1, material.FieldCategory: -1,
			},
		},
		{
			name:    "English headers",
			headers: []string{"ID", "Name", "Spec", "Unit", "Brand"},
			want: map[string]int{
				"id": 0, material.FieldName: 1, material.FieldSpec: 2,
				material.FieldManufacturer: 4, material.FieldUnit: 3, material.FieldCategory: -1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ColumnMapping(tt.want), MapHeaders(tt.headers))
		})
	}
}

func TestParseMaterialsExcel(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{"物料编码", "物料名称", "规格型号", "生产厂家", "计量单位"},
		{"M-001", "疏水器", "DN25 PN1.6", "正泰", "个"},
		{"", "板式平焊法兰", "DN100 PN16", "", "片"},
		{},
		{"M-003", "", "6205", "", ""},
		{"M-001", "闸阀", "DN50", "", ""},
	})

	res, err := ParseMaterialsExcel(buf)
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, material.Record{ID: "M-001", Name: "疏水器", Spec: "DN25 PN1.6", Manufacturer: "正泰", Unit: "个"}, res.Records[0])
	assert.Equal(t, "板式平焊法兰", res.Records[1].Name)
	assert.True(t, strings.HasSuffix(res.Records[1].ID, "-3"), "generated id %q must carry the row number", res.Records[1].ID)
	assert.NotEmpty(t, res.BatchID)

	require.Len(t, res.Skipped, 2)
	assert.Equal(t, 5, res.Skipped[0].Row)
	assert.Equal(t, "empty name", res.Skipped[0].Reason)
	assert.Equal(t, 6, res.Skipped[1].Row)
	assert.Contains(t, res.Skipped[1].Reason, "duplicate id")

	assert.NoError(t, material.ValidateCorpus(res.Records))
}

func TestParseMaterialsExcel_Errors(t *testing.T) {
	_, err := ParseMaterialsExcel(bytes.NewReader([]byte("not an excel file")))
	assert.Error(t, err)

	onlyHeader := buildWorkbook(t, [][]interface{}{{"名称", "规格"}})
	_, err = ParseMaterialsExcel(onlyHeader)
	assert.ErrorIs(t, err, ErrNoDataRows)

	noName := buildWorkbook(t, [][]interface{}{{"规格", "单位"}, {"DN25", "个"}})
	_, err = ParseMaterialsExcel(noName)
	assert.ErrorIs(t, err, ErrNameColumnNotFound)
}

func TestParseMaterialsCSV(t *testing.T) {
	t.Run("UTF-8 with BOM", func(t *testing.T) {
		data := "\xef\xbb\xbf编码,名称,规格\n1,疏水器,DN25 PN1.6\n"
		res, err := ParseMaterialsCSV(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "1", res.Records[0].ID)
		assert.Equal(t, "DN25 PN1.6", res.Records[0].Spec)
	})

	t.Run("GB18030", func(t *testing.T) {
		encoded, err := simplifiedchinese.GB18030.NewEncoder().String("编码,名称,规格\n7,深沟球轴承,6205\n")
		require.NoError(t, err)

		res, err := ParseMaterialsCSV(strings.NewReader(encoded))
		require.NoError(t, err)
		require.Len(t, res.Records, 1)
		assert.Equal(t, "深沟球轴承", res.Records[0].Name)
	})
}

func TestWriteMaterials_RoundTrip(t *testing.T) {
	records := []material.Record{
		{ID: "M1", Name: "闸阀", Spec: "DN50 PN16", Manufacturer: "苏阀", Unit: "个", Category: "valve.gate"},
		{ID: "M2", Name: "深沟球轴承", Spec: "6205"},
	}

	var xlsx bytes.Buffer
	require.NoError(t, WriteMaterialsExcel(&xlsx, records))
	fromExcel, err := ParseMaterialsExcel(&xlsx)
	require.NoError(t, err)
	assert.Equal(t, records, fromExcel.Records)

	var csvBuf bytes.Buffer
	require.NoError(t, WriteMaterialsCSV(&csvBuf, records))
	fromCSV, err := ParseMaterialsCSV(&csvBuf)
	require.NoError(t, err)
	assert.Equal(t, records, fromCSV.Records)
}
