package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"mdmserver/internal/domain/material"
)

// ErrNameColumnNotFound в заголовке нет колонки с наименованием
var ErrNameColumnNotFound = errors.New("required column 'name' not found in headers")

// ErrNoDataRows в файле нет строк после заголовка
var ErrNoDataRows = errors.New("file is too short, expected at least header row and one data row")

// headerAliases варианты заголовков для каждого поля записи.
// Порядок полей важен: более специфичные проверяются раньше, чтобы
// "生产厂家名称" не попал в наименование.
var headerAliases = []struct {
	field   string
	aliases []string
}{
	{"id", []string{"物料编码", "编码", "编号", "代码", "код", "артикул", "code", "id"}},
	{material.FieldManufacturer, []string{"生产厂家", "制造商", "厂家", "厂商", "品牌", "производитель", "manufacturer", "brand"}},
	{material.FieldUnit, []string{"计量单位", "单位", "единица", "ед.", "unit", "uom"}},
	{material.FieldCategory, []string{"分类", "类别", "категория", "category"}},
	{material.FieldSpec, []string{"规格型号", "规格", "型号", "характеристик", "specification", "spec", "model"}},
	{material.FieldName, []string{"物料名称", "名称", "品名", "наименование", "name"}},
}

// ColumnMapping индекс колонки для каждого поля, -1 если колонки нет
type ColumnMapping map[string]int

// MapHeaders сопоставляет заголовки таблицы полям записи
func MapHeaders(headers []string) ColumnMapping {
	mapping := ColumnMapping{}
	for _, h := range headerAliases {
		mapping[h.field] = -1
	}

	for i, header := range headers {
		headerLower := strings.ToLower(strings.TrimSpace(header))
		if headerLower == "" {
			continue
		}
		for _, h := range headerAliases {
			if mapping[h.field] != -1 {
				continue
			}
			if matchesAlias(headerLower, h.aliases) {
				mapping[h.field] = i
				break
			}
		}
	}
	return mapping
}

// matchesAlias короткие латинские псевдонимы сравниваются целиком,
// остальные ищутся как подстрока
func matchesAlias(header string, aliases []string) bool {
	for _, alias := range aliases {
		if utf8.RuneCountInString(alias) <= 4 && isASCII(alias) {
			if header == alias {
				return true
			}
			continue
		}
		if strings.Contains(header, alias) {
			return true
		}
	}
	return false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// RowIssue строка, пропущенная при импорте
type RowIssue struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// MaterialsImport результат разбора файла справочника
type MaterialsImport struct {
	BatchID string            `json:"batch_id"`
	Records []material.Record `json:"records"`
	Skipped []RowIssue        `json:"skipped,omitempty"`
	Mapping ColumnMapping     `json:"mapping"`
}

// ParseMaterialsExcel разбирает первый лист xlsx-файла справочника МТР
func ParseMaterialsExcel(r io.Reader) (*MaterialsImport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return parseMaterialRows(rows)
}

// ParseMaterialsExcelFile разбирает xlsx-файл по пути
func ParseMaterialsExcelFile(filePath string) (*MaterialsImport, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return parseMaterialRows(rows)
}

// ParseMaterialsCSV разбирает CSV. Выгрузки из китайских ERP часто
// сохранены в GB18030, такие файлы перекодируются в UTF-8.
func ParseMaterialsCSV(r io.Reader) (*MaterialsImport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode CSV as GB18030: %w", err)
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return parseMaterialRows(rows)
}

func parseMaterialRows(rows [][]string) (*MaterialsImport, error) {
	if len(rows) < 2 {
		return nil, ErrNoDataRows
	}

	mapping := MapHeaders(rows[0])
	if mapping[material.FieldName] == -1 {
		return nil, ErrNameColumnNotFound
	}

	result := &MaterialsImport{
		BatchID: uuid.New().String(),
		Records: []material.Record{},
		Mapping: mapping,
	}
	seen := make(map[string]int)

	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		// Номер строки как в Excel: заголовок - первая строка
		rowNum := rowIdx + 1

		if isEmptyRow(row) {
			continue
		}

		rec := material.Record{
			ID:           cell(row, mapping["id"]),
			Name:         cell(row, mapping[material.FieldName]),
			Spec:         cell(row, mapping[material.FieldSpec]),
			Manufacturer: cell(row, mapping[material.FieldManufacturer]),
			Unit:         cell(row, mapping[material.FieldUnit]),
			Category:     cell(row, mapping[material.FieldCategory]),
		}

		if rec.Name == "" {
			result.Skipped = append(result.Skipped, RowIssue{Row: rowNum, Reason: "empty name"})
			continue
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("%s-%d", result.BatchID[:8], rowNum)
		}
		if first, dup := seen[rec.ID]; dup {
			result.Skipped = append(result.Skipped, RowIssue{
				Row:    rowNum,
				Reason: fmt.Sprintf("duplicate id %q, first seen in row %d", rec.ID, first),
			})
			continue
		}
		seen[rec.ID] = rowNum

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
