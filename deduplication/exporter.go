package deduplication

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mdmserver/internal/domain/material"
)

// ExportFormat формат выгрузки кластеров
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatCSV   ExportFormat = "csv"
	FormatExcel ExportFormat = "xlsx"
)

// ParseFormat разбирает формат из параметра запроса, по умолчанию xlsx
func ParseFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatExcel, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType MIME-тип выгрузки
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// ExportRow одна строка выгрузки: участник кластера
type ExportRow struct {
	ClusterID         string  `json:"cluster_id"`
	RecordID          string  `json:"record_id"`
	Representative    bool    `json:"representative"`
	Name              string  `json:"name"`
	Spec              string  `json:"spec"`
	Manufacturer      string  `json:"manufacturer"`
	Unit              string  `json:"unit"`
	Category          string  `json:"category"`
	MatchToMaster     float64 `json:"match_to_representative"`
	AverageSimilarity float64 `json:"average_similarity"`
	ConfidenceLevel   string  `json:"confidence_level"`
	RecommendedAction string  `json:"recommended_action"`
	Conflicts         string  `json:"conflicts"`
}

var exportHeaders = []string{
	"Кластер", "ID записи", "Эталон", "Наименование", "Характеристики",
	"Производитель", "Ед. изм.", "Категория", "Сходство с эталоном",
	"Средняя схожесть", "Уверенность", "Действие", "Конфликты",
}

func (r ExportRow) values() []string {
	return []string{
		r.ClusterID,
		r.RecordID,
		fmt.Sprintf("%t", r.Representative),
		r.Name,
		r.Spec,
		r.Manufacturer,
		r.Unit,
		r.Category,
		fmt.Sprintf("%.4f", r.MatchToMaster),
		fmt.Sprintf("%.4f", r.AverageSimilarity),
		r.ConfidenceLevel,
		r.RecommendedAction,
		r.Conflicts,
	}
}

// BuildRows разворачивает кластеры в строки. records - исходный пакет,
// по нему восстанавливаются поля участников.
func BuildRows(clusters []material.DedupCluster, records []material.Record) []ExportRow {
	byID := make(map[string]material.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	weights := DefaultDimensionWeights()
	var rows []ExportRow
	for _, c := range clusters {
		master := byID[c.RepresentativeID]

		members := make([]material.Record, 0, len(c.MemberIDs))
		for _, id := range c.MemberIDs {
			members = append(members, byID[id])
		}
		conflicts := formatConflicts(ConflictDetails(members))

		for _, rec := range members {
			row := ExportRow{
				ClusterID:         c.ClusterID,
				RecordID:          rec.ID,
				Representative:    rec.ID == c.RepresentativeID,
				Name:              rec.Name,
				Spec:              rec.Spec,
				Manufacturer:      rec.Manufacturer,
				Unit:              rec.Unit,
				Category:          rec.Category,
				AverageSimilarity: c.AverageSimilarity,
				ConfidenceLevel:   string(c.ConfidenceLevel),
				RecommendedAction: string(c.RecommendedAction),
				Conflicts:         conflicts,
			}
			if row.Representative {
				row.MatchToMaster = 1
			} else {
				row.MatchToMaster = CompareRecords(master, rec, weights).Overall
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func formatConflicts(conflicts []FieldConflict) string {
	parts := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		mark := ""
		if c.Equivalent {
			mark = " (equivalent)"
		}
		parts = append(parts, fmt.Sprintf("%s: %s%s", c.Field, strings.Join(c.Values, " | "), mark))
	}
	return strings.Join(parts, "; ")
}

// Export пишет кластеры в w в заданном формате
func Export(w io.Writer, format ExportFormat, clusters []material.DedupCluster, records []material.Record) error {
	rows := BuildRows(clusters, records)
	switch format {
	case FormatJSON:
		return ExportJSON(w, rows, Summarize(clusters))
	case FormatCSV:
		return ExportCSV(w, rows)
	case FormatExcel:
		return ExportExcel(w, rows, Summarize(clusters))
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// ExportJSON экспортирует строки и сводку в JSON
func ExportJSON(w io.Writer, rows []ExportRow, summary Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	result := map[string]interface{}{
		"exported_at": time.Now().Format(time.RFC3339),
		"total":       len(rows),
		"summary":     summary,
		"rows":        rows,
	}
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ExportCSV экспортирует строки в CSV
func ExportCSV(w io.Writer, rows []ExportRow) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(exportHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.values()); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

const (
	clustersSheet = "Кластеры"
	summarySheet  = "Сводка"
)

// ExportExcel экспортирует строки в книгу Excel с листом сводки
func ExportExcel(w io.Writer, rows []ExportRow, summary Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", clustersSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	// Стиль заголовков
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(clustersSheet, cell, header)
		f.SetCellStyle(clustersSheet, cell, cell, headerStyle)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.ClusterID, row.RecordID, row.Representative, row.Name, row.Spec,
			row.Manufacturer, row.Unit, row.Category, row.MatchToMaster,
			row.AverageSimilarity, row.ConfidenceLevel, row.RecommendedAction, row.Conflicts,
		}
		if err := f.SetSheetRow(clustersSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	for i := range exportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(clustersSheet, col, col, 18)
	}

	if err := writeSummarySheet(f, summary); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, s Summary) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	lines := [][]interface{}{
		{"Всего записей", s.TotalRecords},
		{"Всего кластеров", s.TotalClusters},
		{"Кластеров дубликатов", s.DuplicateClusters},
		{"Одиночных записей", s.Singletons},
		{"Избыточных записей", s.RedundantRecords},
		{"Средняя схожесть", s.AverageSimilarity},
	}

	actions := make([]string, 0, len(s.ByAction))
	for a := range s.ByAction {
		actions = append(actions, string(a))
	}
	sort.Strings(actions)
	for _, a := range actions {
		lines = append(lines, []interface{}{"Действие: " + a, s.ByAction[material.MergeAction(a)]})
	}

	for i, line := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &line); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	f.SetColWidth(summarySheet, "A", "A", 28)
	return nil
}
