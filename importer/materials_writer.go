package importer

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"mdmserver/internal/domain/material"
)

// MaterialsHeader заголовок выгрузки справочника, читается обратно MapHeaders
var MaterialsHeader = []string{"物料编码", "物料名称", "规格型号", "生产厂家", "计量单位", "物料分类"}

func materialRow(rec material.Record) []string {
	return []string{rec.ID, rec.Name, rec.Spec, rec.Manufacturer, rec.Unit, rec.Category}
}

// WriteMaterialsExcel записывает справочник в xlsx
func WriteMaterialsExcel(w io.Writer, records []material.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Materials"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	if err := sw.SetRow("A1", toCells(MaterialsHeader)); err != nil {
		return err
	}
	for i, rec := range records {
		cellRef, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cellRef, toCells(materialRow(rec))); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

// WriteMaterialsCSV записывает справочник в CSV (UTF-8 с BOM для Excel)
func WriteMaterialsCSV(w io.Writer, records []material.Record) error {
	if _, err := io.WriteString(w, "\xef\xbb\xbf"); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(MaterialsHeader); err != nil {
		return err
	}
	for _, rec := range records {
		if err := cw.Write(materialRow(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
