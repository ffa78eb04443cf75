package reports

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding an XLSX export.
const SheetName = "Reporte"

// Filename is the download name for rep with extension ext ("csv", "xlsx", "pdf").
func Filename(rep *Report, ext string) string {
	title := "datos"
	if rep != nil && rep.Title != "" {
		title = rep.Title
	}
	return "reporte_" + title + "." + ext
}

// WriteCSV writes rep as ';'-separated text: a plain header line followed by
// one line per row with every value double-quoted.
func WriteCSV(w io.Writer, rep *Report) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(rep.Columns, ";")); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		for i, value := range row {
			if i > 0 {
				if err := bw.WriteByte(';'); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(`"` + strings.ReplaceAll(value, `"`, `""`) + `"`); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteXLSX writes rep as a workbook with a single "Reporte" sheet.
func WriteXLSX(w io.Writer, rep *Report) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}
	if err := setRow(f, 1, rep.Columns); err != nil {
		return err
	}
	for i, row := range rep.Rows {
		if err := setRow(f, i+2, row); err != nil {
			return err
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return err
	}
	return f.Write(w)
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}
