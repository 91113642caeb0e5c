package service

import (
	"fmt"

	"github.com/mdrrmo4516/PIODURAN-PROCUREMENT-FINAL/internal/procurement/entity"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Purchases"

// ExportXLSX lays out the interchange columns in a workbook with a styled
// header row.
func ExportXLSX(purchases []entity.Purchase) (*excelize.File, error) {
	if len(purchases) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		f.Close()
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for i, h := range CSVHeader {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(xlsxSheet, cell, h)
		f.SetCellStyle(xlsxSheet, cell, cell, headerStyle)
	}

	amountCol, _ := excelize.ColumnNumberToName(17)
	for r, p := range purchases {
		row, err := csvRow(p)
		if err != nil {
			f.Close()
			return nil, err
		}
		for i, v := range row {
			col, _ := excelize.ColumnNumberToName(i + 1)
			cell := fmt.Sprintf("%s%d", col, r+2)
			if col == amountCol {
				f.SetCellValue(xlsxSheet, cell, p.TotalAmount)
				continue
			}
			f.SetCellValue(xlsxSheet, cell, v)
		}
	}

	widths := []float64{14, 14, 14, 15, 14, 36, 12, 14, 36, 11, 24, 20, 24, 20, 24, 20, 14, 48, 24}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(xlsxSheet, col, col, w)
	}
	f.SetPanes(xlsxSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	return f, nil
}
