package render

import (
	"BikeSharing/src/processor"
	"BikeSharing/src/report"
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "summary"

// Workbook 把报表中每个面板的数据写入单独的工作表
func Workbook(rep report.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	summary := [][]interface{}{
		{"range_start", rep.Range.Start.Format(processor.DateLayout)},
		{"range_end", rep.Range.End.Format(processor.DateLayout)},
		{"rows", rep.Summary.Rows},
		{processor.ColCasual, rep.Summary.Casual},
		{processor.ColRegistered, rep.Summary.Registered},
		{processor.ColTotal, rep.Summary.Total},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, p := range rep.Panels {
		if err := writePanel(f, p); err != nil {
			f.Close()
			return nil, fmt.Errorf("sheet %s: %w", p.ID, err)
		}
	}
	return f, nil
}

func writePanel(f *excelize.File, p report.Panel) error {
	if _, err := f.NewSheet(p.ID); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(p.Table.Columns)+1)
	header = append(header, "label")
	for _, c := range p.Table.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(p.ID, "A1", &header); err != nil {
		return err
	}

	for i, row := range p.Table.Rows {
		values := make([]interface{}, 0, len(row)+1)
		if i < len(p.Table.Labels) {
			values = append(values, p.Table.Labels[i])
		} else {
			values = append(values, "")
		}
		for _, v := range row {
			if math.IsNaN(v) {
				values = append(values, nil)
				continue
			}
			values = append(values, v)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(p.ID, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// WriteWorkbook 生成工作簿并写入 w
func WriteWorkbook(w io.Writer, rep report.Report) error {
	f, err := Workbook(rep)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}
