package pptfill

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/xuri/excelize/v2"
)

// Sheet names recognized by the loader. Matching is case-insensitive.
const (
	sheetText    = "text"
	sheetDates   = "dates"
	sheetCharts  = "combo_charts"
	sheetRevenue = "revenue_data"
	sheetTables  = "tables"
	sheetImages  = "images"
)

// LoadWorkbook parses the spreadsheet at path into a TemplateData.
//
// Only a failure to open or read the workbook is fatal. Sheets with an
// unexpected shape and rows missing their key are logged and skipped, so
// a partially filled template still loads.
func LoadWorkbook(path string, opts ...Option) (*TemplateData, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %q: %w", path, err)
	}
	defer f.Close()
	return readWorkbook(f, o.logger)
}

// readWorkbook extracts TemplateData from an opened workbook, dispatching
// each sheet by name.
func readWorkbook(f *excelize.File, logger hclog.Logger) (*TemplateData, error) {
	data := NewTemplateData()
	for _, sheet := range f.GetSheetList() {
		var err error
		switch strings.ToLower(sheet) {
		case sheetText:
			err = loadTextSheet(f, sheet, data, logger)
		case sheetDates:
			err = loadDatesSheet(f, sheet, data, logger)
		case sheetCharts:
			err = loadComboChartsSheet(f, sheet, data, logger)
		case sheetRevenue:
			err = loadRevenueSheet(f, sheet, data)
		case sheetTables:
			err = loadTablesSheet(f, sheet, data)
		case sheetImages:
			err = loadImagesSheet(f, sheet, data)
		default:
			logger.Debug("ignoring unrecognized sheet", "sheet", sheet)
		}
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
	}
	return data, nil
}

// loadTextSheet reads key/value rows. The header row must contain columns
// named "key" and "value" (case-insensitive); without them the whole
// sheet is skipped. Values in percent-formatted cells are rendered as
// whole percentages.
func loadTextSheet(f *excelize.File, sheet string, data *TemplateData, logger hclog.Logger) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	keyCol, valueCol := -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "key":
			keyCol = i
		case "value":
			valueCol = i
		}
	}
	if keyCol < 0 || valueCol < 0 {
		logger.Warn("text sheet missing key/value columns, skipping", "sheet", sheet)
		return nil
	}

	for r := 1; r < len(rows); r++ {
		row := rows[r]
		key := strings.TrimSpace(cellAt(row, keyCol))
		if key == "" {
			continue
		}
		value := strings.TrimSpace(cellAt(row, valueCol))
		cell, err := excelize.CoordinatesToCellName(valueCol+1, r+1)
		if err == nil && isPercentCell(f, sheet, cell) {
			value = percentValue(f, sheet, cell, value)
		}
		data.AddText(key, value)
		logger.Debug("text entry", "key", key, "value", value)
	}
	return nil
}

// isPercentCell reports whether the cell's number format contains a
// percent sign (custom format) or is one of the builtin percent formats.
func isPercentCell(f *excelize.File, sheet, cell string) bool {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return strings.Contains(*style.CustomNumFmt, "%")
	}
	// 9 is "0%", 10 is "0.00%"
	return style.NumFmt == 9 || style.NumFmt == 10
}

// percentValue renders a percent-formatted cell as a whole percentage:
// numeric raw values are scaled by 100 and rounded; string values have
// their digits extracted and rounded; strings with no numeric content get
// a trailing "%" unless they already carry one.
func percentValue(f *excelize.File, sheet, cell, display string) string {
	if !isStringCell(f, sheet, cell) {
		raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err == nil {
			if n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
				// n*100 can land just below a half boundary from binary
				// representation (0.255*100 is 25.499...); snap to eight
				// decimals before rounding.
				pct := math.Round(n*100*1e8) / 1e8
				return fmt.Sprintf("%d%%", int64(math.Round(pct)))
			}
		}
	}

	s := strings.TrimSpace(display)
	if s == "" {
		return s
	}
	if digits := extractDigits(s); digits != "" {
		if n, err := strconv.ParseFloat(digits, 64); err == nil {
			return fmt.Sprintf("%d%%", int64(math.Round(n)))
		}
	}
	if !strings.HasSuffix(s, "%") {
		return s + "%"
	}
	return s
}

func isStringCell(f *excelize.File, sheet, cell string) bool {
	ct, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false
	}
	return ct == excelize.CellTypeSharedString || ct == excelize.CellTypeInlineString
}

// extractDigits keeps only digit and minus characters of s.
func extractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// loadDatesSheet reads key/date rows. Date-formatted numeric cells are
// rendered as YYYY-MM-DD; string cells are trimmed as-is; anything else
// is skipped.
func loadDatesSheet(f *excelize.File, sheet string, data *TemplateData, logger hclog.Logger) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	for r := 1; r < len(rows); r++ {
		key := strings.TrimSpace(cellAt(rows[r], 0))
		if key == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(2, r+1)
		if err != nil {
			continue
		}
		value, ok := dateCellValue(f, sheet, cell)
		if !ok {
			logger.Debug("skipping non-date cell", "sheet", sheet, "cell", cell)
			continue
		}
		data.AddDate(key, value)
	}
	return nil
}

// dateCellValue returns a YYYY-MM-DD string for a date cell, the trimmed
// text for a string cell, and ok=false for anything else.
func dateCellValue(f *excelize.File, sheet, cell string) (string, bool) {
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	if isStringCell(f, sheet, cell) {
		return raw, true
	}

	ct, err := f.GetCellType(sheet, cell)
	if err == nil && ct == excelize.CellTypeDate {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}

	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || !isDateStyle(f, sheet, cell) {
		return "", false
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// isDateStyle reports whether the cell carries one of the builtin date
// number formats or a custom format with date codes.
func isDateStyle(f *excelize.File, sheet, cell string) bool {
	styleID, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return strings.ContainsAny(strings.ToLower(*style.CustomNumFmt), "ymd")
	}
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22:
		return true
	case style.NumFmt >= 27 && style.NumFmt <= 36:
		return true
	case style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	}
	return false
}

// comboChartColumns is the fixed column layout of the combo_charts sheet:
// chart_name, category, series_type, series_name, value, chart_type, title.
const (
	colChartName = iota
	colCategory
	colSeriesType
	colSeriesName
	colValue
	colChartType
	colTitle
)

// loadComboChartsSheet groups rows by chart name into ChartSpec values.
// The first non-empty chart_type/title seen for a name win; the default
// type is "combo". Non-numeric values coerce to 0.
func loadComboChartsSheet(f *excelize.File, sheet string, data *TemplateData, logger hclog.Logger) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}

	type accum struct {
		spec     *ChartSpec
		typeSet  bool
		titleSet bool
	}
	charts := make(map[string]*accum)
	var order []string

	for r := 1; r < len(rows); r++ {
		row := rows[r]
		name := strings.TrimSpace(cellAt(row, colChartName))
		if name == "" {
			continue
		}
		category := strings.TrimSpace(cellAt(row, colCategory))
		seriesType := strings.TrimSpace(cellAt(row, colSeriesType))
		seriesName := strings.TrimSpace(cellAt(row, colSeriesName))
		valueStr := strings.TrimSpace(cellAt(row, colValue))
		chartType := strings.TrimSpace(cellAt(row, colChartType))
		title := strings.TrimSpace(cellAt(row, colTitle))

		a, ok := charts[name]
		if !ok {
			a = &accum{spec: &ChartSpec{Type: "combo"}}
			charts[name] = a
			order = append(order, name)
		}
		if chartType != "" && !a.typeSet {
			a.spec.Type = chartType
			a.typeSet = true
		}
		if title != "" && !a.titleSet {
			a.spec.Title = title
			a.titleSet = true
		}
		if category != "" {
			a.spec.addCategory(category)
		}

		if seriesType == "" || seriesName == "" || valueStr == "" {
			continue
		}
		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			value = 0
		}
		point := SeriesPoint{Name: seriesName, Category: category, Value: value}
		switch strings.ToLower(seriesType) {
		case "column":
			a.spec.ColumnSeries = append(a.spec.ColumnSeries, point)
		case "line":
			a.spec.LineSeries = append(a.spec.LineSeries, point)
		default:
			logger.Debug("unknown series type", "sheet", sheet, "row", r+1, "series_type", seriesType)
		}
	}

	for _, name := range order {
		data.AddChart(name, charts[name].spec)
	}
	return nil
}

// loadRevenueSheet stores the whole sheet as one fixed-name table:
// header cells in order, then every data row with at least one non-empty
// cell.
func loadRevenueSheet(f *excelize.File, sheet string, data *TemplateData) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	table := &Table{}
	if len(rows) > 0 {
		for _, h := range rows[0] {
			if strings.TrimSpace(h) != "" {
				table.Headers = append(table.Headers, h)
			}
		}
	}
	for r := 1; r < len(rows); r++ {
		rowData := append([]string(nil), rows[r]...)
		if anyNonEmpty(rowData) {
			table.Rows = append(table.Rows, rowData)
		}
	}
	data.AddTable(sheetRevenue, table)
	return nil
}

// loadTablesSheet reads the multi-table layout: a "table_name" marker row
// starts a new named table, a "header" row sets its headers, every other
// non-empty row is data. A table is flushed when the next marker row
// arrives (or at the end), and only if it has headers.
func loadTablesSheet(f *excelize.File, sheet string, data *TemplateData) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}

	var name string
	var table *Table
	flush := func() {
		if name != "" && table != nil && len(table.Headers) > 0 {
			data.AddTable(name, table)
		}
	}

	for _, row := range rows {
		first := strings.TrimSpace(cellAt(row, 0))
		if first == "" {
			continue
		}
		switch strings.ToLower(first) {
		case "table_name":
			flush()
			name = strings.TrimSpace(cellAt(row, 1))
			table = &Table{}
		case "header":
			if table == nil {
				continue
			}
			table.Headers = nil
			for _, c := range row[1:] {
				if strings.TrimSpace(c) != "" {
					table.Headers = append(table.Headers, strings.TrimSpace(c))
				}
			}
		default:
			if table == nil {
				continue
			}
			rowData := make([]string, len(row))
			for i, c := range row {
				rowData[i] = strings.TrimSpace(c)
			}
			if anyNonEmpty(rowData) {
				table.Rows = append(table.Rows, rowData)
			}
		}
	}
	flush()
	return nil
}

// loadImagesSheet reads key/path rows; both cells must be non-empty.
func loadImagesSheet(f *excelize.File, sheet string, data *TemplateData) error {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	for r := 1; r < len(rows); r++ {
		key := strings.TrimSpace(cellAt(rows[r], 0))
		path := strings.TrimSpace(cellAt(rows[r], 1))
		if key == "" || path == "" {
			continue
		}
		data.AddImage(key, path)
	}
	return nil
}

// cellAt returns row[i] or "" when the row is shorter.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func anyNonEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}
