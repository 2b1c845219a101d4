package pptfill

import "strings"

// Category identifies one of the keyed data groups extracted from a workbook.
type Category string

const (
	CategoryText   Category = "text"
	CategoryDates  Category = "dates"
	CategoryTables Category = "tables"
	CategoryCharts Category = "charts"
	CategoryImages Category = "images"
)

// Table is a named tabular block: an ordered header list plus data rows.
type Table struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// TemplateData is the normalized result of extracting a workbook: flat
// key/value text and date entries, named tables, combo-chart definitions,
// and image paths. It is built once per run and read-only afterwards.
//
// Keys are resolved case-insensitively through a per-category index while
// the data maps keep the original casing. Entries must be added through
// the Add* methods so the data maps and the index never diverge.
type TemplateData struct {
	Text   map[string]string     `json:"text"`
	Dates  map[string]string     `json:"dates"`
	Tables map[string]*Table     `json:"tables"`
	Charts map[string]*ChartSpec `json:"charts"`
	Images map[string]string     `json:"images"`

	// index maps the upper-cased form of every stored key back to its
	// originally-cased key, one table per category.
	index map[Category]map[string]string
}

// NewTemplateData creates an empty TemplateData with all maps initialized.
func NewTemplateData() *TemplateData {
	return &TemplateData{
		Text:   make(map[string]string),
		Dates:  make(map[string]string),
		Tables: make(map[string]*Table),
		Charts: make(map[string]*ChartSpec),
		Images: make(map[string]string),
		index: map[Category]map[string]string{
			CategoryText:   {},
			CategoryDates:  {},
			CategoryTables: {},
			CategoryCharts: {},
			CategoryImages: {},
		},
	}
}

// AddText stores a text entry and indexes its key.
func (d *TemplateData) AddText(key, value string) {
	d.Text[key] = value
	d.indexKey(CategoryText, key)
}

// AddDate stores a date entry (already formatted) and indexes its key.
func (d *TemplateData) AddDate(key, value string) {
	d.Dates[key] = value
	d.indexKey(CategoryDates, key)
}

// AddTable stores a named table and indexes its key.
func (d *TemplateData) AddTable(key string, t *Table) {
	d.Tables[key] = t
	d.indexKey(CategoryTables, key)
}

// AddChart stores a chart definition and indexes its key.
func (d *TemplateData) AddChart(key string, c *ChartSpec) {
	d.Charts[key] = c
	d.indexKey(CategoryCharts, key)
}

// AddImage stores an image path and indexes its key.
func (d *TemplateData) AddImage(key, path string) {
	d.Images[key] = path
	d.indexKey(CategoryImages, key)
}

func (d *TemplateData) indexKey(cat Category, key string) {
	d.index[cat][strings.ToUpper(key)] = key
}

// lookupKey resolves a marker identifier to the originally-cased key of
// the category: exact match first, then the case-folded index.
func (d *TemplateData) lookupKey(cat Category, ident string, present func(string) bool) (string, bool) {
	if present(ident) {
		return ident, true
	}
	orig, ok := d.index[cat][strings.ToUpper(ident)]
	if !ok || !present(orig) {
		return "", false
	}
	return orig, true
}

// ResolveText returns the text value for a marker identifier.
func (d *TemplateData) ResolveText(ident string) (string, bool) {
	key, ok := d.lookupKey(CategoryText, ident, func(k string) bool { _, ok := d.Text[k]; return ok })
	if !ok {
		return "", false
	}
	return d.Text[key], true
}

// ResolveDate returns the formatted date value for a marker identifier.
func (d *TemplateData) ResolveDate(ident string) (string, bool) {
	key, ok := d.lookupKey(CategoryDates, ident, func(k string) bool { _, ok := d.Dates[k]; return ok })
	if !ok {
		return "", false
	}
	return d.Dates[key], true
}

// ResolveTable returns the table for a marker identifier.
func (d *TemplateData) ResolveTable(ident string) (*Table, bool) {
	key, ok := d.lookupKey(CategoryTables, ident, func(k string) bool { _, ok := d.Tables[k]; return ok })
	if !ok {
		return nil, false
	}
	return d.Tables[key], true
}

// ResolveChart returns the chart definition for a marker identifier.
func (d *TemplateData) ResolveChart(ident string) (*ChartSpec, bool) {
	key, ok := d.lookupKey(CategoryCharts, ident, func(k string) bool { _, ok := d.Charts[k]; return ok })
	if !ok {
		return nil, false
	}
	return d.Charts[key], true
}

// ResolveImage returns the image path for a marker identifier.
func (d *TemplateData) ResolveImage(ident string) (string, bool) {
	key, ok := d.lookupKey(CategoryImages, ident, func(k string) bool { _, ok := d.Images[k]; return ok })
	if !ok {
		return "", false
	}
	return d.Images[key], true
}
