package pptfill

// SeriesPoint is one data point of a chart series.
type SeriesPoint struct {
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// ChartSpec describes a combo chart: a column-series group on the primary
// axis plus a line-series group on a secondary axis, sharing one ordered
// category list.
type ChartSpec struct {
	Type         string        `json:"type"`
	Title        string        `json:"title"`
	Categories   []string      `json:"categories"`
	ColumnSeries []SeriesPoint `json:"column_series"`
	LineSeries   []SeriesPoint `json:"line_series"`
}

// addCategory appends a category unless it is already present, keeping
// first-seen order.
func (c *ChartSpec) addCategory(category string) {
	for _, existing := range c.Categories {
		if existing == category {
			return
		}
	}
	c.Categories = append(c.Categories, category)
}

// distinctSeriesNames returns the series names of points in first-seen
// order. The order is load-bearing: the chart data table is written and
// the series rendering roles are assigned in this same order.
func distinctSeriesNames(points []SeriesPoint) []string {
	var names []string
	seen := make(map[string]bool, len(points))
	for _, p := range points {
		if seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		names = append(names, p.Name)
	}
	return names
}

// seriesValue returns the value of the point matching (name, category),
// or 0 when no point matches.
func seriesValue(points []SeriesPoint, name, category string) float64 {
	for _, p := range points {
		if p.Name == name && p.Category == category {
			return p.Value
		}
	}
	return 0
}
