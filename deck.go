package pptfill

// SeriesRole is the rendering role assigned to a chart series after a
// data update.
type SeriesRole int

const (
	// SeriesColumn renders as clustered columns on the primary axis.
	SeriesColumn SeriesRole = iota
	// SeriesLine renders as a line on the secondary axis.
	SeriesLine
)

func (r SeriesRole) String() string {
	if r == SeriesLine {
		return "line"
	}
	return "column"
}

// Deck abstracts the slide-deck host. Reads build in-memory shape trees;
// mutations go through discrete write calls addressed by ShapeRef, so the
// substitution engine never holds live host objects and can be exercised
// against a fake host.
//
// All calls are blocking; the engine issues them from a single goroutine.
type Deck interface {
	// SlideCount returns the number of slides in the deck.
	SlideCount() int

	// Slide reads the shape tree of the 1-indexed slide.
	Slide(num int) (*Slide, error)

	// SetShapeText replaces the text-frame content of a shape.
	SetShapeText(ref ShapeRef, text string) error

	// SetTableCell replaces the text of one table cell (1-indexed).
	SetTableCell(ref ShapeRef, row, col int, text string) error

	// SetChartTitle replaces a chart's title text.
	SetChartTitle(ref ShapeRef, title string) error

	// ResetChartData clears every cell of the chart's backing data table.
	ResetChartData(ref ShapeRef) error

	// SetChartCell writes one cell of the chart's backing data table
	// (1-indexed row and column).
	SetChartCell(ref ShapeRef, row, col int, value any) error

	// SetSeriesRole assigns the rendering role of the 1-indexed series.
	// The series collection order must match the data-table write order;
	// the host must not re-sort it.
	SetSeriesRole(ref ShapeRef, series int, role SeriesRole) error

	// ReplaceImage deletes the image shape at ref and inserts the image
	// file at path with the given bounding box.
	ReplaceImage(ref ShapeRef, path string, box Box) error

	// SaveAs persists the deck under path.
	SaveAs(path string) error

	// Close releases the host resources for this deck.
	Close() error
}

// DeckHost opens decks by path.
type DeckHost interface {
	Open(path string) (Deck, error)
}
