package pptfill

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Filler orchestrates template application: it walks a deck's shape
// trees, substitutes markers against a TemplateData, and persists the
// result with the save retry policy.
type Filler struct {
	opts *Options
}

// NewFiller creates a Filler with the given options.
func NewFiller(opts ...Option) *Filler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.terminator == nil {
		o.terminator = NewProcessTerminator(o.logger)
	}
	return &Filler{opts: o}
}

// Result reports the outcome of a template application run.
type Result struct {
	// Saved is false when the save retry budget was exhausted.
	Saved bool
	// SavedPath is the path the deck was actually written to; it differs
	// from the requested output path when the fallback filename was used.
	SavedPath string
	// Attempts is the number of save attempts consumed.
	Attempts int
	// Issues aggregates recoverable failures that were logged and
	// skipped during the run. Nil when the run was clean.
	Issues error
}

// runState accumulates per-run diagnostics.
type runState struct {
	issues *multierror.Error
}

// ApplyTemplate opens the deck at deckPath, replaces every resolvable
// marker with values from data, and saves the result. The output path
// defaults to deckPath; WithOutputPath and WithPages override the target
// and the slide subset.
//
// Fatal conditions (deck cannot be opened, output directory cannot be
// created) return an error. A save that exhausts its retries is reported
// through Result.Saved, not an error. Unresolved markers are left
// verbatim.
func ApplyTemplate(host DeckHost, deckPath string, data *TemplateData, opts ...Option) (*Result, error) {
	return NewFiller(opts...).Apply(host, deckPath, data)
}

// Apply runs the substitution pipeline against one deck. See ApplyTemplate.
func (f *Filler) Apply(host DeckHost, deckPath string, data *TemplateData) (*Result, error) {
	o := f.opts

	if !o.fileExists(deckPath) {
		return nil, fmt.Errorf("deck %q does not exist", deckPath)
	}

	out := o.outputPath
	if out == "" {
		out = deckPath
	}
	if dir := filepath.Dir(out); dir != "" && dir != "." {
		if err := o.mkdirAll(dir); err != nil {
			return nil, fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}

	deck, err := host.Open(deckPath)
	if err != nil {
		return nil, fmt.Errorf("open deck %q: %w", deckPath, err)
	}
	defer deck.Close()

	run := &runState{}
	f.processDeck(deck, data, run)

	savedPath, attempts, saveErr := safeSave(deck, out, o)
	res := &Result{
		Saved:     saveErr == nil,
		SavedPath: savedPath,
		Attempts:  attempts,
		Issues:    run.issues.ErrorOrNil(),
	}
	if saveErr != nil {
		o.logger.Error("deck not saved", "path", out, "error", saveErr)
	}
	return res, nil
}

// processDeck walks the selected slides. A slide that cannot be read is
// reported and skipped; it never aborts the run.
func (f *Filler) processDeck(deck Deck, data *TemplateData, run *runState) {
	o := f.opts
	total := deck.SlideCount()

	pages := o.pages
	if len(pages) == 0 {
		pages = make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
	}

	for _, num := range pages {
		if num < 1 || num > total {
			o.logger.Warn("skipping slide number out of range", "slide", num, "total", total)
			continue
		}
		slide, err := deck.Slide(num)
		if err != nil {
			f.report(run, ShapeRef{Slide: num}, fmt.Errorf("read slide %d: %w", num, err))
			continue
		}
		if o.logger.IsDebug() {
			o.logger.Debug("slide content", "dump", DescribeSlide(slide))
		}
		for _, sh := range slide.Shapes {
			f.processShape(deck, sh, data, run)
		}
	}
}

// processShape dispatches a shape by kind. Shapes of unhandled kinds
// still go through text processing, which no-ops without a text frame.
func (f *Filler) processShape(deck Deck, sh *Shape, data *TemplateData, run *runState) {
	for _, l := range f.opts.listeners {
		l.ShapeVisited(sh.Ref, sh.Kind)
	}
	switch sh.Kind {
	case KindGroup:
		f.processGroup(deck, sh, data, run)
	case KindTable:
		f.processTable(deck, sh, data, run)
	case KindChart:
		f.processChart(deck, sh, data, run)
	case KindImage:
		f.processImage(deck, sh, data, run)
	default:
		f.processText(deck, sh, data, run)
	}
}

// processGroup handles a group's own text frame first, then dispatches
// each member by its own kind. Nested groups recurse.
func (f *Filler) processGroup(deck Deck, sh *Shape, data *TemplateData, run *runState) {
	if sh.HasText {
		f.processText(deck, sh, data, run)
	}
	for _, child := range sh.Children {
		f.processShape(deck, child, data, run)
	}
}

// processText substitutes markers in a shape's text frame, writing back
// only when the text actually changed.
func (f *Filler) processText(deck Deck, sh *Shape, data *TemplateData, run *runState) {
	if !sh.HasText || sh.Text == "" {
		return
	}
	replaced := f.substitute(sh.Ref, sh.Text, data)
	if replaced == sh.Text {
		return
	}
	if err := deck.SetShapeText(sh.Ref, replaced); err != nil {
		f.report(run, sh.Ref, fmt.Errorf("write shape text: %w", err))
		return
	}
	sh.Text = replaced
}

// processTable applies the text substitution rule to every cell
// independently. A bad cell is reported and skipped, never aborting the
// table.
func (f *Filler) processTable(deck Deck, sh *Shape, data *TemplateData, run *runState) {
	t := sh.Table
	if t == nil {
		return
	}
	for row := 1; row <= t.Rows; row++ {
		for col := 1; col <= t.Cols; col++ {
			text, err := t.Cell(row, col)
			if err != nil {
				f.report(run, sh.Ref, fmt.Errorf("table cell [%d,%d]: %w", row, col, err))
				continue
			}
			if text == "" {
				continue
			}
			replaced := f.substitute(sh.Ref, text, data)
			if replaced == text {
				continue
			}
			if err := deck.SetTableCell(sh.Ref, row, col, replaced); err != nil {
				f.report(run, sh.Ref, fmt.Errorf("write table cell [%d,%d]: %w", row, col, err))
			}
		}
	}
}

// processChart substitutes markers in the chart title, then scans the
// shape's description field: each marker resolving to a chart definition
// triggers a data update. Failures in either step are reported and the
// walk continues.
func (f *Filler) processChart(deck Deck, sh *Shape, data *TemplateData, run *runState) {
	c := sh.Chart
	if c == nil {
		return
	}

	if c.HasTitle && c.Title != "" {
		replaced := f.substitute(sh.Ref, c.Title, data)
		if replaced != c.Title {
			if err := deck.SetChartTitle(sh.Ref, replaced); err != nil {
				f.report(run, sh.Ref, fmt.Errorf("write chart title: %w", err))
			} else {
				c.Title = replaced
			}
		}
	}

	for _, ident := range TextMarkers(sh.AltText) {
		spec, ok := data.ResolveChart(ident)
		if !ok {
			continue
		}
		if err := f.updateChartData(deck, sh, spec); err != nil {
			f.report(run, sh.Ref, fmt.Errorf("update chart data for %q: %w", ident, err))
		}
	}
}

// updateChartData rebuilds a combo chart's backing data table and
// assigns series rendering roles. Other chart types are logged as
// unsupported and left untouched.
//
// Layout: categories go down column 1 starting at row 2 (row 1 holds the
// series-name headers); each distinct column-series name fills the next
// column, then each distinct line-series name. The role assignment below
// depends on exactly this write order.
func (f *Filler) updateChartData(deck Deck, sh *Shape, spec *ChartSpec) error {
	if !strings.EqualFold(spec.Type, "combo") {
		f.opts.logger.Info("unsupported chart type, leaving chart untouched", "ref", sh.Ref, "type", spec.Type)
		return nil
	}

	if spec.Title != "" && sh.Chart.HasTitle {
		if err := deck.SetChartTitle(sh.Ref, spec.Title); err != nil {
			return fmt.Errorf("set chart title: %w", err)
		}
		sh.Chart.Title = spec.Title
	}

	if err := deck.ResetChartData(sh.Ref); err != nil {
		return fmt.Errorf("reset chart data: %w", err)
	}
	for i, category := range spec.Categories {
		if err := deck.SetChartCell(sh.Ref, i+2, 1, category); err != nil {
			return fmt.Errorf("write category %q: %w", category, err)
		}
	}

	columnNames := distinctSeriesNames(spec.ColumnSeries)
	lineNames := distinctSeriesNames(spec.LineSeries)

	col := 2
	for _, name := range columnNames {
		if err := f.writeSeriesColumn(deck, sh.Ref, col, name, spec.Categories, spec.ColumnSeries); err != nil {
			return err
		}
		col++
	}
	for _, name := range lineNames {
		if err := f.writeSeriesColumn(deck, sh.Ref, col, name, spec.Categories, spec.LineSeries); err != nil {
			return err
		}
		col++
	}

	// First the column group on the primary axis, then the lines on the
	// secondary axis, in data-table order.
	total := len(columnNames) + len(lineNames)
	for i := 1; i <= total; i++ {
		role := SeriesColumn
		if i > len(columnNames) {
			role = SeriesLine
		}
		if err := deck.SetSeriesRole(sh.Ref, i, role); err != nil {
			return fmt.Errorf("set series %d role: %w", i, err)
		}
	}
	return nil
}

// writeSeriesColumn writes one series into a data-table column: the name
// as header in row 1, then the value for each category in order (0 when
// the series has no point for a category).
func (f *Filler) writeSeriesColumn(deck Deck, ref ShapeRef, col int, name string, categories []string, points []SeriesPoint) error {
	if err := deck.SetChartCell(ref, 1, col, name); err != nil {
		return fmt.Errorf("write series header %q: %w", name, err)
	}
	for i, category := range categories {
		if err := deck.SetChartCell(ref, i+2, col, seriesValue(points, name, category)); err != nil {
			return fmt.Errorf("write series %q value for %q: %w", name, category, err)
		}
	}
	return nil
}

// processImage scans the shape's description field for image markers.
// The first marker resolving to an existing file replaces the shape: the
// original is deleted and the new image inserted at the same bounding
// box. Markers resolving to missing paths leave the shape untouched.
func (f *Filler) processImage(deck Deck, sh *Shape, data *TemplateData, run *runState) {
	for _, ident := range ImageMarkers(sh.AltText) {
		path, ok := data.ResolveImage(ident)
		if !ok {
			f.notifyUnresolved(sh.Ref, ident)
			continue
		}
		if !f.opts.fileExists(path) {
			f.opts.logger.Warn("image path does not exist, shape untouched", "ref", sh.Ref, "marker", ident, "path", path)
			f.notifyUnresolved(sh.Ref, ident)
			continue
		}
		if err := deck.ReplaceImage(sh.Ref, path, sh.Box); err != nil {
			f.report(run, sh.Ref, fmt.Errorf("replace image with %q: %w", path, err))
			continue
		}
		f.notifyResolved(sh.Ref, ident, path)
		// The original shape is gone after one replacement.
		return
	}
}

// substitute replaces every resolvable ${...} marker in text against the
// text category, notifying listeners per distinct identifier.
func (f *Filler) substitute(ref ShapeRef, text string, data *TemplateData) string {
	return substituteText(text, data.ResolveText,
		func(ident, value string) {
			f.opts.logger.Debug("marker replaced", "ref", ref, "marker", ident, "value", value)
			f.notifyResolved(ref, ident, value)
		},
		func(ident string) {
			f.opts.logger.Debug("marker unresolved", "ref", ref, "marker", ident)
			f.notifyUnresolved(ref, ident)
		})
}

// report records a recoverable failure: aggregated on the run, logged,
// and fanned out to listeners. It is never re-raised.
func (f *Filler) report(run *runState, ref ShapeRef, err error) {
	run.issues = multierror.Append(run.issues, err)
	f.opts.logger.Warn("recoverable failure", "ref", ref, "error", err)
	for _, l := range f.opts.listeners {
		l.RecoverableError(ref, err)
	}
}

func (f *Filler) notifyResolved(ref ShapeRef, ident, value string) {
	for _, l := range f.opts.listeners {
		l.MarkerResolved(ref, ident, value)
	}
}

func (f *Filler) notifyUnresolved(ref ShapeRef, ident string) {
	for _, l := range f.opts.listeners {
		l.MarkerUnresolved(ref, ident)
	}
}
