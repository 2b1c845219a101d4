package pptfill

import (
	"fmt"
	"strconv"
	"strings"
)

// ShapeKind discriminates the variants of a Shape.
type ShapeKind int

const (
	KindOther ShapeKind = iota
	KindText
	KindTable
	KindChart
	KindImage
	KindGroup
)

func (k ShapeKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTable:
		return "table"
	case KindChart:
		return "chart"
	case KindImage:
		return "image"
	case KindGroup:
		return "group"
	default:
		return "other"
	}
}

// Box is a shape's bounding box in the host's coordinate units.
type Box struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ShapeRef addresses a shape within a deck: the 1-indexed slide number
// plus the 1-indexed child path from the slide's shape collection down
// through nested groups.
type ShapeRef struct {
	Slide int
	Path  []int
}

// NewShapeRef creates a reference to a top-level shape on a slide.
func NewShapeRef(slide, shape int) ShapeRef {
	return ShapeRef{Slide: slide, Path: []int{shape}}
}

// Child returns a reference to the i-th child (1-indexed) of this shape.
func (r ShapeRef) Child(i int) ShapeRef {
	path := make([]int, len(r.Path), len(r.Path)+1)
	copy(path, r.Path)
	return ShapeRef{Slide: r.Slide, Path: append(path, i)}
}

func (r ShapeRef) String() string {
	if len(r.Path) == 0 {
		return fmt.Sprintf("slide %d", r.Slide)
	}
	parts := make([]string, len(r.Path))
	for i, p := range r.Path {
		parts[i] = strconv.Itoa(p)
	}
	return fmt.Sprintf("slide %d shape %s", r.Slide, strings.Join(parts, "."))
}

// TableShape is the cell grid of a table shape as read from the host.
type TableShape struct {
	Rows  int
	Cols  int
	Cells [][]string // row-major, 0-based storage
}

// Cell returns the text of the 1-indexed (row, col) cell. Grids read from
// a host may be ragged; addressing a missing cell is an error so a single
// malformed cell can be skipped without aborting the table.
func (t *TableShape) Cell(row, col int) (string, error) {
	if row < 1 || row > t.Rows || col < 1 || col > t.Cols {
		return "", fmt.Errorf("cell [%d,%d] outside %dx%d table", row, col, t.Rows, t.Cols)
	}
	if row > len(t.Cells) || col > len(t.Cells[row-1]) {
		return "", fmt.Errorf("cell [%d,%d] missing from table data", row, col)
	}
	return t.Cells[row-1][col-1], nil
}

// ChartShape is the chart surface the engine touches.
type ChartShape struct {
	HasTitle bool
	Title    string
}

// Shape is one node of a slide's shape tree, read once from the host and
// mutated locally; writes go back through the Deck's discrete calls.
type Shape struct {
	Ref     ShapeRef
	Kind    ShapeKind
	Name    string
	Box     Box
	HasText bool
	Text    string
	AltText string // host description/alt-text field
	Table   *TableShape
	Chart   *ChartShape

	// Children holds a group's member shapes, in shape order.
	Children []*Shape
}

// Slide is the shape tree of a single slide.
type Slide struct {
	Number int
	Shapes []*Shape
}
