package pptfill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDescribeSlide(t *testing.T) {
	groupRef := NewShapeRef(3, 2)
	slide := &Slide{
		Number: 3,
		Shapes: []*Shape{
			{
				Ref:     NewShapeRef(3, 1),
				Kind:    KindText,
				Name:    "Title 1",
				HasText: true,
				Text:    "Revenue: ${Revenue}",
			},
			{
				Ref:  groupRef,
				Kind: KindGroup,
				Children: []*Shape{
					{
						Ref:   groupRef.Child(1),
						Kind:  KindChart,
						Chart: &ChartShape{HasTitle: true, Title: "Sales ${Year}"},
					},
					{
						Ref:     groupRef.Child(2),
						Kind:    KindImage,
						AltText: "$[logo]",
					},
				},
			},
			{
				Ref:   NewShapeRef(3, 3),
				Kind:  KindTable,
				Table: &TableShape{Rows: 2, Cols: 3},
			},
		},
	}

	out := DescribeSlide(slide)

	assert.Contains(t, out, "Slide 3: 3 shapes")
	assert.Contains(t, out, `slide 3 shape 1 text "Title 1"`)
	assert.Contains(t, out, "markers: Revenue")
	assert.Contains(t, out, "slide 3 shape 2 group")
	assert.Contains(t, out, "slide 3 shape 2.1 chart")
	assert.Contains(t, out, `chart title: "Sales ${Year}"`)
	assert.Contains(t, out, "title markers: Year")
	assert.Contains(t, out, "description markers: logo")
	assert.Contains(t, out, "table: 2 rows x 3 cols")
}

func TestDescribeSlide_Empty(t *testing.T) {
	out := DescribeSlide(&Slide{Number: 1})
	assert.Equal(t, "Slide 1: 0 shapes\n", out)
}
