package pptfill

import (
	"fmt"
	"strings"
)

// DescribeSlide returns a human-readable tree of a slide's shapes with
// the markers detected in each. Useful for debugging why a template
// marker is not picked up; the engine emits it at debug level before
// processing a slide.
func DescribeSlide(s *Slide) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Slide %d: %d shapes\n", s.Number, len(s.Shapes))
	for _, sh := range s.Shapes {
		describeShape(&b, sh, 1)
	}
	return b.String()
}

// describeShape recursively writes one shape and its group members.
func describeShape(b *strings.Builder, sh *Shape, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(b, "%s%s %s", prefix, sh.Ref, sh.Kind)
	if sh.Name != "" {
		fmt.Fprintf(b, " %q", sh.Name)
	}
	fmt.Fprintf(b, " (left=%.1f top=%.1f %.1fx%.1f)\n", sh.Box.Left, sh.Box.Top, sh.Box.Width, sh.Box.Height)

	if sh.HasText && sh.Text != "" {
		fmt.Fprintf(b, "%s  text: %q\n", prefix, sh.Text)
		if markers := TextMarkers(sh.Text); len(markers) > 0 {
			fmt.Fprintf(b, "%s  markers: %s\n", prefix, strings.Join(markers, ", "))
		}
	}
	if sh.Table != nil {
		fmt.Fprintf(b, "%s  table: %d rows x %d cols\n", prefix, sh.Table.Rows, sh.Table.Cols)
	}
	if sh.Chart != nil && sh.Chart.HasTitle {
		fmt.Fprintf(b, "%s  chart title: %q\n", prefix, sh.Chart.Title)
		if markers := TextMarkers(sh.Chart.Title); len(markers) > 0 {
			fmt.Fprintf(b, "%s  title markers: %s\n", prefix, strings.Join(markers, ", "))
		}
	}
	if sh.AltText != "" {
		markers := TextMarkers(sh.AltText)
		markers = append(markers, ImageMarkers(sh.AltText)...)
		if len(markers) > 0 {
			fmt.Fprintf(b, "%s  description markers: %s\n", prefix, strings.Join(markers, ", "))
		}
	}
	for _, child := range sh.Children {
		describeShape(b, child, indent+1)
	}
}
