// Package diff computes version comparisons for the version store.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/koopa0/kelp/internal/version"
)

// Compare diffs contentA against contentB and packages the result for
// display. Segment granularity is semantic (word-ish runs rather than
// single characters), which reads better in a terminal diff view.
func Compare(a, b int, contentA, contentB string) *version.ComparisonResult {
	result := &version.ComparisonResult{
		VersionA:  a,
		VersionB:  b,
		Identical: contentA == contentB,
	}
	if result.Identical {
		result.Segments = []version.Segment{{Op: version.OpEqual, Text: contentA}}
		return result
	}

	d := diffmatchpatch.New()
	diffs := d.DiffMain(contentA, contentB, false)
	diffs = d.DiffCleanupSemantic(diffs)

	result.Segments = make([]version.Segment, 0, len(diffs))
	for _, seg := range diffs {
		switch seg.Type {
		case diffmatchpatch.DiffInsert:
			result.Segments = append(result.Segments, version.Segment{Op: version.OpInsert, Text: seg.Text})
			result.LinesAdded += lineCount(seg.Text)
		case diffmatchpatch.DiffDelete:
			result.Segments = append(result.Segments, version.Segment{Op: version.OpDelete, Text: seg.Text})
			result.LinesDeleted += lineCount(seg.Text)
		default:
			result.Segments = append(result.Segments, version.Segment{Op: version.OpEqual, Text: seg.Text})
		}
	}
	return result
}

// lineCount returns how many lines a changed segment touches.
func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}
