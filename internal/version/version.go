package version

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Role identifies which side of the conversation a version set belongs to.
type Role string

// Conversation roles. A version set is keyed by (chat ID, role).
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// PreviewLength is the maximum rune count of a version content preview.
const PreviewLength = 80

// Version is one immutable snapshot of a message's content.
//
// Number is 1-based and unique within the version set; set ordering is the
// total order by Number. Exactly one version per set has IsCurrent true.
type Version struct {
	Number    int
	IsCurrent bool
	Content   string
	Preview   string
	WordCount int
	CharCount int
	CreatedAt time.Time
}

// ContentPreview returns the first PreviewLength runes of content with
// newlines collapsed to spaces, appending "…" when truncated.
// The store reports previews alongside full content; this helper lets the
// rest of the system recompute them instead of trusting stored values.
func ContentPreview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(flat) <= PreviewLength {
		return flat
	}
	runes := []rune(flat)
	return string(runes[:PreviewLength]) + "…"
}

// CountWords returns the number of whitespace-separated words in content.
func CountWords(content string) int {
	return len(strings.Fields(content))
}

// SegmentOp classifies a comparison segment.
type SegmentOp int

// Comparison segment operations.
const (
	OpEqual  SegmentOp = 0
	OpInsert SegmentOp = 1
	OpDelete SegmentOp = -1
)

// Segment is one contiguous run of a version comparison.
type Segment struct {
	Op   SegmentOp
	Text string
}

// ComparisonResult describes the differences between two versions.
// It is produced by the store and handed to the host for display;
// the controller treats it as opaque.
type ComparisonResult struct {
	VersionA int
	VersionB int
	Segments []Segment

	LinesAdded   int
	LinesDeleted int
	Identical    bool
}
