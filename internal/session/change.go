package session

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"ocr-curator/internal/annotation"
)

type Op string

const (
	OpEditText     Op = "edit_text"
	OpEditLocation Op = "edit_location"
	OpAdd          Op = "add"
	OpDelete       Op = "delete"
)

// Change is one applied correction. Index is the position the annotation had
// when the change was made.
type Change struct {
	Op      Op
	ID      annotation.ID
	Index   int
	OldFrom annotation.Coordinates
	OldTo   annotation.Coordinates
	From    annotation.Coordinates
	To      annotation.Coordinates
	Diffs   []diffmatchpatch.Diff
}

// TextChange renders the text diff inline: removed runs as [-x-] and
// inserted runs as {+x+}.
func (c Change) TextChange() string {
	var b strings.Builder
	for _, d := range c.Diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		}
	}
	return b.String()
}

func (c Change) String() string {
	switch c.Op {
	case OpEditText:
		return fmt.Sprintf("#%d text %s", c.Index, c.TextChange())
	case OpEditLocation:
		return fmt.Sprintf("#%d moved %s-%s -> %s-%s", c.Index, c.OldFrom, c.OldTo, c.From, c.To)
	case OpAdd:
		return fmt.Sprintf("#%d added %s-%s", c.Index, c.From, c.To)
	case OpDelete:
		return fmt.Sprintf("#%d deleted %s-%s %s", c.Index, c.OldFrom, c.OldTo, c.TextChange())
	default:
		return string(c.Op)
	}
}

func textDiff(before, after string) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	return dmp.DiffCleanupSemantic(diffs)
}
