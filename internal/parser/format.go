package parser

import (
	"fmt"
	"strings"
)

// Format renders blocks in the numbered-list form Parse reads, numbering
// them from 1 and ending with the declared count line.
func Format(blocks []Block) string {
	var b strings.Builder
	for i, blk := range blocks {
		text := strings.Join(strings.Fields(blk.Text), " ")
		fmt.Fprintf(&b, "%d: %s (from: {x:%d, y:%d}, to: {x:%d, y:%d})\n",
			i+1, text, blk.From.X, blk.From.Y, blk.To.X, blk.To.Y)
	}
	fmt.Fprintf(&b, "Number of text blocks: %d\n", len(blocks))
	return b.String()
}
