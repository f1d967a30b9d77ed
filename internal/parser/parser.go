// Package parser reads the numbered-list text a vision model returns when
// asked for text blocks and their locations.
//
// A block line looks like
//
//	3: Some text (from: {x:12, y:34}, to: {x:56, y:78})
//
// and the response may carry an advisory total such as
//
//	Number of text blocks: 3
//
// Lines that do not match are skipped; parsing never fails.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"ocr-curator/internal/annotation"
)

var (
	blockLineRegex = regexp.MustCompile(
		`^(\d+)\s*:\s*(.*?)\s*\(from:\s*\{\s*x:\s*(-?\d+)\s*,\s*y:\s*(-?\d+)\s*\}\s*,\s*to:\s*\{\s*x:\s*(-?\d+)\s*,\s*y:\s*(-?\d+)\s*\}\s*\)$`)
	declaredCountRegex = regexp.MustCompile(`(?i)^[*_#\s]*number\s+of\s+text\s+blocks[*_\s]*:[*_\s]*(\d+)`)
)

type CoordinatePair struct {
	From annotation.Coordinates
	To   annotation.Coordinates
}

// Block is one matched line of the response.
type Block struct {
	Index int
	Text  string
	CoordinatePair
}

// Response is the full reading of a model response.
type Response struct {
	Blocks           []Block
	DeclaredCount    int
	HasDeclaredCount bool
}

// CountMismatch reports whether the model declared a count that differs from
// the number of blocks actually parsed.
func (r Response) CountMismatch() bool {
	return r.HasDeclaredCount && r.DeclaredCount != len(r.Blocks)
}

// Candidates converts the parsed blocks for loading into a store.
func (r Response) Candidates() []annotation.Candidate {
	out := make([]annotation.Candidate, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		out = append(out, annotation.Candidate{Text: b.Text, From: b.From, To: b.To})
	}
	return out
}

// Parse scans text once and returns every block line in input order along
// with the declared count, if any.
func Parse(text string) Response {
	resp := Response{Blocks: []Block{}}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if b, ok := parseBlockLine(line); ok {
			resp.Blocks = append(resp.Blocks, b)
			continue
		}
		if !resp.HasDeclaredCount {
			if n, ok := parseDeclaredCount(line); ok {
				resp.DeclaredCount = n
				resp.HasDeclaredCount = true
			}
		}
	}
	return resp
}

// ParseNumberedList returns the text of each block line in input order.
func ParseNumberedList(text string) []string {
	blocks := Parse(text).Blocks
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.Text)
	}
	return out
}

// ParseCoordinatesList returns the box of each block line in input order.
func ParseCoordinatesList(text string) []CoordinatePair {
	blocks := Parse(text).Blocks
	out := make([]CoordinatePair, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.CoordinatePair)
	}
	return out
}

// ExtractDeclaredCount returns the value of the first
// "Number of text blocks: N" line. ok is false when there is none.
func ExtractDeclaredCount(text string) (count int, ok bool) {
	r := Parse(text)
	return r.DeclaredCount, r.HasDeclaredCount
}

func parseBlockLine(line string) (Block, bool) {
	m := blockLineRegex.FindStringSubmatch(line)
	if m == nil {
		return Block{}, false
	}

	var nums [5]int
	for i, s := range []string{m[1], m[3], m[4], m[5], m[6]} {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Block{}, false
		}
		nums[i] = n
	}

	return Block{
		Index: nums[0],
		Text:  strings.TrimSpace(m[2]),
		CoordinatePair: CoordinatePair{
			From: annotation.Coordinates{X: nums[1], Y: nums[2]},
			To:   annotation.Coordinates{X: nums[3], Y: nums[4]},
		},
	}, true
}

func parseDeclaredCount(line string) (int, bool) {
	m := declaredCountRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
