package parser

import (
	"fmt"
	"reflect"
	"testing"

	"ocr-curator/internal/annotation"
)

func pair(x1, y1, x2, y2 int) CoordinatePair {
	return CoordinatePair{
		From: annotation.Coordinates{X: x1, Y: y1},
		To:   annotation.Coordinates{X: x2, Y: y2},
	}
}

func TestParseNumberedList(t *testing.T) {
	testCases := []struct {
		name          string
		input         string
		expectedList  []string
		expectedCount int
		expectedOK    bool
	}{
		{
			name: "two blocks simple",
			input: "1: Abra (from: {x:12, y:34}, to: {x:56, y:78})\n" +
				"2: Cookie (from: {x:90, y:12}, to: {x:34, y:56})\n" +
				"Number of text blocks: 2",
			expectedList:  []string{"Abra", "Cookie"},
			expectedCount: 2,
			expectedOK:    true,
		},
		{
			name: "three blocks larger coords",
			input: "1: First (from: {x:1, y:2}, to: {x:3, y:4})\n" +
				"2: Second (from: {x:5, y:6}, to: {x:7, y:8})\n" +
				"3: Third (from: {x:9, y:10}, to: {x:11, y:12})\n" +
				"Number of text blocks: 3",
			expectedList:  []string{"First", "Second", "Third"},
			expectedCount: 3,
			expectedOK:    true,
		},
		{
			name: "indented with blank lines",
			input: "\n\n    1: Welcome to class (from: {x:10, y:20}, to: {x:120, y:40})   \n\n\n" +
				"\t2: Enjoy your learning (from: {x:15, y:60}, to: {x:130, y:80})\n" +
				"    Number of text blocks: 2\n    ",
			expectedList:  []string{"Welcome to class", "Enjoy your learning"},
			expectedCount: 2,
			expectedOK:    true,
		},
		{
			name: "parentheses and digits in text",
			input: "1: Chapter 7 (part 2) costs $3.50 (from: {x:0, y:0}, to: {x:100, y:20})\n" +
				"2: (aside) 42 (from:{x:5,y:30},to:{x:60,y:45})",
			expectedList: []string{"Chapter 7 (part 2) costs $3.50", "(aside) 42"},
		},
		{
			name: "unmatched lines are skipped",
			input: "Here are the text blocks I found:\n" +
				"1: Kept (from: {x:1, y:1}, to: {x:2, y:2})\n" +
				"2: No location here\n" +
				"3: Broken (from: {x:1, y:1})\n" +
				"- 4: Bullet (from: {x:1, y:1}, to: {x:2, y:2})\n" +
				"5: Also kept (from: {x:3, y:3}, to: {x:4, y:4})",
			expectedList: []string{"Kept", "Also kept"},
		},
		{
			name: "input order is kept",
			input: "2: Second (from: {x:5, y:6}, to: {x:7, y:8})\n" +
				"1: First (from: {x:1, y:2}, to: {x:3, y:4})",
			expectedList: []string{"Second", "First"},
		},
		{
			name:         "empty text",
			input:        "1: (from: {x:5, y:6}, to: {x:7, y:8})",
			expectedList: []string{""},
		},
		{
			name:         "empty input",
			input:        "",
			expectedList: []string{},
		},
		{
			name:         "nothing matches",
			input:        "I could not read any text in this image.",
			expectedList: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			list := ParseNumberedList(tc.input)
			count, ok := ExtractDeclaredCount(tc.input)

			// assert
			if !reflect.DeepEqual(list, tc.expectedList) {
				t.Errorf("expected list %q, got %q", tc.expectedList, list)
			}
			if ok != tc.expectedOK {
				t.Fatalf("expected declared count present=%v, got %v", tc.expectedOK, ok)
			}
			if ok && count != tc.expectedCount {
				t.Errorf("expected count %d, got %d", tc.expectedCount, count)
			}
		})
	}
}

func TestParseCoordinatesList(t *testing.T) {
	// arrange
	response := `
    1: Welcome to class (from: {x:10, y:20}, to: {x:120, y:40})
    2: Enjoy your learning (from: {x:15, y:60}, to: {x:130, y:80})
    Number of text blocks: 2
    `

	// act
	coords := ParseCoordinatesList(response)

	// assert
	expected := []CoordinatePair{pair(10, 20, 120, 40), pair(15, 60, 130, 80)}
	if !reflect.DeepEqual(coords, expected) {
		t.Errorf("expected %+v, got %+v", expected, coords)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	input := "1: Abra (from: {x:12, y:34}, to: {x:56, y:78})\n" +
		"2: Cookie (from: {x:90, y:12}, to: {x:34, y:56})\n" +
		"Number of text blocks: 2"

	resp := Parse(input)

	if got := ParseNumberedList(input); !reflect.DeepEqual(got, []string{"Abra", "Cookie"}) {
		t.Errorf("unexpected list %q", got)
	}
	expectedCoords := []CoordinatePair{pair(12, 34, 56, 78), pair(90, 12, 34, 56)}
	if got := ParseCoordinatesList(input); !reflect.DeepEqual(got, expectedCoords) {
		t.Errorf("unexpected coordinates %+v", got)
	}
	if n, ok := ExtractDeclaredCount(input); !ok || n != 2 {
		t.Errorf("expected declared count 2, got %d (%v)", n, ok)
	}
	if resp.CountMismatch() {
		t.Errorf("did not expect a count mismatch")
	}
	if resp.Blocks[1].Index != 2 {
		t.Errorf("expected second block index 2, got %d", resp.Blocks[1].Index)
	}

	candidates := resp.Candidates()
	if len(candidates) != 2 || candidates[0].Text != "Abra" || candidates[1].To != (annotation.Coordinates{X: 34, Y: 56}) {
		t.Errorf("unexpected candidates %+v", candidates)
	}
}

func TestExtractDeclaredCount(t *testing.T) {
	testCases := []struct {
		input    string
		expected int
		ok       bool
	}{
		{input: "Number of text blocks: 4", expected: 4, ok: true},
		{input: "number of TEXT blocks :   12", expected: 12, ok: true},
		{input: "  Number  of  text  blocks:7  ", expected: 7, ok: true},
		{input: "**Number of text blocks:** 5", expected: 5, ok: true},
		{input: "Number of text blocks: 1\nNumber of text blocks: 9", expected: 1, ok: true},
		{input: "Number of text blocks: many", ok: false},
		{input: "Number of blocks: 3", ok: false},
		{input: "", ok: false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("input=%q", tc.input), func(t *testing.T) {
			n, ok := ExtractDeclaredCount(tc.input)
			if ok != tc.ok {
				t.Fatalf("expected ok=%v, got %v", tc.ok, ok)
			}
			if ok && n != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, n)
			}
		})
	}
}

func TestResponse_CountMismatch(t *testing.T) {
	input := "1: Only (from: {x:1, y:1}, to: {x:2, y:2})\nNumber of text blocks: 3"

	resp := Parse(input)

	if !resp.CountMismatch() {
		t.Errorf("expected mismatch between declared 3 and parsed %d", len(resp.Blocks))
	}
	if Parse("1: Only (from: {x:1, y:1}, to: {x:2, y:2})").CountMismatch() {
		t.Errorf("missing count must not be reported as a mismatch")
	}
}

func TestParse_CRLFAndNegativeCoordinates(t *testing.T) {
	input := "1: Windows (from: {x:1, y:2}, to: {x:3, y:4})\r\n2: Offscreen (from: {x:-5, y:0}, to: {x:3, y:4})\r\n"

	coords := ParseCoordinatesList(input)

	expected := []CoordinatePair{pair(1, 2, 3, 4), pair(-5, 0, 3, 4)}
	if !reflect.DeepEqual(coords, expected) {
		t.Errorf("expected %+v, got %+v", expected, coords)
	}
}
