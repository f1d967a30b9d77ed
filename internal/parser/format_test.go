package parser

import (
	"reflect"
	"testing"
)

func TestFormat(t *testing.T) {
	// arrange
	blocks := []Block{
		{Text: "Hello\nworld  again", CoordinatePair: pair(1, 2, 30, 12)},
		{Text: "Page (3)", CoordinatePair: pair(5, 40, 60, 52)},
	}

	// act
	out := Format(blocks)

	// assert
	expected := "1: Hello world again (from: {x:1, y:2}, to: {x:30, y:12})\n" +
		"2: Page (3) (from: {x:5, y:40}, to: {x:60, y:52})\n" +
		"Number of text blocks: 2\n"
	if out != expected {
		t.Fatalf("expected\n%s\ngot\n%s", expected, out)
	}
	if got := ParseNumberedList(out); !reflect.DeepEqual(got, []string{"Hello world again", "Page (3)"}) {
		t.Errorf("formatted output did not parse back: %q", got)
	}
}

func TestFormat_Empty(t *testing.T) {
	out := Format(nil)

	if n, ok := ExtractDeclaredCount(out); !ok || n != 0 {
		t.Errorf("expected declared count 0, got %d (%v)", n, ok)
	}
	if len(ParseNumberedList(out)) != 0 {
		t.Errorf("expected no blocks")
	}
}
