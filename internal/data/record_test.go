package data

import (
	"reflect"
	"testing"

	"ocr-curator/internal/annotation"
)

func TestRecordsFromAnnotations(t *testing.T) {
	// arrange
	items := []annotation.Annotation{
		{ID: 7, Source: "page.png", ExtractedText: "Abra", From: annotation.Coordinates{X: 12, Y: 34}, To: annotation.Coordinates{X: 56, Y: 78}},
		{ID: 3, Source: "page.png", ExtractedText: "", From: annotation.Coordinates{X: 90, Y: 12}, To: annotation.Coordinates{X: 134, Y: 56}},
	}

	// act
	records := RecordsFromAnnotations(items)

	// assert
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Index != 1 || records[1].ID != 3 {
		t.Errorf("expected display index and id to be kept apart, got %+v", records[1])
	}
	expected := []string{"page.png", "0", "Abra", "12", "34", "56", "78", "7"}
	if got := MapCSVRecord(records[0]); !reflect.DeepEqual(got, expected) {
		t.Errorf("expected row %v, got %v", expected, got)
	}
	if got := MapCSVRecord(records[1]); got[len(got)-1] != "3" {
		t.Errorf("expected stable id 3 in last column, got %v", got)
	}
	if len(GetCSVHeader()) != len(expected) {
		t.Errorf("header and row widths differ")
	}
}
