package data

import (
	"strconv"

	"ocr-curator/internal/annotation"
)

// Record is one exported row: a curated annotation with its position in the
// final ordering of its image.
type Record struct {
	Source string
	Index  int
	ID     annotation.ID
	Text   string
	From   annotation.Coordinates
	To     annotation.Coordinates
}

func RecordsFromAnnotations(items []annotation.Annotation) []Record {
	records := make([]Record, 0, len(items))
	for i, a := range items {
		records = append(records, Record{
			Source: a.Source,
			Index:  i,
			ID:     a.ID,
			Text:   a.ExtractedText,
			From:   a.From,
			To:     a.To,
		})
	}
	return records
}

func MapCSVRecord(item Record) []string {
	return []string{
		item.Source,
		strconv.Itoa(item.Index),
		item.Text,
		strconv.Itoa(item.From.X),
		strconv.Itoa(item.From.Y),
		strconv.Itoa(item.To.X),
		strconv.Itoa(item.To.Y),
		strconv.FormatUint(uint64(item.ID), 10),
	}
}

func GetCSVHeader() []string {
	return []string{"Source", "Index", "Text", "FromX", "FromY", "ToX", "ToY", "ID"}
}
