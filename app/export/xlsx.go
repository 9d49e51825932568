package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okatkov/rss-digest/app/digest"
	"github.com/okatkov/rss-digest/app/feed"
)

// SheetName is the single sheet of the export workbook.
const SheetName = "Articles"

// Filename is the suggested download name for the export byte stream.
const Filename = "articles.xlsx"

// Columns is the fixed export column order. One row per record, no
// reordering or filtering at this stage.
var Columns = []string{"From", "Subject", "Message", "Reply", "Timestamp", "Expected Action", "ImageURL", "Subtitle"}

type Serializer struct{}

func NewSerializer() *Serializer {
	return &Serializer{}
}

// Run flattens records into a single-sheet xlsx workbook and returns it as a
// byte buffer ready for download.
func (s *Serializer) Run(records []feed.ArticleRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := s.writeRow(f, 1, Columns); err != nil {
		return nil, err
	}

	for i, record := range records {
		row := []string{
			record.From,
			record.Subject,
			record.Message,
			record.Reply,
			record.Timestamp,
			record.ExpectedAction,
			record.ImageURL,
			record.Subtitle,
		}
		if err := s.writeRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf, nil
}

func (s *Serializer) writeRow(f *excelize.File, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}

// ReadRecords parses a previously exported workbook back into records. All
// values read back as strings; the header row is skipped.
func ReadRecords(r io.Reader) ([]feed.ArticleRecord, error) {
	rows, err := readRows(r, SheetName)
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, nil
	}

	records := make([]feed.ArticleRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, feed.ArticleRecord{
			From:           cell(row, 0),
			Subject:        cell(row, 1),
			Message:        cell(row, 2),
			Reply:          cell(row, 3),
			Timestamp:      cell(row, 4),
			ExpectedAction: cell(row, 5),
			ImageURL:       cell(row, 6),
			Subtitle:       cell(row, 7),
		})
	}

	return records, nil
}

// ReadPersonaRows parses an uploaded persona workbook. The first sheet must
// carry a header row with Name, Image and Tags columns, matched by header
// name case-insensitively. Column position is not significant.
func ReadPersonaRows(r io.Reader) ([]digest.PersonaRow, error) {
	rows, err := readRows(r, "")
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("persona file has no rows")
	}

	index := map[string]int{}
	for col, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = col
	}

	for _, required := range []string{"name", "image", "tags"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("persona file is missing required column '%s'", required)
		}
	}

	personas := make([]digest.PersonaRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		personas = append(personas, digest.PersonaRow{
			Name:  cell(row, index["name"]),
			Image: cell(row, index["image"]),
			Tags:  cell(row, index["tags"]),
		})
	}

	return personas, nil
}

// readRows opens a workbook and returns the rows of the named sheet, or of
// the first sheet when name is empty.
func readRows(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	return rows, nil
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
