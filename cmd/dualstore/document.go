package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/dualstore/core"
	"github.com/poiesic/dualstore/extract"
)

// jsonDocument is the on-disk document format accepted by the ingest
// command. A file is a list of named segments, each holding headings,
// paragraphs and tables in reading order.
type jsonDocument struct {
	FileID   string        `json:"file_id"`
	Segments []jsonSegment `json:"segments"`
}

type jsonSegment struct {
	Name  string     `json:"name"`
	Items []jsonItem `json:"items"`
}

type jsonItem struct {
	Kind string `json:"kind"`

	Heading string `json:"heading,omitempty"`
	Text    string `json:"text,omitempty"`

	TableName string      `json:"table_name,omitempty"`
	Header    []string    `json:"header,omitempty"`
	Rows      [][]string  `json:"rows,omitempty"`
	Merges    []jsonMerge `json:"merges,omitempty"`
}

type jsonMerge struct {
	Row     int `json:"row"`
	Col     int `json:"col"`
	RowSpan int `json:"row_span"`
	ColSpan int `json:"col_span"`
}

// loadDocument reads one JSON document file. The file_id defaults to the
// file's base name when the document does not set one.
func loadDocument(path string) (*extract.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid document JSON: %w", err)
	}

	if raw.FileID == "" {
		raw.FileID = filepath.Base(path)
	}

	doc := &extract.Document{
		FileID:   raw.FileID,
		Segments: make([]extract.Segment, 0, len(raw.Segments)),
	}
	for _, seg := range raw.Segments {
		segment := extract.Segment{
			Name:  seg.Name,
			Items: make([]extract.Item, 0, len(seg.Items)),
		}
		for _, item := range seg.Items {
			converted, err := convertItem(item)
			if err != nil {
				return nil, fmt.Errorf("segment %q: %w", seg.Name, err)
			}
			segment.Items = append(segment.Items, converted)
		}
		doc.Segments = append(doc.Segments, segment)
	}
	return doc, nil
}

func convertItem(item jsonItem) (extract.Item, error) {
	switch strings.ToLower(item.Kind) {
	case "heading":
		return extract.Item{Kind: extract.ItemHeading, Heading: item.Heading}, nil
	case "paragraph":
		return extract.Item{Kind: extract.ItemParagraph, Text: item.Text}, nil
	case "table":
		merges := make([]core.CellMerge, 0, len(item.Merges))
		for _, m := range item.Merges {
			merges = append(merges, core.CellMerge{
				Row:     m.Row,
				Col:     m.Col,
				RowSpan: m.RowSpan,
				ColSpan: m.ColSpan,
			})
		}
		return extract.Item{
			Kind:      extract.ItemTable,
			TableName: item.TableName,
			Header:    item.Header,
			Rows:      item.Rows,
			Merges:    merges,
		}, nil
	default:
		return extract.Item{}, fmt.Errorf("unknown item kind %q", item.Kind)
	}
}
