package ingestion

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxDocumentPart = "word/document.xml"

// DOCXStrategy reads WordprocessingML documents. Body paragraphs come first,
// followed by table cells in table, row, column order.
type DOCXStrategy struct{}

// Name returns the strategy identifier.
func (DOCXStrategy) Name() string { return "docx" }

// Extract implements Strategy.
func (DOCXStrategy) Extract(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == docxDocumentPart {
			part = f
			break
		}
	}
	if part == nil {
		return "", fmt.Errorf("docx archive has no %s", docxDocumentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxDocumentPart, err)
	}
	defer func() { _ = rc.Close() }()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", docxDocumentPart, err)
	}

	var doc docxDocument
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", fmt.Errorf("parse %s: %w", docxDocumentPart, err)
	}

	var pieces []string
	for _, p := range doc.Body.Paragraphs {
		if strings.TrimSpace(p.Text) != "" {
			pieces = append(pieces, p.Text)
		}
	}
	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				if text := cell.text(); strings.TrimSpace(text) != "" {
					pieces = append(pieces, text)
				}
			}
		}
	}

	return strings.Join(pieces, "\n"), nil
}

// Element names are matched by local name, so the w: namespace prefix is implied.
type docxDocument struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
		Tables     []docxTable     `xml:"tbl"`
	} `xml:"body"`
}

type docxTable struct {
	Rows []struct {
		Cells []docxCell `xml:"tc"`
	} `xml:"tr"`
}

type docxCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// text joins the cell's paragraphs with newlines, the way word processors copy a cell.
func (c docxCell) text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// docxParagraph collects the visible text of a <w:p>, including text nested in
// hyperlinks and smart tags. Tabs and breaks become whitespace.
type docxParagraph struct {
	Text string
}

// UnmarshalXML implements xml.Unmarshaler.
func (p *docxParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	inText := false
	depth := 1

	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	p.Text = sb.String()
	return nil
}
