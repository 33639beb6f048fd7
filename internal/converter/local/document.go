package local

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	xmlDecl       = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
	bulletPrefix  = "• "
)

// renderDocumentXML builds word/document.xml for the given blocks.
func renderDocumentXML(blocks []block) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(xmlDecl)
	b.WriteString(`<w:document xmlns:w="` + wordNamespace + `"><w:body>`)
	for _, blk := range blocks {
		runs := parseInline(blk.text)
		if blk.kind == blockBullet {
			runs = append([]run{{text: bulletPrefix}}, runs...)
		}
		if err := writeParagraph(&b, styleFor(blk), runs); err != nil {
			return nil, err
		}
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>`)
	b.WriteString(`<w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)

	if err := checkWellFormed(b.Bytes()); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func writeParagraph(b *bytes.Buffer, style string, runs []run) error {
	b.WriteString("<w:p>")
	if style != "" {
		fmt.Fprintf(b, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	for _, r := range runs {
		b.WriteString("<w:r>")
		if r.bold {
			b.WriteString("<w:rPr><w:b/></w:rPr>")
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(b, []byte(r.text)); err != nil {
			return err
		}
		b.WriteString("</w:t></w:r>")
	}
	b.WriteString("</w:p>")
	return nil
}

// checkWellFormed parses the generated part once so a malformed document
// never reaches storage.
func checkWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 && (t.Name.Space != wordNamespace || t.Name.Local != "document") {
				return fmt.Errorf("document.xml root is %s", strings.TrimSpace(t.Name.Space+" "+t.Name.Local))
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if depth != 0 {
		return errors.New("document.xml has unbalanced elements")
	}
	return nil
}
