package local

import (
	"fmt"
	"strings"
)

// RunStyle is the run formatting a paragraph style applies.
type RunStyle struct {
	Bold  bool
	Size  int // half-points
	Color string
}

const (
	HeadingColor = "1F2937"
	TitleColor   = "111111"
	BodySize     = 21
	HeadingSize  = 26
	TitleSize    = 36
)

// StyleMap lists the paragraph styles the renderer emits, keyed by style id.
var StyleMap = map[string]RunStyle{
	"Title":      {Bold: true, Size: TitleSize, Color: TitleColor},
	"Heading1":   {Bold: true, Size: TitleSize, Color: TitleColor},
	"Heading2":   {Bold: true, Size: HeadingSize, Color: HeadingColor},
	"Heading3":   {Bold: true, Size: BodySize + 2, Color: HeadingColor},
	"ListBullet": {Size: BodySize},
}

var styleOrder = []string{"Title", "Heading1", "Heading2", "Heading3", "ListBullet"}

func styleFor(b block) string {
	switch b.kind {
	case blockHeading:
		if b.level >= 3 {
			return "Heading3"
		}
		return fmt.Sprintf("Heading%d", b.level)
	case blockBullet:
		return "ListBullet"
	default:
		return ""
	}
}

// stylesXML renders word/styles.xml for packages built without a reference.
func stylesXML() string {
	var b strings.Builder
	b.WriteString(xmlDecl)
	b.WriteString(`<w:styles xmlns:w="` + wordNamespace + `">`)
	fmt.Fprintf(&b, `<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:cs="Calibri"/><w:sz w:val="%d"/></w:rPr></w:rPrDefault>`, BodySize)
	b.WriteString(`<w:pPrDefault><w:pPr><w:spacing w:after="120"/></w:pPr></w:pPrDefault></w:docDefaults>`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>`)
	for _, id := range styleOrder {
		s := StyleMap[id]
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/>`, id, styleName(id))
		if strings.HasPrefix(id, "Heading") || id == "Title" {
			b.WriteString(`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/></w:pPr>`)
		} else {
			b.WriteString(`<w:pPr><w:ind w:left="360" w:hanging="240"/></w:pPr>`)
		}
		b.WriteString(`<w:rPr>`)
		if s.Bold {
			b.WriteString(`<w:b/>`)
		}
		if s.Color != "" {
			fmt.Fprintf(&b, `<w:color w:val="%s"/>`, s.Color)
		}
		if s.Size > 0 {
			fmt.Fprintf(&b, `<w:sz w:val="%d"/>`, s.Size)
		}
		b.WriteString(`</w:rPr></w:style>`)
	}
	b.WriteString(`</w:styles>`)
	return b.String()
}

func styleName(id string) string {
	switch id {
	case "ListBullet":
		return "List Bullet"
	case "Heading1", "Heading2", "Heading3":
		return "heading " + strings.TrimPrefix(id, "Heading")
	default:
		return id
	}
}
