package local

import (
	"regexp"
	"strings"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockBullet
)

type block struct {
	kind  blockKind
	level int
	text  string
}

type run struct {
	text string
	bold bool
}

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletPattern  = regexp.MustCompile(`^[-*+]\s+(.*)$`)
)

// parseMarkdown splits markdown into headings, bullets and paragraphs.
// Consecutive plain lines join into one paragraph.
func parseMarkdown(md string) []block {
	var (
		blocks []block
		para   []string
	)
	flush := func() {
		if len(para) > 0 {
			blocks = append(blocks, block{kind: blockParagraph, text: strings.Join(para, " ")})
			para = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()
			continue
		}
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			blocks = append(blocks, block{kind: blockHeading, level: len(m[1]), text: strings.TrimSpace(m[2])})
			continue
		}
		if m := bulletPattern.FindStringSubmatch(line); m != nil {
			flush()
			blocks = append(blocks, block{kind: blockBullet, text: strings.TrimSpace(m[1])})
			continue
		}
		para = append(para, line)
	}
	flush()
	return blocks
}

// parseInline splits text on ** markers. An unmatched trailing marker is
// kept as literal text.
func parseInline(text string) []run {
	parts := strings.Split(text, "**")
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		parts[last-1] = parts[last-1] + "**" + parts[last]
		parts = parts[:last]
	}
	out := make([]run, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, run{text: p, bold: i%2 == 1})
	}
	return out
}
