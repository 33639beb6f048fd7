package sections

import "strings"

// Assemble renders ordered sections into one markdown document. Each section
// becomes "## <title>\n\n<body>"; a blank title drops the heading, a blank
// body drops the body, and sections are separated by a blank line.
func Assemble(sections []Section) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if part := renderSection(s); part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "\n\n")
}

func renderSection(s Section) string {
	title := strings.TrimSpace(s.Title)
	body := strings.TrimSpace(s.Markdown)
	switch {
	case title == "":
		return body
	case body == "":
		return "## " + title
	default:
		return "## " + title + "\n\n" + body
	}
}
