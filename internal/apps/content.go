package apps

import "fmt"

// Placeholder is the content used for apps without a dedicated factory.
type Placeholder struct {
	WindowID string
	AppKey   string
	Title    string
	Body     string
}

func (p Placeholder) Lines() []string {
	lines := []string{p.Title}
	if p.Body != "" {
		lines = append(lines, "", p.Body)
	}
	lines = append(lines, "", fmt.Sprintf("Content for %s (window %s)", p.AppKey, p.WindowID))
	return lines
}

// Text is static multi-line content.
type Text []string

func (t Text) Lines() []string { return t }

// TextFactory returns a factory that always produces lines.
func TextFactory(lines ...string) Factory {
	return func(string, string) Content {
		return Text(lines)
	}
}
