package report

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"

	ferrors "git.home.luguber.info/inful/opsadapter/internal/foundation/errors"
)

const timestampLayout = "2006-01-02 15:04:05"

// RenderMarkdown lays the report out as a markdown document with one section
// and event table per session.
func RenderMarkdown(r Report) string {
	var b strings.Builder

	b.WriteString("# Diagnostics report\n\n")
	fmt.Fprintf(&b, "Generated %s UTC. %s\n\n", r.GeneratedAt.UTC().Format(timestampLayout), coverage(r.Since))

	if len(r.Sessions) == 0 {
		b.WriteString("No events recorded.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%s, %s, %s.\n\n",
		plural(len(r.Sessions), "session"),
		plural(r.TotalEvents(), "event"),
		plural(r.TotalWarnings(), "warning"))

	for _, session := range r.Sessions {
		b.WriteString("## " + sessionHeading(session) + "\n\n")
		fmt.Fprintf(&b, "Started %s UTC.\n\n", session.StartedAt.UTC().Format(timestampLayout))

		b.WriteString("| Time | Kind | Severity | Message | Details |\n")
		b.WriteString("| --- | --- | --- | --- | --- |\n")
		for _, event := range session.Events {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				event.Time.UTC().Format("15:04:05"),
				event.Kind,
				event.Severity,
				escapeCell(event.Message),
				escapeCell(fieldDetails(event.Fields)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RenderHTML converts a rendered markdown report to HTML. Tables render via
// the GFM extension.
func RenderHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryInternal, "render report HTML").Build()
	}
	return buf.String(), nil
}

// Summary extracts the report outline from rendered HTML: the document title
// and one line per session heading.
func Summary(htmlDoc string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlDoc))
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryInternal, "parse report HTML").Build()
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h1" || n.Data == "h2") {
			if text := textContent(n); text != "" {
				lines = append(lines, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.Join(lines, "\n"), nil
}

func sessionHeading(session SessionReport) string {
	heading := "Session " + shortID(session.SessionID)
	if session.Docset != "" {
		heading += " (" + session.Docset + ")"
	}
	return fmt.Sprintf("%s: %s, %s", heading, plural(len(session.Events), "event"), plural(session.Warnings, "warning"))
}

func coverage(since time.Time) string {
	if since.IsZero() {
		return "Covering all recorded events."
	}
	return fmt.Sprintf("Covering events since %s UTC.", since.UTC().Format(timestampLayout))
}

func fieldDetails(fields map[string]string) string {
	if len(fields) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(fields))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		pairs = append(pairs, key+"="+fields[key])
	}
	return strings.Join(pairs, ", ")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
