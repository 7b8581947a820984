// Package notes reads and writes the notes files that accompany tasks: a
// body of free text below an optional YAML header delimited by "---" lines.
package notes

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Document is a notes file. Header is nil when the file has none, or when
// the one it has could not be parsed.
type Document struct {
	Path    string
	Header  *Header
	Content string
}

func New(path string) *Document {
	return &Document{Path: path}
}

func (d *Document) WithHeader(h Header) *Document {
	d.Header = &h
	return d
}

func (d *Document) WithContent(content string) *Document {
	d.Content = content
	return d
}

// Header is the structured metadata at the top of a document.
type Header struct {
	Title    string   `yaml:"title"`
	Date     Date     `yaml:"date,omitempty"`
	Keywords []string `yaml:"keywords"`

	// Extra keeps keys this package does not know about.
	Extra map[string]any `yaml:",inline"`
}

func NewHeader(title string, date Date) Header {
	return Header{Title: title, Date: date, Keywords: []string{}}
}

// Date is a calendar date without time of day, rendered as YYYY-MM-DD.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

const dateLayout = "2006-01-02"

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// IsZero reports whether d is unset, as for a header without a date key.
func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// MarshalYAML emits the date as a plain timestamp scalar; a string would be quoted.
func (d Date) MarshalYAML() (any, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: d.String()}, nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", value.Line)
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = parsed
	return nil
}

// ParseHeader decodes header text, the lines between the two delimiters.
// The text must be a YAML mapping.
func ParseHeader(text string) (*Header, error) {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse header: not a mapping")
	}
	var h Header
	if err := node.Content[0].Decode(&h); err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}
	return &h, nil
}

// Render returns the header as YAML, each line newline-terminated.
func (h Header) Render() (string, error) {
	if h.Keywords == nil {
		h.Keywords = []string{}
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(h); err != nil {
		return "", fmt.Errorf("render header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("render header: %w", err)
	}
	return buf.String(), nil
}

// Parse never fails. A header that cannot be interpreted is dropped and its
// text stays part of Content, so a hand-edited file is always readable.
func Parse(text string) *Document {
	trimmed := strings.TrimSpace(text)
	headerText, body, ok := splitHeader(trimmed)
	if !ok {
		return &Document{Content: trimmed}
	}
	h, err := ParseHeader(headerText)
	if err != nil {
		return &Document{Content: trimmed}
	}
	return &Document{Header: h, Content: body}
}

// splitHeader separates a leading "---" block from the rest of s. It needs
// an opening delimiter on the first line and a closing one further down.
func splitHeader(s string) (header, body string, ok bool) {
	s = strings.TrimSpace(s)
	first, rest, found := strings.Cut(s, "\n")
	if !found || strings.TrimRight(first, "\r") != delimiter {
		return "", "", false
	}
	lines := strings.SplitAfter(rest, "\n")
	for i, line := range lines {
		if strings.TrimRight(line, "\r\n") != delimiter {
			continue
		}
		header = strings.Join(lines[:i], "")
		body = strings.Join(lines[i+1:], "")
		return strings.TrimSpace(header), strings.TrimSpace(body), true
	}
	return "", "", false
}

// Render returns the file contents: the delimited header if there is one,
// a blank line, then Content.
func (d *Document) Render() (string, error) {
	if d.Header == nil {
		return d.Content, nil
	}
	header, err := d.Header.Render()
	if err != nil {
		return "", err
	}
	return delimiter + "\n" + header + delimiter + "\n\n" + d.Content, nil
}

// Write creates or truncates the file at d.Path. The parent directory must
// already exist.
func (d *Document) Write() error {
	rendered, err := d.Render()
	if err != nil {
		return err
	}
	if err := os.WriteFile(d.Path, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("write notes file: %w", err)
	}
	return nil
}

// Open reads and parses the file at path.
func Open(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read notes file: %w", err)
	}
	doc := Parse(string(b))
	doc.Path = path
	return doc, nil
}
