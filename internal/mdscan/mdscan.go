// Package mdscan extracts structure from Markdown bodies: headings, links,
// and GFM task-list items, with source line numbers for findings.
package mdscan

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// Heading is one Markdown heading.
type Heading struct {
	// Level is the heading level, 1-6.
	Level int

	// Text is the flattened heading text.
	Text string

	// Line is the 1-based source line.
	Line int
}

// Link is one link or image reference.
type Link struct {
	// Destination is the raw link target.
	Destination string

	// Line is the 1-based source line of the enclosing block.
	Line int

	// Image reports whether this was an image reference.
	Image bool
}

// Task is one GFM task-list item.
type Task struct {
	// Checked reports whether the box is ticked.
	Checked bool

	// Text is the flattened item text.
	Text string

	// Line is the 1-based source line.
	Line int
}

// Result is everything one parse pass extracts.
type Result struct {
	Headings []Heading
	Links    []Link
	Tasks    []Task
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Scan parses src once and returns all extracted structure.
func Scan(src []byte) Result {
	root := md.Parser().Parse(text.NewReader(src))

	var res Result
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			res.Headings = append(res.Headings, Heading{
				Level: node.Level,
				Text:  flatten(node, src),
				Line:  blockLine(node, src),
			})
		case *ast.Link:
			res.Links = append(res.Links, Link{
				Destination: string(node.Destination),
				Line:        blockLine(node, src),
			})
		case *ast.Image:
			res.Links = append(res.Links, Link{
				Destination: string(node.Destination),
				Line:        blockLine(node, src),
				Image:       true,
			})
		case *ast.AutoLink:
			res.Links = append(res.Links, Link{
				Destination: string(node.URL(src)),
				Line:        blockLine(node, src),
			})
		case *east.TaskCheckBox:
			parent := node.Parent()
			res.Tasks = append(res.Tasks, Task{
				Checked: node.IsChecked,
				Text:    flatten(parent, src),
				Line:    blockLine(parent, src),
			})
		}
		return ast.WalkContinue, nil
	})
	return res
}

// Anchor converts heading text to its GitHub-style fragment identifier:
// lowercase, punctuation stripped, spaces become hyphens.
func Anchor(heading string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(heading)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteByte('-')
		case r == '_':
			b.WriteByte('_')
		}
	}
	return b.String()
}

// flatten collects the text content under n, joining soft breaks with
// spaces.
func flatten(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockLine finds the 1-based source line of the nearest block ancestor.
// Inline nodes carry no position, so the enclosing block's first segment
// stands in.
func blockLine(n ast.Node, src []byte) int {
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Type() != ast.TypeBlock {
			continue
		}
		if lines := cur.Lines(); lines != nil && lines.Len() > 0 {
			return lineAt(src, lines.At(0).Start)
		}
	}
	return 0
}

// lineAt counts newlines before offset.
func lineAt(src []byte, offset int) int {
	line := 1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
		}
	}
	return line
}
