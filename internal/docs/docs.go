// Package docs parses and serializes managed governance documents: a YAML
// frontmatter block followed by a Markdown body.
package docs

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ethicslab/aigov/internal/types"
)

var (
	// ErrNoFrontmatter is returned for files that do not start with a
	// frontmatter delimiter.
	ErrNoFrontmatter = errors.New("document has no frontmatter block")

	// ErrUnclosedFrontmatter is returned when the opening delimiter is
	// never closed.
	ErrUnclosedFrontmatter = errors.New("frontmatter block is not closed")
)

const delimiter = "---"

// Split separates the raw file into frontmatter bytes and Markdown body.
// The file must open with a "---" line; the frontmatter runs until the
// next "---" line.
func Split(raw []byte) (front []byte, body string, err error) {
	normalized := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	lines := strings.SplitAfter(string(normalized), "\n")
	if len(lines) == 0 || strings.TrimRight(lines[0], "\n") != delimiter {
		return nil, "", ErrNoFrontmatter
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\n") == delimiter {
			front = []byte(strings.Join(lines[1:i], ""))
			body = strings.Join(lines[i+1:], "")
			body = strings.TrimPrefix(body, "\n")
			return front, body, nil
		}
	}
	return nil, "", ErrUnclosedFrontmatter
}

// Checksum returns the first 16 hex characters of the SHA-256 of raw,
// enough to detect drift without bloating the catalog.
func Checksum(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])[:16]
}

// Parse builds a Document from raw file content. Path is stored as given;
// callers pass library-relative paths.
func Parse(path string, raw []byte) (types.Document, error) {
	front, body, err := Split(raw)
	if err != nil {
		return types.Document{}, fmt.Errorf("parse %s: %w", path, err)
	}

	var fm types.Frontmatter
	if err := yaml.Unmarshal(front, &fm); err != nil {
		return types.Document{}, fmt.Errorf("parse %s frontmatter: %w", path, err)
	}

	return types.Document{
		Path:     path,
		Front:    fm,
		Body:     body,
		Checksum: Checksum(raw),
	}, nil
}

// Serialize renders a Document back to file bytes: delimited frontmatter,
// one blank line, then the body.
func Serialize(doc types.Document) ([]byte, error) {
	front, err := yaml.Marshal(doc.Front)
	if err != nil {
		return nil, fmt.Errorf("serialize %s frontmatter: %w", doc.Path, err)
	}

	var b bytes.Buffer
	b.WriteString(delimiter + "\n")
	b.Write(front)
	b.WriteString(delimiter + "\n\n")
	b.WriteString(doc.Body)
	return b.Bytes(), nil
}

// Load reads and parses a document from disk. The stored Path is rel when
// non-empty, otherwise the given path.
func Load(path, rel string) (types.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	stored := rel
	if stored == "" {
		stored = path
	}
	return Parse(stored, raw)
}

// FileError records a file that could not be parsed during a scan.
type FileError struct {
	// Path is the offending file relative to the scan root.
	Path string

	// Err is the parse failure.
	Err error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Scan walks root collecting every parseable managed document. Dot
// directories (.aigov, .git) are skipped. Files that fail to parse are
// collected as FileErrors rather than aborting the walk; only the walk
// itself failing returns a non-nil error.
func Scan(root string) ([]types.Document, []FileError, error) {
	var found []types.Document
	var failures []FileError

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		doc, err := Load(path, rel)
		if err != nil {
			failures = append(failures, FileError{Path: rel, Err: err})
			return nil
		}
		found = append(found, doc)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", root, err)
	}

	return found, failures, nil
}
