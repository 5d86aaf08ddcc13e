// Package search provides an inverted keyword index over the library's
// Markdown documents. The index lives as JSONL under the library's .aigov
// directory and maps lowercase terms to the documents containing them.
package search

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/google/renameio/v2"
)

// Index is an in-memory inverted index mapping lowercase terms to the
// set of library-relative document paths that contain them.
type Index struct {
	// Terms maps each lowercase term to a set of document paths.
	Terms map[string]map[string]bool `json:"-"`
}

// Entry is the JSONL-serialized form: one line per term.
type Entry struct {
	Term  string   `json:"term"`
	Paths []string `json:"paths"`
}

// Result is one search hit.
type Result struct {
	// Path is the matching document, relative to the library root.
	Path string

	// Score is the number of query terms matched.
	Score int
}

// New creates an empty index.
func New() *Index {
	return &Index{Terms: make(map[string]map[string]bool)}
}

// Build walks the library under root and indexes every Markdown file.
// Dot directories (.aigov, .git) are skipped so the index never indexes
// itself. Unreadable files are skipped rather than failing the build.
func Build(root string) (*Index, error) {
	idx := New()

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
		if filepath.Ext(path) != ".md" {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		idx.Add(filepath.ToSlash(rel), content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("build index for %s: %w", root, err)
	}

	return idx, nil
}

// Add indexes the content of one document under its library-relative path.
// Existing entries for the path are replaced.
func (idx *Index) Add(rel string, content []byte) {
	idx.Remove(rel)
	for _, term := range tokenize(string(content)) {
		if idx.Terms[term] == nil {
			idx.Terms[term] = make(map[string]bool)
		}
		idx.Terms[term][rel] = true
	}
}

// Remove drops all entries for the given path, for when a document is
// deleted or about to be re-indexed.
func (idx *Index) Remove(rel string) {
	for term, paths := range idx.Terms {
		delete(paths, rel)
		if len(paths) == 0 {
			delete(idx.Terms, term)
		}
	}
}

// Docs returns the number of distinct documents in the index.
func (idx *Index) Docs() int {
	seen := make(map[string]bool)
	for _, paths := range idx.Terms {
		for p := range paths {
			seen[p] = true
		}
	}
	return len(seen)
}

// Search finds documents matching the query and returns up to limit
// results sorted by descending score, ties broken by path.
func (idx *Index) Search(query string, limit int) []Result {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	scores := make(map[string]int)
	for _, term := range queryTerms {
		for doc := range idx.Terms[term] {
			scores[doc]++
		}
	}
	if len(scores) == 0 {
		return nil
	}

	results := make([]Result, 0, len(scores))
	for path, score := range scores {
		results = append(results, Result{Path: path, Score: score})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Path < results[j].Path
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Save writes the index atomically as JSONL, one sorted term per line.
func (idx *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	terms := make([]string, 0, len(idx.Terms))
	for term := range idx.Terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	var buf bytes.Buffer
	for _, term := range terms {
		docs := idx.Terms[term]
		if len(docs) == 0 {
			continue
		}
		paths := make([]string, 0, len(docs))
		for p := range docs {
			paths = append(paths, p)
		}
		sort.Strings(paths)

		data, err := json.Marshal(Entry{Term: term, Paths: paths})
		if err != nil {
			return fmt.Errorf("marshal term %q: %w", term, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

// Load reads an index from its JSONL file. Malformed lines are skipped.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	idx := New()
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		docs := make(map[string]bool, len(entry.Paths))
		for _, p := range entry.Paths {
			docs[p] = true
		}
		idx.Terms[entry.Term] = docs
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	return idx, nil
}

func isTokenSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
}

// tokenize splits text into lowercase word tokens, dropping tokens
// shorter than two characters and duplicates while preserving order.
func tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), isTokenSeparator)
	result := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if len(w) < 2 || seen[w] {
			continue
		}
		seen[w] = true
		result = append(result, w)
	}
	return result
}
