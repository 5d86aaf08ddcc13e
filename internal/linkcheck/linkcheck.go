// Package linkcheck verifies the link graph of a governance library.
// Relative links and images must resolve to existing files with exact-case
// paths, fragment links must land on a real heading anchor, and external
// URLs can optionally be probed over HTTP.
package linkcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ethicslab/aigov/internal/docs"
	"github.com/ethicslab/aigov/internal/mdscan"
	"github.com/ethicslab/aigov/internal/types"
)

// Rule identifiers for link findings.
const (
	// RuleMissingTarget fires when a relative link points at no file.
	RuleMissingTarget = "missing-target"

	// RuleCaseMismatch fires when a link differs from the target path only
	// by letter case. Those links break on case-sensitive filesystems.
	RuleCaseMismatch = "case-mismatch"

	// RuleMissingAnchor fires when a fragment has no matching heading.
	RuleMissingAnchor = "missing-anchor"

	// RuleOutsideLibrary fires when a relative link escapes the library root.
	RuleOutsideLibrary = "outside-library"

	// RuleExternal fires when an external URL fails its HTTP probe.
	RuleExternal = "external-link"
)

const (
	defaultTimeout     = 10 * time.Second
	defaultQPS         = 4
	defaultConcurrency = 8
)

// Options configures a Checker.
type Options struct {
	// External enables HTTP probing of absolute URLs.
	External bool

	// Timeout bounds each external request.
	Timeout time.Duration

	// QPS limits external requests per second across all workers.
	QPS float64

	// Concurrency is the number of external probe workers.
	Concurrency int

	// SkipHosts lists hosts excluded from external probing.
	SkipHosts []string
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.QPS <= 0 {
		opts.QPS = defaultQPS
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	return opts
}

// Report aggregates link findings across a library.
type Report struct {
	// Documents is the number of documents scanned.
	Documents int `json:"documents" yaml:"documents"`

	// Links is the number of links examined.
	Links int `json:"links" yaml:"links"`

	// Findings holds all findings, internal first, then external sorted
	// by URL.
	Findings []types.Finding `json:"findings" yaml:"findings"`
}

// Failed reports whether any internal link is broken. External failures
// are warnings and do not fail a run.
func (r Report) Failed() bool {
	for _, f := range r.Findings {
		if f.Severity == types.SeverityError {
			return true
		}
	}
	return false
}

// Checker walks documents and validates their links.
type Checker struct {
	root   string
	opts   Options
	client *http.Client

	// targets caches per-file anchor sets so shared link targets are
	// read once.
	mu      sync.Mutex
	targets map[string]targetInfo
}

type targetInfo struct {
	anchors map[string]bool
	err     error
}

// New returns a Checker for the library rooted at root.
func New(root string, opts Options) *Checker {
	opts = normalizeOptions(opts)
	return &Checker{
		root:    root,
		opts:    opts,
		client:  &http.Client{Timeout: opts.Timeout},
		targets: make(map[string]targetInfo),
	}
}

// occurrence ties an external URL back to the documents referencing it.
type occurrence struct {
	path string
	line int
}

// Run checks every link in the given documents. Internal findings are
// errors; external probe failures are warnings.
func (c *Checker) Run(ctx context.Context, documents []types.Document) (Report, error) {
	report := Report{Documents: len(documents)}
	external := make(map[string][]occurrence)

	for _, doc := range documents {
		scan := mdscan.Scan([]byte(doc.Body))
		for _, link := range scan.Links {
			report.Links++
			dest := strings.TrimSpace(link.Destination)
			switch {
			case dest == "" || strings.HasPrefix(dest, "mailto:") || strings.HasPrefix(dest, "tel:") || strings.HasPrefix(dest, "data:"):
				continue
			case strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://"):
				if c.opts.External {
					trimmed := stripFragment(dest)
					external[trimmed] = append(external[trimmed], occurrence{path: doc.Path, line: link.Line})
				}
			case strings.HasPrefix(dest, "#"):
				report.Findings = append(report.Findings, c.checkFragment(doc, link, strings.TrimPrefix(dest, "#"))...)
			default:
				report.Findings = append(report.Findings, c.checkRelative(doc, link, dest)...)
			}
		}
	}

	if len(external) > 0 {
		findings, err := c.probeExternal(ctx, external)
		if err != nil {
			return report, err
		}
		report.Findings = append(report.Findings, findings...)
	}

	return report, nil
}

// checkRelative validates one relative link or image from doc.
func (c *Checker) checkRelative(doc types.Document, link mdscan.Link, dest string) []types.Finding {
	target, fragment, _ := strings.Cut(dest, "#")
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}

	// Leading slash means library-root relative; anything else resolves
	// against the linking document's directory.
	var rel string
	if strings.HasPrefix(target, "/") {
		rel = path.Clean(strings.TrimPrefix(target, "/"))
	} else {
		rel = path.Clean(path.Join(path.Dir(doc.Path), target))
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return []types.Finding{{
			Path:     doc.Path,
			Line:     link.Line,
			Rule:     RuleOutsideLibrary,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("link %q escapes the library", dest),
		}}
	}

	exact, actual, err := c.resolveExact(rel)
	if err != nil {
		return []types.Finding{{
			Path:     doc.Path,
			Line:     link.Line,
			Rule:     RuleMissingTarget,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("link target %q does not exist", dest),
		}}
	}
	if !exact {
		return []types.Finding{{
			Path:     doc.Path,
			Line:     link.Line,
			Rule:     RuleCaseMismatch,
			Severity: types.SeverityError,
			Message:  fmt.Sprintf("link %q differs in case from %q", dest, actual),
		}}
	}

	if fragment != "" && strings.HasSuffix(rel, ".md") {
		anchors, err := c.anchorsFor(rel)
		if err != nil {
			return []types.Finding{{
				Path:     doc.Path,
				Line:     link.Line,
				Rule:     RuleMissingTarget,
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("cannot read link target %q: %v", rel, err),
			}}
		}
		if !anchors[fragment] {
			return []types.Finding{{
				Path:     doc.Path,
				Line:     link.Line,
				Rule:     RuleMissingAnchor,
				Severity: types.SeverityError,
				Message:  fmt.Sprintf("no heading for anchor %q in %s", fragment, rel),
			}}
		}
	}

	return nil
}

// checkFragment validates a same-document fragment link.
func (c *Checker) checkFragment(doc types.Document, link mdscan.Link, fragment string) []types.Finding {
	if anchorSet(doc.Body)[fragment] {
		return nil
	}
	return []types.Finding{{
		Path:     doc.Path,
		Line:     link.Line,
		Rule:     RuleMissingAnchor,
		Severity: types.SeverityError,
		Message:  fmt.Sprintf("no heading for anchor %q", fragment),
	}}
}

// resolveExact walks rel component by component from the library root,
// comparing directory entries by exact name. It reports whether the path
// exists with exact case, and on a case-only mismatch returns the actual
// on-disk path.
func (c *Checker) resolveExact(rel string) (exact bool, actual string, err error) {
	cur := c.root
	var actualParts []string
	for _, part := range strings.Split(rel, "/") {
		entries, err := os.ReadDir(cur)
		if err != nil {
			return false, "", err
		}
		found := ""
		for _, e := range entries {
			if e.Name() == part {
				found = part
				break
			}
			if strings.EqualFold(e.Name(), part) && found == "" {
				found = e.Name()
			}
		}
		if found == "" {
			return false, "", os.ErrNotExist
		}
		actualParts = append(actualParts, found)
		cur = filepath.Join(cur, found)
	}
	actual = strings.Join(actualParts, "/")
	return actual == rel, actual, nil
}

// anchorsFor returns the heading anchor set of the library file at rel,
// caching results across links.
func (c *Checker) anchorsFor(rel string) (map[string]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if info, ok := c.targets[rel]; ok {
		return info.anchors, info.err
	}

	raw, err := os.ReadFile(filepath.Join(c.root, rel))
	if err != nil {
		c.targets[rel] = targetInfo{err: err}
		return nil, err
	}
	body := string(raw)
	if _, stripped, err := docs.Split(raw); err == nil {
		body = stripped
	}
	anchors := anchorSet(body)
	c.targets[rel] = targetInfo{anchors: anchors}
	return anchors, nil
}

// anchorSet computes the GitHub-style anchor ids for every heading in
// body, numbering repeated headings -1, -2 and so on.
func anchorSet(body string) map[string]bool {
	seen := make(map[string]int)
	out := make(map[string]bool)
	for _, h := range mdscan.Scan([]byte(body)).Headings {
		a := mdscan.Anchor(h.Text)
		if n := seen[a]; n > 0 {
			out[fmt.Sprintf("%s-%d", a, n)] = true
		} else {
			out[a] = true
		}
		seen[a]++
	}
	return out
}

// probeExternal checks each unique URL once over HTTP, HEAD first with a
// GET fallback, under a shared rate limit. Findings come back sorted by
// URL so output is stable.
func (c *Checker) probeExternal(ctx context.Context, external map[string][]occurrence) ([]types.Finding, error) {
	urls := make([]string, 0, len(external))
	for u := range external {
		if c.skipHost(u) {
			continue
		}
		urls = append(urls, u)
	}
	sort.Strings(urls)
	if len(urls) == 0 {
		return nil, nil
	}

	limiter := rate.NewLimiter(rate.Limit(c.opts.QPS), c.opts.Concurrency)
	failures := make([]error, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	jobs := make(chan int)
	workers := c.opts.Concurrency
	if workers > len(urls) {
		workers = len(urls)
	}
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
				failures[i] = c.probe(ctx, urls[i])
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(jobs)
		for i := range urls {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probe external links: %w", err)
	}

	var findings []types.Finding
	for i, u := range urls {
		if failures[i] == nil {
			continue
		}
		for _, occ := range external[u] {
			findings = append(findings, types.Finding{
				Path:     occ.path,
				Line:     occ.line,
				Rule:     RuleExternal,
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("%s: %v", u, failures[i]),
			})
		}
	}
	return findings, nil
}

// probe issues a HEAD request, falling back to GET when HEAD is rejected.
func (c *Checker) probe(ctx context.Context, rawURL string) error {
	status, err := c.request(ctx, http.MethodHead, rawURL)
	if err == nil && status < http.StatusBadRequest {
		return nil
	}
	// Some servers reject HEAD outright.
	status, err = c.request(ctx, http.MethodGet, rawURL)
	if err != nil {
		return err
	}
	if status >= http.StatusBadRequest {
		return fmt.Errorf("status %d", status)
	}
	return nil
}

func (c *Checker) request(ctx context.Context, method, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "aigov-linkcheck")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<14))
	return resp.StatusCode, nil
}

func (c *Checker) skipHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, host := range c.opts.SkipHosts {
		if strings.EqualFold(u.Hostname(), host) {
			return true
		}
	}
	return false
}

func stripFragment(rawURL string) string {
	trimmed, _, _ := strings.Cut(rawURL, "#")
	return trimmed
}
