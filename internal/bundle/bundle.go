// Package bundle exports a governance library into a single compressed
// archive and restores one, so a complete documentation set can be handed
// to an auditor or moved between machines. Every document travels with a
// sha256 checksum recorded in an embedded manifest.
package bundle

import (
	"archive/tar"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/renameio/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/ethicslab/aigov/internal/docs"
	"github.com/ethicslab/aigov/internal/library"
)

// ManifestName is the archive entry holding bundle metadata. It is always
// the first entry so imports can read it before any document.
const ManifestName = "manifest.json"

var (
	// ErrNotEmpty is returned when importing into a library that already
	// holds documents and force was not given.
	ErrNotEmpty = errors.New("library is not empty")

	// ErrChecksum is returned when an archived document does not match its
	// manifest checksum.
	ErrChecksum = errors.New("checksum mismatch")

	// ErrNoManifest is returned when the archive does not start with a
	// manifest entry.
	ErrNoManifest = errors.New("bundle has no manifest.json")
)

// Manifest describes the contents of a bundle.
type Manifest struct {
	Tool      string         `json:"tool"`
	Version   string         `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	Documents int            `json:"documents"`
	Files     []ManifestFile `json:"files"`
}

// ManifestFile records one archived document.
type ManifestFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// DefaultName returns the conventional bundle filename for a given day.
func DefaultName(now time.Time) string {
	return fmt.Sprintf("aigov-bundle-%s.tar.zst", now.Format("2006-01-02"))
}

// Export writes every managed document plus a manifest into a
// zstd-compressed tar archive at out. Files that fail to parse are not
// managed documents and are returned for the caller to report.
func Export(lib *library.Library, out, version string, now time.Time) (Manifest, []docs.FileError, error) {
	documents, failures, err := lib.Scan()
	if err != nil {
		return Manifest{}, nil, err
	}

	manifest := Manifest{
		Tool:      "aigov",
		Version:   version,
		CreatedAt: now.UTC(),
		Documents: len(documents),
	}

	type payload struct {
		rel string
		raw []byte
	}
	payloads := make([]payload, 0, len(documents))
	for _, doc := range documents {
		raw, err := os.ReadFile(filepath.Join(lib.Root(), filepath.FromSlash(doc.Path)))
		if err != nil {
			return Manifest{}, nil, fmt.Errorf("read %s: %w", doc.Path, err)
		}
		payloads = append(payloads, payload{rel: doc.Path, raw: raw})
		manifest.Files = append(manifest.Files, ManifestFile{
			Path:   doc.Path,
			SHA256: sha256Hex(raw),
			Size:   int64(len(raw)),
		})
	}
	sort.Slice(payloads, func(i, j int) bool { return payloads[i].rel < payloads[j].rel })
	sort.Slice(manifest.Files, func(i, j int) bool { return manifest.Files[i].Path < manifest.Files[j].Path })

	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("create zstd writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	manifestRaw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(tw, ManifestName, manifestRaw, now); err != nil {
		return Manifest{}, nil, err
	}
	for _, p := range payloads {
		if err := writeEntry(tw, p.rel, p.raw, now); err != nil {
			return Manifest{}, nil, err
		}
	}

	if err := tw.Close(); err != nil {
		return Manifest{}, nil, fmt.Errorf("finalize archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		return Manifest{}, nil, fmt.Errorf("finalize compression: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Manifest{}, nil, fmt.Errorf("create directory for %s: %w", out, err)
	}
	if err := renameio.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return Manifest{}, nil, fmt.Errorf("write %s: %w", out, err)
	}

	return manifest, failures, nil
}

// Import restores a bundle into lib, verifying each document against the
// manifest checksum before writing it. Unless force is set the library
// must hold no documents. The caller is responsible for reindexing.
func Import(lib *library.Library, file string, force bool) (Manifest, error) {
	if !force {
		existing, failures, err := lib.Scan()
		if err != nil {
			return Manifest{}, err
		}
		if len(existing) > 0 || len(failures) > 0 {
			return Manifest{}, fmt.Errorf("%w: %d documents at %s", ErrNotEmpty, len(existing)+len(failures), lib.Root())
		}
	}

	f, err := os.Open(file)
	if err != nil {
		return Manifest{}, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return Manifest{}, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	tr := tar.NewReader(zr)

	hdr, err := tr.Next()
	if err != nil {
		return Manifest{}, fmt.Errorf("read bundle: %w", err)
	}
	if hdr.Name != ManifestName {
		return Manifest{}, fmt.Errorf("%w: first entry is %s", ErrNoManifest, hdr.Name)
	}
	var manifest Manifest
	if err := json.NewDecoder(tr).Decode(&manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}

	want := make(map[string]ManifestFile, len(manifest.Files))
	for _, mf := range manifest.Files {
		want[mf.Path] = mf
	}

	restored := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Manifest{}, fmt.Errorf("read bundle: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		rel, err := safeRel(hdr.Name)
		if err != nil {
			return Manifest{}, err
		}
		mf, ok := want[rel]
		if !ok {
			return Manifest{}, fmt.Errorf("bundle entry %s is not in the manifest", rel)
		}

		raw, err := io.ReadAll(tr)
		if err != nil {
			return Manifest{}, fmt.Errorf("read %s: %w", rel, err)
		}
		if got := sha256Hex(raw); got != mf.SHA256 {
			return Manifest{}, fmt.Errorf("%w: %s", ErrChecksum, rel)
		}

		abs := filepath.Join(lib.Root(), filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return Manifest{}, fmt.Errorf("create directory for %s: %w", rel, err)
		}
		if err := renameio.WriteFile(abs, raw, 0o644); err != nil {
			return Manifest{}, fmt.Errorf("write %s: %w", rel, err)
		}
		restored++
	}

	if restored != len(manifest.Files) {
		return Manifest{}, fmt.Errorf("bundle restored %d of %d documents", restored, len(manifest.Files))
	}
	return manifest, nil
}

// writeEntry appends one regular file to the archive.
func writeEntry(tw *tar.Writer, name string, raw []byte, modTime time.Time) error {
	hdr := &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     int64(len(raw)),
		ModTime:  modTime.UTC(),
		Typeflag: tar.TypeReg,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("write header %s: %w", name, err)
	}
	if _, err := tw.Write(raw); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// safeRel validates an archive entry name and returns it as a clean
// library-relative slash path. Entries must not escape the library root.
func safeRel(name string) (string, error) {
	rel := path.Clean(strings.ReplaceAll(name, `\`, "/"))
	if rel == "." || path.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("bundle entry %s escapes the library", name)
	}
	return rel, nil
}

// sha256Hex returns the full hex SHA-256 of raw.
func sha256Hex(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
