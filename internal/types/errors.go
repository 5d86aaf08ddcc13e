package types

import "errors"

// Sentinel errors for frontmatter validation. Using sentinels allows
// callers to match with errors.Is for reliable error handling.
var (
	// ErrMissingID is returned when frontmatter has no id.
	ErrMissingID = errors.New("frontmatter id must not be empty")

	// ErrMissingKind is returned when frontmatter has no kind.
	ErrMissingKind = errors.New("frontmatter kind must not be empty")

	// ErrMissingTitle is returned when frontmatter has no title.
	ErrMissingTitle = errors.New("frontmatter title must not be empty")

	// ErrUnknownKind is returned when frontmatter kind is not a known DocKind.
	ErrUnknownKind = errors.New("frontmatter kind is not recognized")
)

// ValidateFrontmatter checks the fields every managed document must carry.
// Vocabulary checks (tier, category, framework) live in the taxonomy
// package; this covers only structural requirements.
func ValidateFrontmatter(fm Frontmatter) error {
	if fm.ID == "" {
		return ErrMissingID
	}
	if fm.Kind == "" {
		return ErrMissingKind
	}
	if !fm.Kind.Valid() {
		return ErrUnknownKind
	}
	if fm.Title == "" {
		return ErrMissingTitle
	}
	return nil
}
