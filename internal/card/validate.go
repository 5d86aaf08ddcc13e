package card

import (
	"errors"

	"github.com/ethicslab/aigov/internal/taxonomy"
)

// Canonicalize checks the vocabulary-bound fields against the governance
// taxonomies and rewrites them into canonical display form. Name, version,
// and data source are free text and never touched. Used by the wizard's
// --strict mode; the default generate path accepts any value.
func Canonicalize(f *Fields) error {
	var errs []error
	if tier, err := taxonomy.CanonicalTier(f.Tier); err != nil {
		errs = append(errs, err)
	} else {
		f.Tier = string(tier)
	}
	if cat, err := taxonomy.CanonicalCategory(f.Category); err != nil {
		errs = append(errs, err)
	} else {
		f.Category = string(cat)
	}
	if level, err := taxonomy.CanonicalLevel(f.Protection); err != nil {
		errs = append(errs, err)
	} else {
		f.Protection = string(level)
	}
	if tech, err := taxonomy.CanonicalTechnique(f.Privacy); err != nil {
		errs = append(errs, err)
	} else {
		f.Privacy = string(tech)
	}
	return errors.Join(errs...)
}
