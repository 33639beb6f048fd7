package sections

import (
	"fmt"

	"resume-builder/internal/shared/validation"
)

// checkPermutation reports whether ids names every current section exactly once.
func checkPermutation(current []Section, ids []string) error {
	known := make(map[string]struct{}, len(current))
	for _, s := range current {
		known[s.ID] = struct{}{}
	}

	var errs validation.Errors
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			errs = append(errs, validation.Field("sectionIds", fmt.Sprintf("unknown section id %q", id)))
			continue
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, validation.Field("sectionIds", fmt.Sprintf("duplicate section id %q", id)))
			continue
		}
		seen[id] = struct{}{}
	}
	if len(errs) == 0 && len(seen) != len(known) {
		errs = append(errs, validation.Field("sectionIds", "must list every section of the resume"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errs)
	}
	return nil
}
