package identity

import "errors"

// ErrNoMatch reports that no catalog identity could be resolved for a
// title. It covers both a genuine no-result and a terminal lookup failure;
// either way the film proceeds through the pipeline unidentified.
var ErrNoMatch = errors.New("no identity match")

// Identity is a resolved external identity reference.
type Identity struct {
	// URL is the canonical rating-source film page.
	URL string
	// ShortURL is the share link, filled in during enrichment.
	ShortURL string
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool { return id.URL == "" }
