// Package archive moves expired sessions out of the live dataset into
// historical bundles keyed by month window. Films themselves are never
// removed, only their past sessions; a film left without sessions stays in
// the dataset so its identity and metadata survive.
package archive
