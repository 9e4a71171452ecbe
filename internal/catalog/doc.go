// Package catalog defines the canonical data model for the film dataset:
// films, their screening sessions, and the descriptive metadata attached
// after identity resolution. The dataset is an explicit value passed through
// the merge and archive transformations, never shared global state.
package catalog
