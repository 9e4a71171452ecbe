// Package textutil provides title normalization and lightweight text
// similarity used by identity resolution and merge keying.
package textutil
