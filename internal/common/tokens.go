package common

import (
	"strings"

	"github.com/samber/lo"
)

// StripStrings trims whitespace off every element of x and drops the ones
// that end up empty. The Go shape of instant.strip_strings.
func StripStrings(x []string) []string {
	return lo.FilterMap(x, func(s string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(s)
		return trimmed, trimmed != ""
	})
}

// ArgStrings splits every element of x on whitespace first (so a caller can
// pass either one flag per element or a single "-O2 -Wall"-style string),
// then trims and drops empties. The Go shape of instant.arg_strings, which in
// the original accepts either a single whitespace-separated string or a
// sequence of strings; spec §3 folds both into "strings-with-whitespace are
// split on whitespace first, then each token trimmed".
func ArgStrings(x []string) []string {
	var tokens []string
	for _, s := range x {
		tokens = append(tokens, strings.Fields(s)...)
	}
	return StripStrings(tokens)
}
