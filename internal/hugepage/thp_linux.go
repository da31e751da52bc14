//go:build linux

package hugepage

import (
	"os"
	"strings"
)

const thpEnabledPath = "/sys/kernel/mm/transparent_hugepage/enabled"

// THPMode returns the active transparent huge page policy, for example
// "always", "madvise" or "never".
func THPMode() string {
	raw, err := os.ReadFile(thpEnabledPath)
	if err != nil {
		return "unknown"
	}
	return parseTHPMode(string(raw))
}

// parseTHPMode extracts the bracketed choice from "always [madvise] never".
func parseTHPMode(s string) string {
	for _, f := range strings.Fields(s) {
		if strings.HasPrefix(f, "[") && strings.HasSuffix(f, "]") {
			return strings.Trim(f, "[]")
		}
	}
	return "unknown"
}
