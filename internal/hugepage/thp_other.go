//go:build !linux

package hugepage

// THPMode reports that transparent huge pages are a Linux feature.
func THPMode() string {
	return "unsupported"
}
