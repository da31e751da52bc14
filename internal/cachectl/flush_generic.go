//go:build !amd64 || noasm

package cachectl

func init() {
	initCapabilities()
}

func newFlushController() Controller {
	return GenericController{}
}
