//go:build !unix

package savefile

// setUmask is a no-op on platforms without a umask; the temp file is still
// created with DefaultFilePerm.
func setUmask(int) (restore func()) {
	return func() {}
}
