package fs

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// hashFile returns the xxhash digest of the file at path.
func hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from resolved inputs
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// sameContent reports whether dst already holds the content of src.
func sameContent(src, dst string) bool {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(dst)
	if err != nil || !dstInfo.Mode().IsRegular() || dstInfo.Size() != srcInfo.Size() {
		return false
	}

	srcSum, err := hashFile(src)
	if err != nil {
		return false
	}
	dstSum, err := hashFile(dst)
	if err != nil {
		return false
	}
	return srcSum == dstSum
}
