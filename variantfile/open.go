package variantfile

import (
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// ExpandHome expands ~ to its proper path, where appropriate.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		path = filepath.Join(usr.HomeDir, (path)[2:])
	}

	return path
}

// Open opens a local or gs:// path for reading, expanding ~ and
// transparently decompressing gzip/zip/xz/zlib/bzip2 streams by signature.
// The caller must Close the returned reader.
func Open(path string) (io.ReadCloser, error) {
	rsc, err := openRaw(path)
	if err != nil {
		return nil, err
	}

	return maybeDecompress(rsc)
}

// Raw opens the path like Open but without decompression, yielding the
// object's bytes exactly as stored.
func Raw(path string) (io.ReadCloser, error) {
	return openRaw(path)
}

// openRaw opens the path without looking at the content.
func openRaw(path string) (io.ReadSeekCloser, error) {
	path = ExpandHome(path)

	if strings.HasPrefix(path, "gs://") {
		return openGoogleStorage(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return f, nil
}

// slurp reads the whole decompressed object into memory.
func slurp(path string) ([]byte, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return data, nil
}

// slurpRaw reads the object byte-for-byte, skipping decompression. The
// spreadsheet formats need this: an .xlsx is itself a zip archive, and
// unwrapping it would destroy the workbook.
func slurpRaw(path string) ([]byte, error) {
	r, err := openRaw(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, pfx.Err(err)
	}

	return data, nil
}
