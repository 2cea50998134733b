package variantfile

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
)

// gsReadSeekCloser decorates a Google Storage object handle with io.Reader,
// io.Seeker, and io.Closer. Seeking is not actually possible against the
// remote object; a Seek to the start closes the current connection and
// reopens a range reader at the requested offset.
type gsReadSeekCloser struct {
	handle *storage.ObjectHandle
	ctx    context.Context
	r      *storage.Reader
	offset int64
}

func (s *gsReadSeekCloser) Read(buf []byte) (int, error) {
	if s.r == nil {
		var err error
		s.r, err = s.handle.NewRangeReader(s.ctx, s.offset, -1)
		if err != nil {
			return 0, err
		}
	}

	n, err := s.r.Read(buf)
	s.offset += int64(n)
	return n, err
}

func (s *gsReadSeekCloser) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, fmt.Errorf("gs seek: whence %d is not implemented", whence)
	}

	if s.r != nil {
		s.r.Close()
		s.r = nil
	}
	s.offset = offset

	return s.offset, nil
}

func (s *gsReadSeekCloser) Close() error {
	if s.r == nil {
		return nil
	}
	return s.r.Close()
}

// openGoogleStorage opens a gs://bucket/path object with default
// credentials.
func openGoogleStorage(path string) (io.ReadSeekCloser, error) {
	pathParts := strings.SplitN(strings.TrimPrefix(path, "gs://"), "/", 2)
	if len(pathParts) != 2 {
		return nil, pfx.Err(fmt.Errorf("tried to split google storage path %q into bucket and object, got %d parts", path, len(pathParts)))
	}

	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, pfx.Err(err)
	}

	handle := client.Bucket(pathParts[0]).Object(pathParts[1])

	// A hard call so that a bad path fails here rather than mid-read
	if _, err := handle.Attrs(ctx); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %s", path, err))
	}

	return &gsReadSeekCloser{handle: handle, ctx: ctx}, nil
}
