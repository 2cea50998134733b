package variantfile

import (
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"

	"github.com/carbocation/pfx"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

type dataType byte

const (
	dataTypeInvalid dataType = iota
	dataTypeNoCompression
	dataTypeGzip
	dataTypeZip
	dataTypeXZ
	dataTypeZ
	dataTypeBZip2
)

var byteCodeSigs = map[dataType][]byte{
	dataTypeGzip:  {0x1f, 0x8b, 0x08},
	dataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	dataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	dataTypeZ:     {0x1f, 0x9d},
	dataTypeBZip2: {0x42, 0x5a, 0x68},
}

// detectDataType checks a stream's leading bytes against known compression
// signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func detectDataType(r io.Reader) (dataType, error) {
	buff := make([]byte, 6)
	if _, err := io.ReadFull(r, buff); err == io.EOF || err == io.ErrUnexpectedEOF {
		// Too short for any signature; treat as plain data.
		return dataTypeNoCompression, nil
	} else if err != nil {
		return dataTypeInvalid, err
	}

Outer:
	for dt, sig := range byteCodeSigs {
		for position := range sig {
			if buff[position] != sig[position] {
				continue Outer
			}
		}
		return dt, nil
	}

	return dataTypeNoCompression, nil
}

// maybeDecompress sniffs the stream and, when it opens with a known
// compression signature, wraps it in the matching decompressor. The stream
// must be rewound before the decompressor sees it, since detection consumed
// the signature bytes.
func maybeDecompress(rsc io.ReadSeekCloser) (io.ReadCloser, error) {
	dt, err := detectDataType(rsc)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if _, err := rsc.Seek(0, io.SeekStart); err != nil {
		return nil, pfx.Err(err)
	}

	switch dt {
	case dataTypeGzip:
		r, err := gzip.NewReader(rsc)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &wrappedDecompressor{r, rsc}, nil
	case dataTypeZip:
		// Position at the archive's first entry; that entry is the table.
		zr := zipstream.NewReader(rsc)
		if _, err := zr.Next(); err != nil {
			return nil, pfx.Err(err)
		}
		return &wrappedDecompressor{zr, rsc}, nil
	case dataTypeBZip2:
		return &wrappedDecompressor{bzip2.NewReader(rsc), rsc}, nil
	case dataTypeXZ:
		r, err := xz.NewReader(rsc, 0)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &wrappedDecompressor{r, rsc}, nil
	case dataTypeZ:
		r, err := zlib.NewReader(rsc)
		if err != nil {
			return nil, pfx.Err(err)
		}
		return &wrappedDecompressor{r, rsc}, nil
	}

	return rsc, nil
}

// wrappedDecompressor reads decompressed bytes but closes the underlying
// source.
type wrappedDecompressor struct {
	io.Reader
	source io.Closer
}

func (w *wrappedDecompressor) Close() error {
	return w.source.Close()
}
