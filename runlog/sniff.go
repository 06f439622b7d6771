package runlog

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"compress/zlib"
	"io"
	"os"

	"github.com/csimplestring/go-csv/detector"
	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// sniffDelimiter returns the most likely delimiter for the log content.
// Instrument exports come through as comma-, tab-, or semicolon-delimited
// depending on which analysis tool produced them.
func sniffDelimiter(raw []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(raw), '"')

	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	return ','
}

type compression byte

const (
	compressionNone compression = iota
	compressionGzip
	compressionZip
	compressionXZ
	compressionZlib
	compressionBZip2
)

// Magic-byte signatures, via https://stackoverflow.com/a/19127748/199475
var compressionSigs = map[compression][]byte{
	compressionGzip:  {0x1f, 0x8b, 0x08},
	compressionZip:   {0x50, 0x4b, 0x03, 0x04},
	compressionXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	compressionZlib:  {0x78, 0x9c},
	compressionBZip2: {0x42, 0x5a, 0x68},
}

func detectCompression(f *os.File) (compression, error) {
	buff := make([]byte, 6)
	n, err := f.Read(buff)
	if err != nil && err != io.EOF {
		return compressionNone, err
	}
	buff = buff[:n]

Outer:
	for ct, sig := range compressionSigs {
		if len(buff) < len(sig) {
			continue
		}
		for i := range sig {
			if buff[i] != sig[i] {
				continue Outer
			}
		}
		return ct, nil
	}

	return compressionNone, nil
}

// maybeDecompress wraps f in the appropriate decompressor if its leading
// bytes match a known compression signature, and passes it through
// otherwise. The zip path reads the first entry of the archive, which is
// how single-file log exports are packaged.
func maybeDecompress(f *os.File) (io.ReadCloser, error) {
	ct, err := detectCompression(f)
	if err != nil {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	switch ct {
	case compressionGzip:
		return gzip.NewReader(f)
	case compressionZip:
		zr := zipstream.NewReader(f)
		if _, err := zr.Next(); err != nil {
			return nil, err
		}
		return io.NopCloser(zr), nil
	case compressionBZip2:
		return io.NopCloser(bzip2.NewReader(f)), nil
	case compressionXZ:
		xr, err := xz.NewReader(f, 0)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case compressionZlib:
		return zlib.NewReader(f)
	}

	return io.NopCloser(f), nil
}
