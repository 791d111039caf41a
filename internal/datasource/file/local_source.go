// Package file implements a local filesystem-backed data source with
// character set decoding.
package file

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Supported source encodings.
const (
	EncodingUTF8   = "utf-8"
	EncodingCP1251 = "windows-1251"
	EncodingAuto   = "auto"
)

// sniffSize is how much of the file "auto" looks at before deciding.
const sniffSize = 64 << 10

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Local is a filesystem data source that opens files from the local disk and
// decodes them to UTF-8.
type Local struct {
	path     string
	encoding string
}

// NewLocal returns a UTF-8 Local data source bound to path.
func NewLocal(path string) *Local { return &Local{path: path, encoding: EncodingUTF8} }

// NewLocalEncoded returns a Local data source decoding path with enc, one of
// EncodingUTF8, EncodingCP1251 or EncodingAuto. An empty enc means UTF-8.
func NewLocalEncoded(path, enc string) (*Local, error) {
	switch enc {
	case "":
		enc = EncodingUTF8
	case EncodingUTF8, EncodingCP1251, EncodingAuto:
	default:
		return nil, fmt.Errorf("file: unsupported encoding %q", enc)
	}
	return &Local{path: path, encoding: enc}, nil
}

// Path returns the file path the source reads.
func (l *Local) Path() string { return l.path }

// Open opens the configured path and returns a reader yielding UTF-8 text
// with any leading byte order mark removed.
//
// A context that is already done short-circuits before the filesystem is
// touched. Filesystem errors are wrapped with the path and still match
// errors.Is(err, os.ErrNotExist) and friends.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	adviseSequential(f)

	br := bufio.NewReaderSize(f, sniffSize)
	enc := l.encoding
	if enc == EncodingAuto {
		head, err := br.Peek(sniffSize)
		if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
			f.Close()
			return nil, fmt.Errorf("sniff %s: %w", l.path, err)
		}
		enc = Detect(head)
	}
	return &decodedFile{
		Reader: transform.NewReader(br, decoderFor(enc).NewDecoder()),
		f:      f,
	}, nil
}

// Detect guesses the encoding of a file prefix: a UTF-8 byte order mark or a
// prefix that is valid UTF-8 means UTF-8, anything else is taken as
// Windows-1251.
func Detect(head []byte) string {
	if bytes.HasPrefix(head, utf8BOM) || validUTF8Prefix(head) {
		return EncodingUTF8
	}
	return EncodingCP1251
}

// validUTF8Prefix is utf8.Valid that tolerates a rune cut at the end of the
// buffer.
func validUTF8Prefix(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			return len(b) < utf8.UTFMax && !utf8.FullRune(b)
		}
		b = b[size:]
	}
	return true
}

func decoderFor(enc string) encoding.Encoding {
	if enc == EncodingCP1251 {
		return charmap.Windows1251
	}
	// UTF8BOM decodes plain UTF-8 too and drops a leading BOM.
	return unicode.UTF8BOM
}

type decodedFile struct {
	io.Reader
	f *os.File
}

func (d *decodedFile) Close() error { return d.f.Close() }
