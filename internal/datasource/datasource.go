// Package datasource abstracts where the raw export bytes come from.
package datasource

import (
	"context"
	"io"
)

// Source opens a stream of decoded (UTF-8) text. Callers close it.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
