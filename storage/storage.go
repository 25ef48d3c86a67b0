// Package storage abstracts where uploaded blobs physically live. The
// rest of the application only ever refers to blobs by their storage
// path and never touches the disk or S3 directly.
package storage

import (
	"context"
	"io"

	"github.com/spf13/viper"
)

type Storage interface {
	// Save writes the blob under the given path. The reader is consumed
	// fully, content must be seekable so backends can sniff the content
	// type and rewind
	Save(ctx context.Context, path string, content io.ReadSeeker, size int64) error

	// Exists reports whether a blob lives under the given path
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes the blob under the given path. Deleting a path that
	// doesn't exist is not an error
	Delete(ctx context.Context, path string) error
}

// New returns the backend selected by storage.type
func New() (Storage, error) {
	if viper.GetString("storage.type") == "s3" {
		return NewS3()
	}

	return NewLocal(viper.GetString("storage.media_root"))
}
