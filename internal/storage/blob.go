package storage

import "io"

// BlobStore keeps generated artifacts such as result exports.
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}
