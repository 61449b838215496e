// Package blob resolves component image bucket paths to public URLs. The
// bucket's storage internals (upload, content type handling, CDN) are an
// external collaborator (spec.md §1) and out of scope; this package only
// derives the read-side URL a client renders.
package blob

import (
	"strings"

	"github.com/partforge/configurator/internal/config"
)

// Resolver derives public URLs for images stored under a configured bucket.
type Resolver struct {
	bucketName string
	publicBase string
}

// NewResolver builds a Resolver from blob configuration.
func NewResolver(cfg config.BlobConfig) *Resolver {
	return &Resolver{
		bucketName: cfg.BucketName,
		publicBase: strings.TrimRight(cfg.PublicBase, "/"),
	}
}

// URLFor returns the public URL for a bucket path, or "" if path is empty.
func (r *Resolver) URLFor(path *string) string {
	if path == nil || *path == "" {
		return ""
	}
	return r.publicBase + "/" + strings.TrimLeft(*path, "/")
}
