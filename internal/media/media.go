// Package media stores listing images with an external provider.
package media

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrDisabled is returned by the store used when no provider is configured.
var ErrDisabled = errors.New("media storage not configured")

// ErrNotProviderURL is returned for URLs the provider did not issue.
var ErrNotProviderURL = errors.New("not a cloudinary url")

// Store uploads images and deletes them by their public URL.
type Store interface {
	Upload(ctx context.Context, filename string, file io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// Disabled rejects uploads and ignores deletes.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (string, error) {
	return "", ErrDisabled
}

func (Disabled) Delete(context.Context, string) error {
	return nil
}

// PublicIDFromURL derives the Cloudinary public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1699/listings/abc.jpg, which
// yields "listings/abc".
func PublicIDFromURL(url string) (string, error) {
	const marker = "/upload/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return "", ErrNotProviderURL
	}
	path := url[idx+len(marker):]
	if q := strings.IndexAny(path, "?#"); q >= 0 {
		path = path[:q]
	}

	segments := strings.Split(path, "/")
	if len(segments) > 1 && isVersion(segments[0]) {
		segments = segments[1:]
	}
	last := segments[len(segments)-1]
	if dot := strings.LastIndex(last, "."); dot > 0 {
		segments[len(segments)-1] = last[:dot]
	}

	id := strings.Join(segments, "/")
	if id == "" {
		return "", ErrNotProviderURL
	}
	return id, nil
}

func isVersion(segment string) bool {
	if len(segment) < 2 || segment[0] != 'v' {
		return false
	}
	for _, r := range segment[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
