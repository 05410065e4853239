// Package gcsloader implements fetch.ResourceLoader using Google Cloud
// Storage, resolving a gs:// URI against application-default
// credentials scoped read-only.
package gcsloader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

const scopeReadOnly = "https://www.googleapis.com/auth/devstorage.read_only"

// Loader fetches gs://bucket/object resources.
type Loader struct {
	client *storage.Client
}

// New returns a Loader authenticated with application-default
// credentials, scoped read-only.
func New(ctx context.Context) (*Loader, error) {
	creds, err := google.FindDefaultCredentials(ctx, scopeReadOnly)
	if err != nil {
		return nil, fmt.Errorf("gcsloader: default credentials: %w", err)
	}
	client, err := storage.NewClient(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("gcsloader: new client: %w", err)
	}
	return &Loader{client: client}, nil
}

// NewWithClient returns a Loader using an already-constructed storage
// client, for tests and callers with custom credential plumbing.
func NewWithClient(client *storage.Client) *Loader {
	return &Loader{client: client}
}

// parse splits a gs://bucket/object URI into its bucket and object
// name.
func parse(uri string) (bucket, object string, err error) {
	const prefix = "gs://"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", fmt.Errorf("gcsloader: %s: missing gs:// scheme", uri)
	}
	rest := uri[len(prefix):]
	i := strings.Index(rest, "/")
	if i < 0 {
		return "", "", fmt.Errorf("gcsloader: %s: missing object path", uri)
	}
	return rest[:i], rest[i+1:], nil
}

func (l *Loader) object(uri string) (*storage.ObjectHandle, error) {
	bucket, object, err := parse(uri)
	if err != nil {
		return nil, err
	}
	return l.client.Bucket(bucket).Object(object), nil
}

// Exists reports whether the object has metadata, i.e. exists and is
// readable under the loader's credentials.
func (l *Loader) Exists(ctx context.Context, uri string) (bool, error) {
	obj, err := l.object(uri)
	if err != nil {
		return false, err
	}
	_, err = obj.Attrs(ctx)
	if err == storage.ErrObjectNotExist {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("gcsloader: stat %s: %w", uri, err)
	}
	return true, nil
}

// LastModified returns the object's update time as a Unix timestamp,
// the GCS analogue of an HTTP Last-Modified header.
func (l *Loader) LastModified(ctx context.Context, uri string) (int64, error) {
	obj, err := l.object(uri)
	if err != nil {
		return 0, err
	}
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return 0, fmt.Errorf("gcsloader: stat %s: %w", uri, err)
	}
	return attrs.Updated.Unix(), nil
}

// OpenStream opens a reader over the object's current generation.
func (l *Loader) OpenStream(ctx context.Context, uri string) (io.ReadCloser, error) {
	obj, err := l.object(uri)
	if err != nil {
		return nil, err
	}
	r, err := obj.NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcsloader: read %s: %w", uri, err)
	}
	return r, nil
}
