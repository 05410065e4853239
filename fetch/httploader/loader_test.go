package httploader

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExistsAndLastModified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		if r.Method == http.MethodGet {
			w.Write([]byte("config contents"))
		}
	}))
	defer srv.Close()

	l := New(srv.Client())

	exists, err := l.Exists(context.Background(), srv.URL)
	require.NoError(t, err)
	require.True(t, exists)

	version, err := l.LastModified(context.Background(), srv.URL)
	require.NoError(t, err)
	require.EqualValues(t, 1136214245, version)
}

func TestExistsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	l := New(srv.Client())
	exists, err := l.Exists(context.Background(), srv.URL)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestOpenStreamReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello, config"))
	}))
	defer srv.Close()

	l := New(nil)
	rc, err := l.OpenStream(context.Background(), srv.URL)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "hello, config", string(data))
}
