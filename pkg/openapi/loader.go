package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithFS supplies the filesystem backing SourceKindFS sources.
func WithFS(fsys fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = fsys
	}
}

// WithHTTPClient enables URL sources using the given client. Without it, URL
// loading is disabled.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.http = client
	}
}

const defaultRequestTimeout = 30 * time.Second

// Loader fetches OpenAPI documents from file, fs.FS, or HTTP sources.
type Loader struct {
	fs   fs.FS
	http *http.Client
}

// NewLoader constructs a Loader. File sources always work; fs.FS and URL
// strategies require the matching option.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load fetches the document behind src.
func (l *Loader) Load(ctx context.Context, src Source) (Document, error) {
	if ctx == nil {
		return Document{}, errors.New("openapi: context is required")
	}
	if src == nil {
		return Document{}, errors.New("openapi: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case SourceKindFile:
		data, err = os.ReadFile(src.Location())
	case SourceKindFS:
		if l.fs == nil {
			return Document{}, errors.New("openapi: fs source requires WithFS")
		}
		data, err = fs.ReadFile(l.fs, src.Location())
	case SourceKindURL:
		data, err = l.loadHTTP(ctx, src.Location())
	default:
		return Document{}, fmt.Errorf("openapi: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return Document{}, fmt.Errorf("openapi: load %s: %w", src.Location(), err)
	}

	return NewDocument(src, data)
}

func (l *Loader) loadHTTP(ctx context.Context, rawURL string) ([]byte, error) {
	if l.http == nil {
		return nil, errors.New("http support disabled")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
