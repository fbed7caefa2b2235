// Package loader reads template documents from files, embedded filesystems,
// or URLs, in either JSON or YAML form.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/template"
)

// Option customises the loader configuration.
type Option func(*Loader)

// WithFS supplies the filesystem backing fs sources.
func WithFS(fsys fs.FS) Option {
	return func(l *Loader) {
		l.fsys = fsys
	}
}

// WithHTTPClient overrides the client used for URL sources.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// Loader resolves template documents from a Source.
type Loader struct {
	fsys   fs.FS
	client *http.Client
}

// New constructs a Loader applying any provided options.
func New(options ...Option) *Loader {
	l := &Loader{
		client: http.DefaultClient,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(l)
	}
	return l
}

// Load reads and parses the template behind src.
func (l *Loader) Load(ctx context.Context, src Source) (template.Template, error) {
	if src == nil {
		return template.Template{}, errors.New("loader: source is required")
	}
	data, err := l.read(ctx, src)
	if err != nil {
		return template.Template{}, err
	}
	return Parse(data, src.Location())
}

func (l *Loader) read(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch src.Kind() {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location())
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindFS:
		if l.fsys == nil {
			return nil, errors.New("loader: fs source used without a configured fs.FS")
		}
		data, err := fs.ReadFile(l.fsys, src.Location())
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w", src.Location(), err)
		}
		return data, nil
	case SourceKindURL:
		return l.fetch(ctx, src.Location())
	default:
		return nil, fmt.Errorf("loader: unsupported source kind %q", src.Kind())
	}
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("loader: fetch %s: unexpected status %s", rawURL, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("loader: read body: %w", err)
	}
	return data, nil
}

// Parse decodes a template document. The location hint selects the format by
// extension; without one the payload is sniffed, trying JSON first.
func Parse(data []byte, location string) (template.Template, error) {
	if len(data) == 0 {
		return template.Template{}, errors.New("loader: document is empty")
	}

	var tpl template.Template
	switch format(data, location) {
	case "yaml":
		if err := yaml.Unmarshal(data, &tpl); err != nil {
			return template.Template{}, fmt.Errorf("loader: parse yaml %s: %w", location, err)
		}
	default:
		if err := json.Unmarshal(data, &tpl); err != nil {
			return template.Template{}, fmt.Errorf("loader: parse json %s: %w", location, err)
		}
	}

	if tpl.ID == "" && len(tpl.Fields) == 0 {
		return template.Template{}, fmt.Errorf("loader: %s does not look like a template document", location)
	}
	return tpl, nil
}

func format(data []byte, location string) string {
	switch strings.ToLower(path.Ext(location)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "json"
	}
	return "yaml"
}
