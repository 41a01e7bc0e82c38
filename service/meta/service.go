package meta

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Service loads configuration documents.
type Service struct {
	fs afs.Service
}

// New creates a loader over fs; a nil fs uses afs.New().
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}

// Load downloads URL, expands environment expressions and decodes the
// document into v.
func (s *Service) Load(ctx context.Context, URL string, v any) error {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return fmt.Errorf("meta: failed to check %s: %w", URL, err)
	}
	if !exists {
		return fmt.Errorf("meta: %s not found", URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return fmt.Errorf("meta: failed to download %s: %w", URL, err)
	}
	if err = Decode(path.Ext(URL), []byte(expandEnvExpr(string(data))), v); err != nil {
		return fmt.Errorf("meta: failed to decode %s: %w", URL, err)
	}
	return nil
}

// Decode decodes data according to the extension ext.
func Decode(ext string, data []byte, v any) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "yaml", "yml", "":
		return yaml.Unmarshal(data, v)
	case "toml":
		return toml.Unmarshal(data, v)
	case "json":
		return json.Unmarshal(data, v)
	}
	return fmt.Errorf("unsupported format %q", ext)
}
