package snapshot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/kcore/tracing"
)

// Service encodes snapshots and stores them.
type Service struct {
	fs     afs.Service
	encode cbor.EncMode
	decode cbor.DecMode
}

// New creates a snapshot service over fs; a nil fs uses afs.New().
func New(fs afs.Service) (*Service, error) {
	if fs == nil {
		fs = afs.New()
	}
	encOpts := cbor.CanonicalEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano
	encode, err := encOpts.EncMode()
	if err != nil {
		return nil, err
	}
	decode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return &Service{fs: fs, encode: encode, decode: decode}, nil
}

// Encode returns the canonical CBOR form of snapshot.
func (s *Service) Encode(snapshot *Snapshot) ([]byte, error) {
	return s.encode.Marshal(snapshot)
}

// Decode parses data produced by Encode.
func (s *Service) Decode(data []byte) (*Snapshot, error) {
	ret := &Snapshot{}
	if err := s.decode.Unmarshal(data, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Save writes snapshot to URL.
func (s *Service) Save(ctx context.Context, URL string, snapshot *Snapshot) (err error) {
	ctx, span := tracing.StartSpan(ctx, "snapshot.Save", "INTERNAL")
	span.WithAttributes(map[string]string{"url": URL})
	defer func() { tracing.EndSpan(span, err) }()
	data, err := s.Encode(snapshot)
	if err != nil {
		return fmt.Errorf("snapshot: failed to encode: %w", err)
	}
	if err = s.fs.Upload(ctx, URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("snapshot: failed to save %s: %w", URL, err)
	}
	return nil
}

// Load reads a snapshot from URL.
func (s *Service) Load(ctx context.Context, URL string) (*Snapshot, error) {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to check %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("snapshot: %s not found", URL)
	}
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to load %s: %w", URL, err)
	}
	ret, err := s.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot: failed to decode %s: %w", URL, err)
	}
	return ret, nil
}
