package filepond

import (
	"context"
	"errors"
	"fmt"
	"time"

	"filepond/internal/pkg/logging"
	"filepond/internal/pkg/metrics"
	"filepond/internal/pkg/validator"
	"filepond/internal/storage"
)

// Config is the staging policy shared by every field.
type Config struct {
	Disk            string
	TempDir         string
	SoftDelete      bool
	ValidationRules string
}

// Disks resolves a storage backend by the name kept on the record.
type Disks interface {
	Disk(name string) (storage.Disk, error)
}

// Validator runs upload rules. *validator.Engine satisfies it.
type Validator interface {
	Validate(values map[string]any, rules validator.RuleSet, messages, attributes map[string]string) error
}

// ServerIDCodec turns record ids into the opaque ids handed to the browser
// and back.
type ServerIDCodec interface {
	Encode(id string) (string, error)
	Decode(serverID string) (string, error)
}

type plainIDs struct{}

func (plainIDs) Encode(id string) (string, error) { return id, nil }
func (plainIDs) Decode(id string) (string, error) { return id, nil }

// Filepond binds submitted form fields to staged uploads.
type Filepond struct {
	repo      Repository
	disks     Disks
	validator Validator
	codec     ServerIDCodec
	metrics   *metrics.Metrics
	namer     *namer
	cfg       Config
}

type Option func(*Filepond)

// WithServerIDCodec makes fields and intake exchange encoded ids. Without it
// record ids are used as they are.
func WithServerIDCodec(c ServerIDCodec) Option {
	return func(fp *Filepond) {
		if c != nil {
			fp.codec = c
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(fp *Filepond) { fp.metrics = m }
}

// WithClock replaces the time source used for generated file names.
func WithClock(now func() time.Time) Option {
	return func(fp *Filepond) { fp.namer.now = now }
}

// WithTokenSource replaces the random part of generated file names.
func WithTokenSource(token func() string) Option {
	return func(fp *Filepond) { fp.namer.token = token }
}

func New(repo Repository, disks Disks, v Validator, cfg Config, opts ...Option) *Filepond {
	if v == nil {
		v = validator.NewEngine()
	}
	fp := &Filepond{
		repo:      repo,
		disks:     disks,
		validator: v,
		codec:     plainIDs{},
		namer:     newNamer(),
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(fp)
	}
	return fp
}

func (fp *Filepond) Config() Config { return fp.cfg }

type FieldOption func(*Field)

// WithSoftDelete overrides the configured delete policy for one field.
func WithSoftDelete(soft bool) FieldOption {
	return func(f *Field) { f.softDelete = soft }
}

// Field resolves the submitted value of name into upload records. Ids that
// cannot be decoded or no longer exist are left out; any other lookup error
// is returned.
func (fp *Filepond) Field(ctx context.Context, name string, raw any, opts ...FieldOption) (*Field, error) {
	f := &Field{
		fp:         fp,
		name:       name,
		value:      ValueOf(raw),
		softDelete: fp.cfg.SoftDelete,
	}
	for _, opt := range opts {
		opt(f)
	}

	for _, serverID := range f.value.ids {
		id, err := fp.codec.Decode(serverID)
		if err != nil {
			logging.Debug("skipping undecodable server id", "field", name)
			continue
		}
		upload, err := fp.repo.GetByID(ctx, id)
		if errors.Is(err, ErrUploadNotFound) {
			logging.Debug("skipping unknown upload", "field", name, "id", id)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("bind field %q: %w", name, err)
		}
		f.uploads = append(f.uploads, upload)
	}

	return f, nil
}

func (fp *Filepond) disk(name string) (storage.Disk, error) {
	if name == "" {
		name = fp.cfg.Disk
	}
	return fp.disks.Disk(name)
}
