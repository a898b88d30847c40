package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/hejijunhao/labelprep/internal/engine"
	"github.com/hejijunhao/labelprep/internal/model"
	"github.com/hejijunhao/labelprep/internal/source"
)

// Loader reads an input table.
type Loader interface {
	Load(ctx context.Context, location string, opts source.Options) (*source.Table, error)
}

// Processor normalizes raw records in bulk.
type Processor interface {
	ProcessBatch(ctx context.Context, raws []model.RawRecord) (engine.Batch, error)
}

// Taxonomy is the closed label set split input is checked against.
type Taxonomy interface {
	Has(code model.Code) bool
	Name(code model.Code) (string, bool)
}

// Pipeline connects a source, the engine, and outputs into the normalize
// and split runs.
type Pipeline struct {
	loader  Loader
	engine  Processor
	labels  Taxonomy
	logger  *zap.Logger
	columns source.Columns
	srcOpts source.Options
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithColumns sets the header names of the identifier, text and label
// columns. Default: id, text, final_label.
func WithColumns(cols source.Columns) Option {
	return func(p *Pipeline) { p.columns = cols }
}

// WithSourceOptions sets format-specific read options (sheet, charset).
func WithSourceOptions(opts source.Options) Option {
	return func(p *Pipeline) { p.srcOpts = opts }
}

// WithTaxonomy rejects split input carrying codes outside t and adds label
// names to split manifests. Without it codes are taken as given.
func WithTaxonomy(t Taxonomy) Option {
	return func(p *Pipeline) { p.labels = t }
}

// WithLogger sets the logger. Default: zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// New creates a Pipeline. eng may be nil when only Split is used.
func New(loader Loader, eng Processor, opts ...Option) *Pipeline {
	p := &Pipeline{
		loader:  loader,
		engine:  eng,
		logger:  zap.NewNop(),
		columns: source.Columns{ID: "id", Text: "text", Label: "final_label"},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
