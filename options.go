package xaml

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/jacoelho/xaml/pkg/assembler"
	"github.com/jacoelho/xaml/pkg/catalog"
	"github.com/jacoelho/xaml/pkg/markuptext"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

// LoadOptions configures markup parsing and object assembly.
type LoadOptions struct {
	catalog      catalog.Catalog
	pipeline     assembler.Pipeline
	logger       *slog.Logger
	entities     map[string]string
	maxDepth     intOption
	maxAttrs     intOption
	maxTokenSize intOption
}

type resolvedLoadOptions struct {
	catalog  catalog.Catalog
	pipeline assembler.Pipeline
	logger   *slog.Logger
	decoder  []markuptext.Options
	limits   markupLimits
}

// NewLoadOptions returns a default, valid load options value.
func NewLoadOptions() LoadOptions {
	return LoadOptions{}
}

// Validate validates load options values.
func (o LoadOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// Catalog returns the configured type catalog.
func (o LoadOptions) Catalog() catalog.Catalog {
	return o.catalog
}

// WithCatalog sets the type catalog used to resolve markup names.
func (o LoadOptions) WithCatalog(value catalog.Catalog) LoadOptions {
	o.catalog = value
	return o
}

// WithPipeline sets the value pipeline consulted before single-valued assignments.
func (o LoadOptions) WithPipeline(value assembler.Pipeline) LoadOptions {
	o.pipeline = value
	return o
}

// WithLogger sets the logger for per-stage debug events (nil discards).
func (o LoadOptions) WithLogger(value *slog.Logger) LoadOptions {
	o.logger = value
	return o
}

// WithEntityMap sets custom named entity replacements.
func (o LoadOptions) WithEntityMap(values map[string]string) LoadOptions {
	o.entities = maps.Clone(values)
	return o
}

// WithMaxDepth sets the markup max depth limit (0 uses default).
func (o LoadOptions) WithMaxDepth(value int) LoadOptions {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithMaxAttrs sets the markup max attributes limit (0 uses default).
func (o LoadOptions) WithMaxAttrs(value int) LoadOptions {
	o.maxAttrs = intOption{value: value, set: true}
	return o
}

// WithMaxTokenSize sets the markup max token size limit (0 uses default).
func (o LoadOptions) WithMaxTokenSize(value int) LoadOptions {
	o.maxTokenSize = intOption{value: value, set: true}
	return o
}

func (o LoadOptions) withDefaults() (resolvedLoadOptions, error) {
	limits, err := resolveMarkupLimits(
		o.maxDepth.resolved(),
		o.maxAttrs.resolved(),
		o.maxTokenSize.resolved(),
	)
	if err != nil {
		return resolvedLoadOptions{}, fmt.Errorf("markup limits: %w", err)
	}
	decoder := limits.options()
	if o.entities != nil {
		decoder = append(decoder, markuptext.WithEntityMap(o.entities))
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return resolvedLoadOptions{
		catalog:  o.catalog,
		pipeline: o.pipeline,
		logger:   logger,
		decoder:  decoder,
		limits:   limits,
	}, nil
}
