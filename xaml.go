// Package xaml loads XAML-style markup into object graphs.
//
// Loading runs three streaming stages: the proto parser turns markup into
// flat proto instructions, the transformer resolves them against a catalog
// into object and member instructions, and the assembler builds the graph.
// Each stage is also exposed on its own for inspection.
package xaml

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/pkg/assembler"
	"github.com/jacoelho/xaml/pkg/instruction"
	"github.com/jacoelho/xaml/pkg/protoparser"
	"github.com/jacoelho/xaml/pkg/xamlparser"
)

var errNilReader = errors.New("nil reader")

// Load reads one markup document and assembles its root object.
func Load(r io.Reader, opts LoadOptions) (any, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	if resolved.catalog == nil {
		return nil, fmt.Errorf("load document: no catalog configured")
	}
	if r == nil {
		return nil, fmt.Errorf("load document: %w", errNilReader)
	}
	log := resolved.logger
	log.Debug("load document")
	a := assembler.New(assembler.Config{Catalog: resolved.catalog, Pipeline: resolved.pipeline})
	root, err := a.Assemble(instructions(r, resolved))
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	log.Debug("assembled document", slog.String("root", fmt.Sprintf("%T", root)))
	return root, nil
}

// ParseToProtoInstructions runs the first stage only. The catalog is
// optional; when set it classifies attached attribute owners.
func ParseToProtoInstructions(r io.Reader, opts LoadOptions) iter.Seq2[instruction.Proto, error] {
	resolved, err := opts.withDefaults()
	if err != nil {
		return failed[instruction.Proto](fmt.Errorf("load options: %w", err))
	}
	if r == nil {
		return failed[instruction.Proto](errNilReader)
	}
	return protos(r, resolved)
}

// ParseToXamlInstructions runs the first two stages. A catalog is required.
func ParseToXamlInstructions(r io.Reader, opts LoadOptions) iter.Seq2[instruction.Instruction, error] {
	resolved, err := opts.withDefaults()
	if err != nil {
		return failed[instruction.Instruction](fmt.Errorf("load options: %w", err))
	}
	if resolved.catalog == nil {
		return failed[instruction.Instruction](fmt.Errorf("no catalog configured"))
	}
	if r == nil {
		return failed[instruction.Instruction](errNilReader)
	}
	return instructions(r, resolved)
}

func protos(r io.Reader, opts resolvedLoadOptions) iter.Seq2[instruction.Proto, error] {
	cfg := protoparser.Config{Decoder: opts.decoder}
	if opts.catalog != nil {
		cfg.Types = opts.catalog
	}
	return protoparser.New(cfg).Parse(r)
}

func instructions(r io.Reader, opts resolvedLoadOptions) iter.Seq2[instruction.Instruction, error] {
	seq := xamlparser.New(xamlparser.Config{Catalog: opts.catalog}).Parse(protos(r, opts))
	return logged(seq, opts.logger)
}

// logged reports stage failures to log without altering the sequence.
func logged(seq iter.Seq2[instruction.Instruction, error], log *slog.Logger) iter.Seq2[instruction.Instruction, error] {
	return func(yield func(instruction.Instruction, error) bool) {
		for in, err := range seq {
			if err != nil {
				if list, ok := xamlerrors.AsParseErrors(err); ok {
					if len(list) == 1 && list[0].Structural() {
						log.Debug("structural error", slog.String("code", list[0].Code), slog.Int("line", list[0].Line))
					} else {
						log.Debug("semantic errors", slog.Int("count", len(list)))
					}
				}
			}
			if !yield(in, err) {
				return
			}
		}
	}
}

func failed[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}
