package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jacoelho/xaml"
	xamlerrors "github.com/jacoelho/xaml/errors"
	"github.com/jacoelho/xaml/pkg/catalog/dyncatalog"
	"github.com/jacoelho/xaml/pkg/instruction"
)

type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	verbose     bool
	cpuProfile  string
	memProfile  string
	catalogPath string
	insFormat   string
	loadFormat  string
	jobs        int
	maxDepth    int

	stopCPU func() error
	logger  *slog.Logger
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "xamlc",
		Short:         "Inspect and load XAML-style markup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if c.verbose {
				level = slog.LevelDebug
			}
			c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
			if c.cpuProfile != "" {
				stop, err := startCPUProfile(c.cpuProfile)
				if err != nil {
					return err
				}
				c.stopCPU = stop
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log pipeline stages at debug level")
	root.PersistentFlags().StringVar(&c.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	root.PersistentFlags().StringVar(&c.memProfile, "memprofile", "", "write memory profile to file")
	root.PersistentFlags().IntVar(&c.maxDepth, "max-depth", 0, "markup nesting limit (0 uses default)")

	root.AddCommand(c.protoCommand(), c.instructionsCommand(), c.loadCommand())
	return root
}

func (c *cli) stopProfiles() error {
	var errs []error
	if c.stopCPU != nil {
		errs = append(errs, c.stopCPU())
		c.stopCPU = nil
	}
	if c.memProfile != "" {
		errs = append(errs, writeMemProfile(c.memProfile))
	}
	return errors.Join(errs...)
}

func (c *cli) protoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proto FILE",
		Short: "Print proto instructions, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(false)
			if err != nil {
				return err
			}
			in, err := openInput(args[0], c.stdin)
			if err != nil {
				return err
			}
			defer in.Close()

			for p, err := range xaml.ParseToProtoInstructions(in, opts) {
				if err != nil {
					return c.report(args[0], err)
				}
				if err := writeln(c.stdout, p.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.catalogPath, "catalog", "", "YAML catalog used to classify attached attributes")
	return cmd
}

type instructionRecord struct {
	Kind      string `yaml:"kind"`
	Type      string `yaml:"type,omitempty"`
	Member    string `yaml:"member,omitempty"`
	Attached  bool   `yaml:"attached,omitempty"`
	Value     string `yaml:"value,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

func recordOf(in instruction.Instruction) instructionRecord {
	r := instructionRecord{
		Kind:      strings.TrimPrefix(in.Kind.String(), "Kind"),
		Value:     in.Value,
		Prefix:    in.Prefix,
		Namespace: in.Namespace,
		Attached:  in.Member.Attached,
	}
	if in.Type != nil {
		r.Type = in.Type.Name()
	}
	if in.Kind == instruction.KindStartMember {
		r.Member = in.Member.String()
	}
	return r
}

func (c *cli) instructionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instructions FILE",
		Short: "Print object and member instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.insFormat != "text" && c.insFormat != "yaml" {
				return fmt.Errorf("unknown format %q", c.insFormat)
			}
			opts, err := c.options(true)
			if err != nil {
				return err
			}
			in, err := openInput(args[0], c.stdin)
			if err != nil {
				return err
			}
			defer in.Close()

			var records []instructionRecord
			for ins, err := range xaml.ParseToXamlInstructions(in, opts) {
				if err != nil {
					return c.report(args[0], err)
				}
				if c.insFormat == "yaml" {
					records = append(records, recordOf(ins))
					continue
				}
				if err := writeln(c.stdout, ins.String()); err != nil {
					return err
				}
			}
			if c.insFormat == "yaml" {
				enc := yaml.NewEncoder(c.stdout)
				enc.SetIndent(2)
				if err := enc.Encode(records); err != nil {
					return err
				}
				return enc.Close()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.catalogPath, "catalog", "", "YAML catalog describing the markup types")
	cmd.Flags().StringVar(&c.insFormat, "format", "text", "output format: text or yaml")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

type loadResult struct {
	root any
	err  error
}

func (c *cli) loadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load FILE...",
		Short: "Load documents and dump their object graphs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.loadFormat != "spew" && c.loadFormat != "yaml" {
				return fmt.Errorf("unknown format %q", c.loadFormat)
			}
			if c.jobs < 1 {
				return fmt.Errorf("--jobs must be >= 1")
			}
			opts, err := c.options(true)
			if err != nil {
				return err
			}

			results := make([]loadResult, len(args))
			var g errgroup.Group
			g.SetLimit(c.jobs)
			for i, path := range args {
				g.Go(func() error {
					results[i] = c.loadOne(path, opts)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			failed := false
			for i, path := range args {
				res := results[i]
				if res.err != nil {
					failed = true
					if err := c.report(path, res.err); !errors.Is(err, errReported) {
						return err
					}
					continue
				}
				if err := c.dump(path, res.root); err != nil {
					return err
				}
			}
			if failed {
				return errReported
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.catalogPath, "catalog", "", "YAML catalog describing the markup types")
	cmd.Flags().StringVar(&c.loadFormat, "format", "spew", "output format: spew or yaml")
	cmd.Flags().IntVarP(&c.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "documents loaded concurrently")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

func (c *cli) loadOne(path string, opts xaml.LoadOptions) loadResult {
	in, err := openInput(path, c.stdin)
	if err != nil {
		return loadResult{err: err}
	}
	defer in.Close()
	root, err := xaml.Load(in, opts)
	return loadResult{root: root, err: err}
}

var dumper = spew.ConfigState{Indent: "  ", SortKeys: true, DisablePointerAddresses: true, DisableCapacities: true}

func (c *cli) dump(path string, root any) error {
	plain := dyncatalog.Plain(root)
	if err := writef(c.stdout, "# %s\n", path); err != nil {
		return err
	}
	if c.loadFormat == "yaml" {
		enc := yaml.NewEncoder(c.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(plain); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := dumper.Fprint(c.stdout, plain)
	if err != nil {
		return err
	}
	return writeln(c.stdout)
}

func (c *cli) options(needCatalog bool) (xaml.LoadOptions, error) {
	opts := xaml.NewLoadOptions().WithLogger(c.logger).WithMaxDepth(c.maxDepth)
	if c.catalogPath == "" {
		if needCatalog {
			return opts, fmt.Errorf("--catalog is required")
		}
		return opts, opts.Validate()
	}
	cat, err := dyncatalog.LoadFile(c.catalogPath)
	if err != nil {
		return opts, err
	}
	opts = opts.WithCatalog(cat)
	return opts, opts.Validate()
}

// report writes err to stderr, one line per parse error.
func (c *cli) report(path string, err error) error {
	if parseErrs, ok := xamlerrors.AsParseErrors(err); ok {
		for _, pe := range parseErrs {
			if writeErr := writef(c.stderr, "%s: %s\n", path, pe.Error()); writeErr != nil {
				return writeErr
			}
		}
	} else if writeErr := writef(c.stderr, "%s: %v\n", path, err); writeErr != nil {
		return writeErr
	}
	if writeErr := writef(c.stderr, "%s fails to load\n", path); writeErr != nil {
		return writeErr
	}
	return errReported
}
