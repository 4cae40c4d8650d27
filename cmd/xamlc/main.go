// Command xamlc inspects and loads XAML-style markup documents.
//
//	xamlc proto [--catalog catalog.yaml] doc.xaml
//	xamlc instructions --catalog catalog.yaml [--format text|yaml] doc.xaml
//	xamlc load --catalog catalog.yaml [--format spew|yaml] doc.xaml...
//
// Documents ending in .gz or .zst are decompressed; "-" reads stdin.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
)

func main() {
	os.Exit(run())
}

func run() int {
	return runWithArgs(os.Args[1:], os.Stdout, os.Stderr)
}

// errReported marks failures whose details were already written to stderr.
var errReported = errors.New("failed")

func runWithArgs(args []string, stdout, stderr io.Writer) int {
	app := &cli{stdin: os.Stdin, stdout: stdout, stderr: stderr}
	root := app.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if stopErr := app.stopProfiles(); stopErr != nil {
		_ = writef(stderr, "error: %v\n", stopErr)
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	default:
		if writeErr := writef(stderr, "error: %v\n", err); writeErr != nil {
			return 1
		}
		if writeErr := writef(stderr, "Run '%s --help' for usage.\n", root.Name()); writeErr != nil {
			return 1
		}
		return 2
	}
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

func startCPUProfile(path string) (func() error, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpu profile %s: %w", path, err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return nil, fmt.Errorf("start cpu profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return nil, fmt.Errorf("start cpu profile %s: %w", path, err)
	}
	return func() error {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			return fmt.Errorf("close cpu profile %s: %w", path, err)
		}
		return nil
	}, nil
}

func writeMemProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mem profile %s: %w", path, err)
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		if closeErr := f.Close(); closeErr != nil {
			return fmt.Errorf("write mem profile %s: %w (close failed: %w)", path, err, closeErr)
		}
		return fmt.Errorf("write mem profile %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close mem profile %s: %w", path, err)
	}
	return nil
}
