package gen

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	FilesGenerated int
	FilesRemoved   int
	TotalBytes     int64
}

// fileTask represents a single file generation task.
type fileTask struct {
	name  string // output file name, relative to outDir
	table string // empty for schema-level files
	file  *jen.File
}

// writer renders files in parallel and formats them through goimports.
type writer struct {
	outDir  string
	workers int

	mu      sync.Mutex
	metrics *WriterMetrics
}

func (w *writer) writeAll(ctx context.Context, files []fileTask) error {
	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return NewGenerationError("", w.outDir, "create output directory", err)
	}
	w.mu.Lock()
	*w.metrics = WriterMetrics{}
	w.mu.Unlock()

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for _, f := range files {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return w.writeFile(f)
			}
		})
	}
	return eg.Wait()
}

// writeFile renders and writes a single file.
func (w *writer) writeFile(f fileTask) error {
	var buf bytes.Buffer
	if err := f.file.Render(&buf); err != nil {
		return NewGenerationError(f.table, f.name, "render", err)
	}
	fullPath := filepath.Join(w.outDir, f.name)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		// Keep the unformatted output around for debugging.
		debugPath := fullPath + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return NewGenerationError(f.table, f.name, "format (unformatted written to "+debugPath+")", err)
	}
	if err := os.WriteFile(fullPath, formatted, 0o644); err != nil {
		return NewGenerationError(f.table, f.name, "write", err)
	}

	w.mu.Lock()
	w.metrics.FilesGenerated++
	w.metrics.TotalBytes += int64(len(formatted))
	w.mu.Unlock()
	return nil
}

// prune removes generated files that are not part of files. Files written
// by hand are left alone.
func (w *writer) prune(files []fileTask) error {
	keep := make(map[string]bool, len(files))
	for _, f := range files {
		keep[f.name] = true
	}
	entries, err := os.ReadDir(w.outDir)
	if err != nil {
		return NewGenerationError("", w.outDir, "read output directory", err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || keep[name] || !strings.HasSuffix(name, ".go") {
			continue
		}
		path := filepath.Join(w.outDir, name)
		ok, err := generated(path)
		if err != nil {
			return NewGenerationError("", name, "read", err)
		}
		if !ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			return NewGenerationError("", name, "remove stale file", err)
		}
		w.metrics.FilesRemoved++
	}
	return nil
}

// generated reports whether the file at path starts with the generated
// code header.
func generated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	return strings.TrimSpace(line) == "// "+header, nil
}
