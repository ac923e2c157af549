package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/tevino/abool/v2"
	"github.com/zeebo/blake3"

	"github.com/xgrommx/swig"
	"github.com/xgrommx/swig/compilelog"
	"github.com/xgrommx/swig/compiler"
)

var errInterrupted = errors.New("interrupted by user")

type summary struct {
	compiled int
	skipped  int
	failed   int
}

// batch compiles a list of templates, one at a time.
type batch struct {
	engine *swig.Engine

	// log is optional. Without it every template is compiled.
	log *compilelog.Log

	// outputDir "-" writes every module to stdout.
	outputDir       string
	failuresAllowed int

	logger      hclog.Logger
	stdout      io.Writer
	stderr      io.Writer
	interrupted *abool.AtomicBool
}

// run compiles templates in order. Failures are reported as they happen and
// returned together; the batch stops once failuresAllowed is reached, with 0
// meaning no limit.
func (b *batch) run(templates []string) (summary, error) {
	var s summary
	var result *multierror.Error

	for i, path := range templates {
		if b.interrupted.IsSet() {
			errorf(b.stderr, "%v", errInterrupted)
			result = multierror.Append(result, errInterrupted)
			break
		}

		skipped, err := b.compile(path)
		switch {
		case err != nil:
			s.failed++
			errorf(b.stderr, "%v", err)
			result = multierror.Append(result, err)
		case skipped:
			s.skipped++
		default:
			s.compiled++
		}

		if err != nil && b.failuresAllowed > 0 && s.failed >= b.failuresAllowed {
			if i < len(templates)-1 {
				warningf(b.stderr, "stopping after %d failed templates", s.failed)
			}
			break
		}
	}
	return s, result.ErrorOrNil()
}

// compile compiles one template unless the compile log shows that neither
// it nor anything it imports changed since the output was written.
func (b *batch) compile(path string) (skipped bool, err error) {
	path = filepath.Clean(path)
	out := b.outputPath(path)

	if b.log != nil && out != "" {
		upToDate, err := b.upToDate(path, out)
		if err != nil {
			return false, err
		}
		if upToDate {
			b.logger.Debug("template up to date", "path", path)
			return true, nil
		}
	}

	res, err := b.engine.CompileFile(path)
	if err != nil {
		return false, err
	}

	module := "module.exports = function (_ctx, _ext) {\n" +
		compiler.Indent(res.Code, "  ") +
		"};\n"
	if out == "" {
		_, err := io.WriteString(b.stdout, module)
		return false, err
	}
	if err := os.WriteFile(out, []byte(module), 0o644); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", out, err)
	}
	b.logger.Debug("wrote module", "path", path, "output", out, "deps", len(res.Deps))

	if b.log == nil {
		return false, nil
	}
	hashes := [][32]byte{res.Source}
	entry := &compilelog.Entry{
		Path:       path,
		OutputHash: hex.EncodeToString(res.Hash[:]),
	}
	for _, dep := range res.Deps {
		hashes = append(hashes, dep.Hash)
		entry.Deps = append(entry.Deps, dep.Path)
	}
	entry.Fingerprint = compilelog.Fingerprint(hashes...)
	return false, b.log.Record(entry)
}

// upToDate reports whether the recorded fingerprint of path still matches
// the files on disk and the output exists.
func (b *batch) upToDate(path, out string) (bool, error) {
	entry, err := b.log.Lookup(path)
	if err != nil {
		return false, err
	}
	if entry == nil {
		return false, nil
	}
	if _, err := os.Stat(out); err != nil {
		return false, nil
	}

	hashes := make([][32]byte, 0, len(entry.Deps)+1)
	for _, p := range append([]string{path}, entry.Deps...) {
		buf, err := os.ReadFile(p)
		if err != nil {
			b.logger.Debug("recorded input unreadable", "path", p, "error", err)
			return false, nil
		}
		hashes = append(hashes, blake3.Sum256(buf))
	}
	return compilelog.Fingerprint(hashes...) == entry.Fingerprint, nil
}

// outputPath is <outputDir>/<base name>.js, or "" when writing to stdout.
func (b *batch) outputPath(path string) string {
	if b.outputDir == "-" {
		return ""
	}
	base := filepath.Base(path)
	return filepath.Join(b.outputDir, strings.TrimSuffix(base, filepath.Ext(base))+".js")
}
