// Package factory turns an OpenRPC document into a client library on disk.
//
// A ClientFactory owns the output directory. Each call to GenerateClient
// builds the language-neutral model, runs the registered generator, and
// writes the returned files under <outDir>/<lang>/.
package factory

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/pthm/ocg/internal/clientgen"
	"github.com/pthm/ocg/pkg/openrpc"

	// Register the built-in generators.
	_ "github.com/pthm/ocg/internal/clientgen/go"
	_ "github.com/pthm/ocg/internal/clientgen/python"
	_ "github.com/pthm/ocg/internal/clientgen/typescript"
)

// ErrNoGenerator is returned when no generator is registered for a language.
var ErrNoGenerator = errors.New("no generator registered")

// IsNoGeneratorErr returns true if err is or wraps ErrNoGenerator.
func IsNoGeneratorErr(err error) bool {
	return errors.Is(err, ErrNoGenerator)
}

// ClientFactory writes generated clients for one document.
type ClientFactory struct {
	outDir string
	doc    *openrpc.Document
	fs     afero.Fs
	log    zerolog.Logger
	cfg    clientgen.Config
}

// Option configures a ClientFactory.
type Option func(*ClientFactory)

// WithFs sets the file system written to. The default is the OS file system.
func WithFs(fs afero.Fs) Option {
	return func(f *ClientFactory) { f.fs = fs }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(log zerolog.Logger) Option {
	return func(f *ClientFactory) { f.log = log }
}

// WithConfig sets generation options applied over each generator's defaults.
func WithConfig(cfg clientgen.Config) Option {
	return func(f *ClientFactory) { f.cfg = cfg }
}

// New returns a factory writing under outDir.
func New(outDir string, doc *openrpc.Document, opts ...Option) *ClientFactory {
	f := &ClientFactory{
		outDir: outDir,
		doc:    doc,
		fs:     afero.NewOsFs(),
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OutDir returns the directory the factory writes language directories into.
func (f *ClientFactory) OutDir() string { return f.outDir }

// GenerateClient generates the client for lang and returns the written
// paths in sorted order.
//
// When clean is true the language directory is removed first. Otherwise
// existing files are kept and only files the generator emits are replaced.
func (f *ClientFactory) GenerateClient(lang clientgen.Language, clean bool) ([]string, error) {
	gen := clientgen.Get(lang)
	if gen == nil {
		return nil, fmt.Errorf("%w for language %q", ErrNoGenerator, lang)
	}
	if f.doc == nil {
		return nil, errors.New("no document to generate from")
	}

	model, err := clientgen.BuildModel(f.doc)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}

	cfg := f.cfg
	files, err := gen.Generate(model, &cfg)
	if err != nil {
		return nil, fmt.Errorf("generating %s client: %w", lang, err)
	}

	dir := filepath.Join(f.outDir, string(lang))
	if clean {
		f.log.Debug().Str("dir", dir).Msg("removing previous output")
		if err := f.fs.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("removing %s: %w", dir, err)
		}
	} else if exists, err := f.Exists(lang); err == nil && exists {
		f.log.Debug().Str("dir", dir).Msg("keeping existing files")
	}
	if err := f.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := f.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, fmt.Errorf("creating directory for %s: %w", name, err)
		}
		if err := afero.WriteFile(f.fs, path, files[name], 0o644); err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		f.log.Debug().Str("file", path).Int("bytes", len(files[name])).Msg("wrote file")
		written = append(written, path)
	}

	f.log.Info().
		Str("lang", string(lang)).
		Str("dir", dir).
		Int("files", len(written)).
		Msg("generated client")
	return written, nil
}

// Exists reports whether the language directory already has content.
func (f *ClientFactory) Exists(lang clientgen.Language) (bool, error) {
	dir := filepath.Join(f.outDir, string(lang))
	ok, err := afero.DirExists(f.fs, dir)
	if err != nil || !ok {
		return false, err
	}
	empty, err := afero.IsEmpty(f.fs, dir)
	if err != nil {
		return false, err
	}
	return !empty, nil
}
