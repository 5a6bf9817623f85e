// Package command implements the generate command handler.
//
// The handler validates the target language, acquires the OpenRPC document
// and drives the client factory. Every collaborator is injected so the
// handler can be exercised without a network, a file system, or real
// generators.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pthm/ocg/internal/clientgen"
	"github.com/pthm/ocg/internal/factory"
	"github.com/pthm/ocg/pkg/discover"
	"github.com/pthm/ocg/pkg/openrpc"
)

// Process exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// DiscoverFunc fetches a document from a server via rpc.discover.
type DiscoverFunc func(ctx context.Context, url string) (*openrpc.Document, error)

// FromFileFunc reads a document from a local path.
type FromFileFunc func(path string) (*openrpc.Document, error)

// ClientFactory emits a client for one language.
type ClientFactory interface {
	GenerateClient(lang clientgen.Language, clean bool) ([]string, error)
}

// FactoryFunc constructs a ClientFactory for a document and output directory.
type FactoryFunc func(outDir string, doc *openrpc.Document) (ClientFactory, error)

// AcquisitionError is returned when the document could not be obtained.
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("getting OpenRPC document from %q: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// GenerationError is returned when the factory could not be built or failed
// to emit the client.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("building client: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Generator is the generate command handler.
type Generator struct {
	Logger     zerolog.Logger
	Discover   DiscoverFunc
	FromFile   FromFileFunc
	NewFactory FactoryFunc

	// Clean is passed to GenerateClient. When false, files already in the
	// language directory are preserved.
	Clean bool
}

// New returns a handler wired to the real discovery functions and factory.
func New(log zerolog.Logger, discoverOpts []discover.Option, factoryOpts ...factory.Option) *Generator {
	return &Generator{
		Logger: log,
		Discover: func(ctx context.Context, url string) (*openrpc.Document, error) {
			return discover.Discover(ctx, url, discoverOpts...)
		},
		FromFile: discover.FromFile,
		NewFactory: func(outDir string, doc *openrpc.Document) (ClientFactory, error) {
			opts := append([]factory.Option{factory.WithLogger(log)}, factoryOpts...)
			return factory.New(outDir, doc, opts...), nil
		},
	}
}

// Generate runs the pipeline and returns the written paths. Errors are one
// of *clientgen.UnsupportedLanguageError, *AcquisitionError, or
// *GenerationError.
func (g *Generator) Generate(ctx context.Context, url, lang, out string) ([]string, error) {
	language, err := clientgen.ParseLanguage(lang)
	if err != nil {
		return nil, err
	}

	doc, err := g.acquire(ctx, url)
	if err != nil {
		return nil, &AcquisitionError{URL: url, Err: err}
	}

	if g.NewFactory == nil {
		return nil, &GenerationError{Err: errors.New("no client factory configured")}
	}
	cf, err := g.NewFactory(out, doc)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	written, err := cf.GenerateClient(language, g.Clean)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	return written, nil
}

func (g *Generator) acquire(ctx context.Context, url string) (*openrpc.Document, error) {
	if discover.IsRemote(url) {
		if g.Discover == nil {
			return nil, errors.New("no discover function configured")
		}
		g.Logger.Debug().Str("url", url).Msg("discovering document")
		return g.Discover(ctx, url)
	}
	if g.FromFile == nil {
		return nil, errors.New("no file loader configured")
	}
	g.Logger.Debug().Str("path", url).Msg("reading document")
	return g.FromFile(url)
}

// Run executes the command and returns the process status code. Failures
// are logged, never returned.
func (g *Generator) Run(ctx context.Context, url, lang, out string) int {
	written, err := g.Generate(ctx, url, lang, out)
	if err == nil {
		g.Logger.Debug().Strs("files", written).Msg("client generated")
		return ExitOK
	}

	var (
		unsupported *clientgen.UnsupportedLanguageError
		acquisition *AcquisitionError
		generation  *GenerationError
	)
	switch {
	case errors.As(err, &unsupported):
		g.Logger.Error().Msg(unsupported.Error())
	case errors.As(err, &acquisition):
		g.logCause(acquisition.Err)
		g.Logger.Error().Msgf(`Failed to get OpenRPC document from "%s"`, url)
	case errors.As(err, &generation):
		g.logCause(generation.Err)
		g.Logger.Error().Msg("Failed to build client.")
	default:
		g.Logger.Error().Err(err).Send()
	}
	return ExitFailure
}

// logCause records err under its concrete type name.
func (g *Generator) logCause(err error) {
	typ := fmt.Sprintf("%T", err)
	g.Logger.Error().Err(err).Str("type", typ).Msg(typ + ":")
}
