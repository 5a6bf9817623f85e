package factory_test

import (
	"bytes"
	"os"
	"sort"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ocg/internal/clientgen"
	"github.com/pthm/ocg/internal/factory"
	"github.com/pthm/ocg/pkg/openrpc"
)

func petstore(t *testing.T) *openrpc.Document {
	t.Helper()
	data, err := os.ReadFile("../../pkg/openrpc/testdata/petstore.json")
	require.NoError(t, err)
	doc, err := openrpc.Parse(data)
	require.NoError(t, err)
	return doc
}

func TestGenerateClient_WritesEveryLanguage(t *testing.T) {
	doc := petstore(t)

	want := map[clientgen.Language][]string{
		clientgen.Python: {
			"out/python/petstore/__init__.py",
			"out/python/petstore/client.py",
			"out/python/petstore/models.py",
			"out/python/pyproject.toml",
		},
		clientgen.TypeScript: {
			"out/typescript/package.json",
			"out/typescript/src/client.ts",
			"out/typescript/src/index.ts",
			"out/typescript/src/types.ts",
		},
		clientgen.Go: {
			"out/go/client_gen.go",
			"out/go/types_gen.go",
		},
	}

	for lang, paths := range want {
		t.Run(string(lang), func(t *testing.T) {
			fs := afero.NewMemMapFs()
			f := factory.New("out", doc, factory.WithFs(fs))

			written, err := f.GenerateClient(lang, false)
			require.NoError(t, err)
			assert.Equal(t, paths, written)
			assert.True(t, sort.StringsAreSorted(written))

			for _, p := range written {
				data, err := afero.ReadFile(fs, p)
				require.NoError(t, err)
				assert.NotEmpty(t, data, p)
			}
		})
	}
}

func TestGenerateClient_PreservesExistingFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/python/README.md", []byte("keep me"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "out/python/pyproject.toml", []byte("stale"), 0o644))

	f := factory.New("out", petstore(t), factory.WithFs(fs))
	_, err := f.GenerateClient(clientgen.Python, false)
	require.NoError(t, err)

	readme, err := afero.ReadFile(fs, "out/python/README.md")
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(readme))

	pyproject, err := afero.ReadFile(fs, "out/python/pyproject.toml")
	require.NoError(t, err)
	assert.NotEqual(t, "stale", string(pyproject))
}

func TestGenerateClient_Clean(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/python/README.md", []byte("old"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "out/go/keep.go", []byte("other language"), 0o644))

	f := factory.New("out", petstore(t), factory.WithFs(fs))
	_, err := f.GenerateClient(clientgen.Python, true)
	require.NoError(t, err)

	exists, err := afero.Exists(fs, "out/python/README.md")
	require.NoError(t, err)
	assert.False(t, exists, "clean should remove the language directory")

	exists, err = afero.Exists(fs, "out/go/keep.go")
	require.NoError(t, err)
	assert.True(t, exists, "clean must not touch other languages")
}

func TestGenerateClient_UsesConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := factory.New("out", petstore(t),
		factory.WithFs(fs),
		factory.WithConfig(clientgen.Config{Package: "pets"}),
	)

	written, err := f.GenerateClient(clientgen.Go, false)
	require.NoError(t, err)
	require.NotEmpty(t, written)

	src, err := afero.ReadFile(fs, "out/go/types_gen.go")
	require.NoError(t, err)
	assert.Contains(t, string(src), "package pets")
}

func TestGenerateClient_Errors(t *testing.T) {
	t.Run("unknown language", func(t *testing.T) {
		f := factory.New("out", petstore(t), factory.WithFs(afero.NewMemMapFs()))
		_, err := f.GenerateClient(clientgen.Language("cobol"), false)
		require.Error(t, err)
		assert.True(t, factory.IsNoGeneratorErr(err))
	})

	t.Run("nil document", func(t *testing.T) {
		f := factory.New("out", nil, factory.WithFs(afero.NewMemMapFs()))
		_, err := f.GenerateClient(clientgen.Python, false)
		assert.Error(t, err)
	})

	t.Run("read-only file system", func(t *testing.T) {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		f := factory.New("out", petstore(t), factory.WithFs(fs))
		_, err := f.GenerateClient(clientgen.Python, false)
		assert.Error(t, err)
	})
}

func TestGenerateClient_Logs(t *testing.T) {
	var buf bytes.Buffer
	f := factory.New("out", petstore(t),
		factory.WithFs(afero.NewMemMapFs()),
		factory.WithLogger(zerolog.New(&buf)),
	)
	_, err := f.GenerateClient(clientgen.TypeScript, false)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"lang":"typescript"`)
	assert.Contains(t, buf.String(), "generated client")
}

func TestExists(t *testing.T) {
	fs := afero.NewMemMapFs()
	f := factory.New("out", petstore(t), factory.WithFs(fs))

	ok, err := f.Exists(clientgen.Python)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.GenerateClient(clientgen.Python, false)
	require.NoError(t, err)

	ok, err = f.Exists(clientgen.Python)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "out", f.OutDir())
}
