package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/ocg/pkg/discover"
)

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	// Create temp file
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "custom.yaml")
	err := os.WriteFile(tmpFile, []byte("generate:\n  lang: go\n"), 0o644)
	require.NoError(t, err)

	path, err := findConfigFile(tmpFile)
	require.NoError(t, err)
	assert.Equal(t, tmpFile, path)
}

func TestFindConfigFile_ExplicitPathNotFound(t *testing.T) {
	_, err := findConfigFile("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestFindConfigFile_AutoDiscovery(t *testing.T) {
	// Create directory structure with .git and ocg.yaml
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	configPath := filepath.Join(root, "ocg.yaml")
	err = os.WriteFile(configPath, []byte("generate:\n  lang: go\n"), 0o644)
	require.NoError(t, err)

	// Create nested directory
	nested := filepath.Join(root, "deep", "nested")
	err = os.MkdirAll(nested, 0o755)
	require.NoError(t, err)

	// Change to nested directory
	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(nested)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath)
}

func TestFindConfigFile_PrefersYamlOverYml(t *testing.T) {
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	// Create both files
	yamlPath := filepath.Join(root, "ocg.yaml")
	ymlPath := filepath.Join(root, "ocg.yml")
	err = os.WriteFile(yamlPath, []byte("generate:\n  lang: go\n"), 0o644)
	require.NoError(t, err)
	err = os.WriteFile(ymlPath, []byte("generate:\n  lang: python\n"), 0o644)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(yamlPath)
	actualPath, _ := filepath.EvalSymlinks(path)
	assert.Equal(t, expectedPath, actualPath) // Should prefer .yaml
}

func TestFindConfigFile_StopsAtGitRoot(t *testing.T) {
	// Config above .git should not be found
	root := t.TempDir()
	err := os.WriteFile(filepath.Join(root, "ocg.yaml"), []byte("generate:\n  lang: go\n"), 0o644)
	require.NoError(t, err)

	project := filepath.Join(root, "project")
	err = os.MkdirAll(project, 0o755)
	require.NoError(t, err)
	err = os.Mkdir(filepath.Join(project, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(project)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path) // Should not find config above .git
}

func TestFindConfigFile_NoConfigReturnsEmpty(t *testing.T) {
	// Create directory with .git but no config
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	defer func() { _ = os.Chdir(oldCwd) }()
	err = os.Chdir(root)
	require.NoError(t, err)

	path, err := findConfigFile("")
	require.NoError(t, err)
	assert.Empty(t, path)
}

// chdirRepo creates an empty repository root and changes into it for the
// duration of the test.
func chdirRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	err := os.Mkdir(filepath.Join(root, ".git"), 0o755)
	require.NoError(t, err)

	oldCwd, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Chdir(oldCwd) })
	err = os.Chdir(root)
	require.NoError(t, err)
	return root
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirRepo(t)

	cfg, configPath, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, configPath)

	// Check defaults
	assert.Empty(t, cfg.Generate.URL)
	assert.Empty(t, cfg.Generate.Lang)
	assert.Equal(t, "./generated", cfg.Generate.Out)
	assert.False(t, cfg.Generate.Clean)
	assert.Equal(t, discover.DefaultTimeout, cfg.Discover.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Discover.Timeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := chdirRepo(t)

	configPath := filepath.Join(root, "ocg.yaml")
	err := os.WriteFile(configPath, []byte(`
generate:
  url: http://localhost:5000/api/v1/
  lang: typescript
  package: petstore-client
  client_name: PetStore
  clean: true
discover:
  timeout: 10s
  headers:
    Authorization: Bearer token
log:
  format: json
`), 0o644)
	require.NoError(t, err)

	cfg, foundPath, err := LoadConfig("")
	require.NoError(t, err)

	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedPath, _ := filepath.EvalSymlinks(configPath)
	actualPath, _ := filepath.EvalSymlinks(foundPath)
	assert.Equal(t, expectedPath, actualPath)

	assert.Equal(t, "http://localhost:5000/api/v1/", cfg.Generate.URL)
	assert.Equal(t, "typescript", cfg.Generate.Lang)
	assert.Equal(t, "petstore-client", cfg.Generate.Package)
	assert.Equal(t, "PetStore", cfg.Generate.ClientName)
	assert.True(t, cfg.Generate.Clean)
	assert.Equal(t, 10*time.Second, cfg.Discover.Timeout)
	assert.Equal(t, "json", cfg.Log.Format)

	// Viper lowercases map keys.
	assert.Equal(t, map[string]string{"authorization": "Bearer token"}, cfg.Discover.Headers)

	// Check that defaults are still applied for unset values
	assert.Equal(t, "./generated", cfg.Generate.Out)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_ExplicitYml(t *testing.T) {
	root := chdirRepo(t)

	configPath := filepath.Join(root, "custom.yml")
	err := os.WriteFile(configPath, []byte("generate:\n  out: ./clients\n"), 0o644)
	require.NoError(t, err)

	cfg, foundPath, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, configPath, foundPath)
	assert.Equal(t, "./clients", cfg.Generate.Out)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	root := chdirRepo(t)

	configPath := filepath.Join(root, "ocg.yaml")
	err := os.WriteFile(configPath, []byte("generate:\n  lang: python\n"), 0o644)
	require.NoError(t, err)

	// Set env var
	t.Setenv("OCG_GENERATE_LANG", "go")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	// Env should override file
	assert.Equal(t, "go", cfg.Generate.Lang)
}

func TestLoadConfig_NestedEnvVars(t *testing.T) {
	chdirRepo(t)

	t.Setenv("OCG_GENERATE_OUT", "/tmp/clients")
	t.Setenv("OCG_DISCOVER_TIMEOUT", "5s")
	t.Setenv("OCG_LOG_LEVEL", "debug")
	t.Setenv("OCG_GENERATE_CLEAN", "true")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/clients", cfg.Generate.Out)
	assert.Equal(t, 5*time.Second, cfg.Discover.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Generate.Clean)
}

func TestLoadConfig_NegativeTimeout(t *testing.T) {
	chdirRepo(t)
	t.Setenv("OCG_DISCOVER_TIMEOUT", "-1s")

	_, _, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover.timeout must not be negative")
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	root := chdirRepo(t)

	err := os.WriteFile(filepath.Join(root, "ocg.yaml"), []byte("generate: [unclosed"), 0o644)
	require.NoError(t, err)

	_, _, err = LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDiscoverOptions(t *testing.T) {
	// A zero timeout is passed through so it disables the default bound.
	cfg := &Config{}
	assert.Len(t, cfg.DiscoverOptions(), 1)

	cfg.Discover.Timeout = -time.Second
	assert.Empty(t, cfg.DiscoverOptions())

	cfg.Discover.Timeout = time.Second
	assert.Len(t, cfg.DiscoverOptions(), 1)

	cfg.Discover.Headers = map[string]string{"x-b": "2", "x-a": "1"}
	assert.Len(t, cfg.DiscoverOptions(), 3)
}

func TestLoadConfig_ZeroTimeout(t *testing.T) {
	chdirRepo(t)
	t.Setenv("OCG_DISCOVER_TIMEOUT", "0s")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)
	assert.Zero(t, cfg.Discover.Timeout)
	assert.Len(t, cfg.DiscoverOptions(), 1, "zero timeout must reach discover.WithTimeout")
}

func TestClientConfig(t *testing.T) {
	cfg := &Config{Generate: GenerateConfig{Package: "pets", ClientName: "PetClient", Lang: "go"}}

	cc := cfg.ClientConfig()
	assert.Equal(t, "pets", cc.Package)
	assert.Equal(t, "PetClient", cc.ClientName)
	assert.Empty(t, cc.ServerURL)
}
