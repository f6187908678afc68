package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"urlboard/internal/modules/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func runCLI(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(ctx, zaptest.NewLogger(t), zap.NewAtomicLevel())
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCLI_AddListRemove(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	common := []string{"--backend", "file", "--data-dir", dataDir}

	for _, u := range []string{"https://a.example", "https://b.example", "https://c.example"} {
		_, err := runCLI(t, ctx, append([]string{"add", u}, common...)...)
		require.NoError(t, err)
	}

	_, err := runCLI(t, ctx, append([]string{"remove", "1"}, common...)...)
	require.NoError(t, err)

	out, err := runCLI(t, ctx, append([]string{"list"}, common...)...)
	require.NoError(t, err)
	assert.Equal(t, "0\thttps://a.example\n1\thttps://c.example\n", out)
}

func TestCLI_AddRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	_, err := runCLI(t, ctx, "add", "not-a-url", "--data-dir", dataDir)
	assert.ErrorIs(t, err, validation.ErrInvalidURL)

	out, err := runCLI(t, ctx, "list", "--data-dir", dataDir)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestCLI_AddWithImage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	image := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(image, []byte("\x89PNG\r\n\x1a\n"), 0644))

	_, err := runCLI(t, ctx, "add", "https://example.com", "--image", image, "--backend", "sqlite", "--data-dir", dir)
	require.NoError(t, err)

	out, err := runCLI(t, ctx, "list", "--backend", "sqlite", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "0\thttps://example.com [image]\n", out)
}

func TestCLI_RemoveOutOfRange(t *testing.T) {
	_, err := runCLI(t, context.Background(), "remove", "3", "--backend", "memory")
	assert.Error(t, err)

	_, err = runCLI(t, context.Background(), "remove", "abc", "--backend", "memory")
	assert.Error(t, err)
}

func TestCLI_Import(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "urls.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Urls\nhttp://example.com\nnot-a-url\nhttps://test.com\n"), 0644))

	out, err := runCLI(t, ctx, "import", "--csv", csvPath, "--data-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2, rejected 1")

	out, err = runCLI(t, ctx, "list", "--data-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, "0\thttp://example.com\n1\thttps://test.com\n", out)
}

func TestCLI_ImportRequiresCSV(t *testing.T) {
	_, err := runCLI(t, context.Background(), "import", "--backend", "memory")
	assert.Error(t, err)
}

func TestCLI_ConfigFileAndFlagPrecedence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fileDir := filepath.Join(dir, "from-file")
	flagDir := filepath.Join(dir, "from-flag")
	cfgPath := filepath.Join(dir, "urlboard.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("backend: file\ndata_dir: "+fileDir+"\n"), 0644))

	_, err := runCLI(t, ctx, "add", "https://file.example", "--config", cfgPath)
	require.NoError(t, err)
	_, err = runCLI(t, ctx, "add", "https://flag.example", "--config", cfgPath, "--data-dir", flagDir)
	require.NoError(t, err)

	out, err := runCLI(t, ctx, "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "0\thttps://file.example\n", out)

	out, err = runCLI(t, ctx, "list", "--data-dir", flagDir)
	require.NoError(t, err)
	assert.Equal(t, "0\thttps://flag.example\n", out)
}

func TestCLI_InvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown backend", args: []string{"list", "--backend", "redis"}},
		{name: "postgres without dsn", args: []string{"list", "--backend", "postgres"}},
		{name: "bad log level", args: []string{"list", "--backend", "memory", "--log-level", "loud"}},
		{name: "missing config", args: []string{"list", "--config", "/nonexistent/urlboard.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, context.Background(), tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestCLI_ServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := runCLI(t, ctx, "serve", "--backend", "memory", "--listen", "127.0.0.1:0")
	assert.NoError(t, err)
	assert.False(t, strings.Contains(out, "Error"))
}
