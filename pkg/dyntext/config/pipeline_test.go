package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/dyntext/pkg/dyntext/config"
)

const pipelineYAML = `
cycles: 3
history: ./history.db
nodes:
  - id: subject
    text: "Hello {fast|slow|{small|huge}} car!"
    seed: 42
  - id: style
    text: "{oil|watercolor}"
    counter: 1
    shuffle: true
    autoincrement: true
    prefix: "in the style of"
`

func TestDecodePipeline(t *testing.T) {
	cfg, err := config.FromYAML([]byte(pipelineYAML))
	require.NoError(t, err)

	p, err := config.DecodePipeline(cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, p.Cycles)
	assert.Equal(t, "./history.db", p.History)
	require.Len(t, p.Nodes, 2)

	assert.Equal(t, config.NodeSpec{
		ID:      "subject",
		Text:    "Hello {fast|slow|{small|huge}} car!",
		Seed:    42,
		Counter: -1,
	}, p.Nodes[0])

	assert.Equal(t, config.NodeSpec{
		ID:            "style",
		Text:          "{oil|watercolor}",
		Counter:       1,
		Shuffle:       true,
		Autoincrement: true,
		Prefix:        "in the style of",
	}, p.Nodes[1])
}

func TestDecodePipeline_Defaults(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"cycles": 0, "nodes": [{"id": "a", "text": "x"}]}`))
	require.NoError(t, err)

	p, err := config.DecodePipeline(cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Cycles, "cycles below one are raised to one")
	assert.Empty(t, p.History)
	assert.Equal(t, int64(-1), p.Nodes[0].Counter)
}

func TestDecodePipeline_Errors(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr error
	}{
		{"no nodes key", `{"cycles": 2}`, config.ErrNoNodes},
		{"empty nodes", `{"nodes": []}`, config.ErrNoNodes},
		{"nodes not a list", `{"nodes": "x"}`, config.ErrNoNodes},
		{"missing id", `{"nodes": [{"text": "x"}]}`, config.ErrNodeID},
		{"duplicate id", `{"nodes": [{"id": "a"}, {"id": "a"}]}`, config.ErrNodeID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromJSON([]byte(tt.json))
			require.NoError(t, err)
			_, err = config.DecodePipeline(cfg)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestLoadPipeline(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(pipelineYAML), 0o644))

	p, err := config.LoadPipeline(path)
	require.NoError(t, err)
	assert.Len(t, p.Nodes, 2)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("cycles: 1\n"), 0o644))
	_, err = config.LoadPipeline(bad)
	assert.ErrorIs(t, err, config.ErrNoNodes)
	assert.Contains(t, err.Error(), bad)
}

func TestLoadPipeline_ListDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nodes.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- id: a\n  text: \"{x|y}\"\n"), 0o644))

	_, err := config.LoadPipeline(path)
	require.ErrorIs(t, err, config.ErrNotMapping)
	assert.Contains(t, err.Error(), path)
	assert.NotErrorIs(t, err, config.ErrNoNodes)
}

func TestLoadPipeline_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.toml")
	require.NoError(t, os.WriteFile(path, []byte("cycles = 1\n"), 0o644))

	_, err := config.LoadPipeline(path)
	assert.ErrorIs(t, err, config.ErrUnsupportedFormat)
}
