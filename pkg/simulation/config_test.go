package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultConfig_BuildsWorld(t *testing.T) {
	cfg := DefaultConfig()
	w, err := cfg.NewWorld(zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 12, w.Width())
	assert.Equal(t, 12, w.Height())
	assert.Equal(t, 16.0, w.ChunkSize())
	assert.Equal(t, 192.0, cfg.WorldWidth())
	assert.Equal(t, 0, w.AgentCount())
}

func TestParseConfig_EmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "physarum.json", `{
		"gridWidth": 4,
		"gridHeight": 3,
		"sensorRange": 6,
		"agentVisibility": false,
		"seed": 7
	}`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.GridWidth)
	assert.Equal(t, 3, cfg.GridHeight)
	assert.Equal(t, 6.0, cfg.SensorRange)
	assert.False(t, cfg.AgentVisibility)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, DefaultConfig().ChunkSize, cfg.ChunkSize)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "physarum.yaml", `
gridWidth: 2
gridHeight: 2
chunkSize: 20
sensorAngle: 0.5
lifetime: 30
dropPeriod: 2
decayTable:
  - radius: 1
    weight: 1
  - radius: 2.5
    weight: 0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.GridWidth)
	assert.Equal(t, 20.0, cfg.ChunkSize)
	assert.Equal(t, 0.5, cfg.SensorAngle)
	assert.Equal(t, uint64(30), cfg.Lifetime)
	require.Len(t, cfg.DecayTable, 2)
	assert.Equal(t, 2.5, cfg.DecayTable[1].Radius)

	w, err := cfg.NewWorld(zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), w.Constants().DropPeriod)
}

func TestLoadConfig_EmptyYAML(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"zero width", `{"gridWidth": 0}`},
		{"fractional height", `{"gridHeight": 1.5}`},
		{"unknown field", `{"numRedAtStart": 3}`},
		{"wrong type", `{"agentVisibility": "yes"}`},
		{"negative chunk", `{"chunkSize": -4}`},
		{"single control point", `{"decayTable": [{"radius": 1, "weight": 1}]}`},
		{"sensor range beyond half chunk", `{"chunkSize": 10, "sensorRange": 6}`},
		{"weight increases", `{"decayTable": [{"radius": 1, "weight": 0.2}, {"radius": 2, "weight": 0.8}]}`},
		{"lifetime shorter than table", `{"lifetime": 2}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadConfig(writeConfig(t, "broken.json", `{"gridWidth": `))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfig(t, "broken.yaml", "gridWidth: [1"))
	assert.Error(t, err)
}

func TestConfig_SeedIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GridWidth, cfg.GridHeight = 3, 3
	cfg.Seed = 42

	run := func() []float64 {
		w, err := cfg.NewWorld(zaptest.NewLogger(t))
		require.NoError(t, err)
		require.NoError(t, w.SpawnAgents(20))
		for range 30 {
			require.NoError(t, w.Tick())
		}
		snap, err := w.Snapshot()
		require.NoError(t, err)
		var xs []float64
		for _, a := range snap.Agents {
			xs = append(xs, a.Position.X, a.Position.Y)
		}
		return xs
	}
	assert.Equal(t, run(), run())
}
