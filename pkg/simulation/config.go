package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/physarum"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema []byte

const schemaURL = "config.schema.json"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	// Grid
	GridWidth  int     `json:"gridWidth" yaml:"gridWidth"`
	GridHeight int     `json:"gridHeight" yaml:"gridHeight"`
	ChunkSize  float64 `json:"chunkSize" yaml:"chunkSize"`

	// Steering, angles in radians
	SensorAngle   float64 `json:"sensorAngle" yaml:"sensorAngle"`
	SensorRange   float64 `json:"sensorRange" yaml:"sensorRange"` // at most chunkSize/2
	SteeringAngle float64 `json:"steeringAngle" yaml:"steeringAngle"`

	// Population
	InitialAgents   int  `json:"initialAgents" yaml:"initialAgents"`
	SpawnBatch      int  `json:"spawnBatch" yaml:"spawnBatch"`
	AgentVisibility bool `json:"agentVisibility" yaml:"agentVisibility"`

	// Runtime
	Parallelism    int    `json:"parallelism" yaml:"parallelism"`
	Seed           uint64 `json:"seed" yaml:"seed"` // 0 picks a random seed
	TicksPerSecond int    `json:"ticksPerSecond" yaml:"ticksPerSecond"`

	// Display
	Scale       float64 `json:"scale" yaml:"scale"`             // screen pixels per world unit
	AgentRadius float64 `json:"agentRadius" yaml:"agentRadius"` // in screen pixels

	// Kernel constants
	Lifetime      uint64                  `json:"lifetime" yaml:"lifetime"`
	DropPeriod    uint64                  `json:"dropPeriod" yaml:"dropPeriod"`
	MaxSpawnSpeed float64                 `json:"maxSpawnSpeed" yaml:"maxSpawnSpeed"`
	DecayTable    []physarum.ControlPoint `json:"decayTable" yaml:"decayTable"`
}

func DefaultConfig() *Config {
	c := physarum.DefaultConstants()
	return &Config{
		GridWidth:       12,
		GridHeight:      12,
		ChunkSize:       16,
		SensorAngle:     math.Pi / 4,
		SensorRange:     8,
		SteeringAngle:   math.Pi / 10,
		InitialAgents:   600,
		SpawnBatch:      100,
		AgentVisibility: true,
		Parallelism:     4,
		TicksPerSecond:  60,
		Scale:           4,
		AgentRadius:     5,
		Lifetime:        c.Lifetime,
		DropPeriod:      c.DropPeriod,
		MaxSpawnSpeed:   c.MaxSpawnSpeed,
		DecayTable:      c.DecayTable,
	}
}

// Constants gathers the kernel constants of the config.
func (c *Config) Constants() physarum.Constants {
	return physarum.Constants{
		DecayTable:    c.DecayTable,
		Lifetime:      c.Lifetime,
		DropPeriod:    c.DropPeriod,
		MaxSpawnSpeed: c.MaxSpawnSpeed,
	}
}

// WorldWidth is the plane width in world units.
func (c *Config) WorldWidth() float64 { return float64(c.GridWidth) * c.ChunkSize }

// WorldHeight is the plane height in world units.
func (c *Config) WorldHeight() float64 { return float64(c.GridHeight) * c.ChunkSize }

// NewWorld builds an empty kernel from the config. Agents are not spawned.
func (c *Config) NewWorld(logger *zap.Logger) (*physarum.World, error) {
	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	logger.Info("building world",
		zap.Int("gridWidth", c.GridWidth),
		zap.Int("gridHeight", c.GridHeight),
		zap.Float64("chunkSize", c.ChunkSize),
		zap.Uint64("seed", seed))

	return physarum.New(c.GridWidth, c.GridHeight, c.ChunkSize, c.SensorAngle, c.SensorRange, c.SteeringAngle,
		physarum.WithConstants(c.Constants()),
		physarum.WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		physarum.WithParallelism(c.Parallelism),
		physarum.WithLogger(logger.Named("kernel")),
	)
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}
	sch, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return sch, nil
}

// toJSON converts a YAML document to JSON so both formats go through the
// same schema validation.
func toJSON(b []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode config yaml: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return json.Marshal(doc)
}

// ParseConfig validates raw JSON against the schema and applies it over the
// defaults: fields absent from the document keep their default value.
func ParseConfig(b []byte) (*Config, error) {
	sch, err := compileSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.SensorRange > cfg.ChunkSize/2 {
		return nil, fmt.Errorf("%w: sensorRange %v exceeds half of chunkSize %v", ErrInvalidConfig, cfg.SensorRange, cfg.ChunkSize)
	}
	if err := cfg.Constants().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadConfig loads configuration from a JSON or YAML file (chosen by
// extension) and validates it against the embedded schema.
func LoadConfig(configFile string) (*Config, error) {
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if b, err = toJSON(b); err != nil {
			return nil, err
		}
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", configFile, err)
	}
	return cfg, nil
}
