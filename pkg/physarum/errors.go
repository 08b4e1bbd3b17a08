package physarum

import "errors"

var (
	// ErrSensorRange is returned when the sensor range exceeds half the chunk side.
	ErrSensorRange = errors.New("sensor range must not exceed half the chunk size")
	// ErrInvalidGrid is returned for non-positive grid dimensions or chunk size.
	ErrInvalidGrid = errors.New("grid dimensions and chunk size must be positive")
	// ErrSpawnSpeed is returned when agents could outrun a whole chunk in one tick.
	ErrSpawnSpeed = errors.New("agent speed must be below the chunk size")
	// ErrInvalidConstants is returned by Constants.Validate.
	ErrInvalidConstants = errors.New("invalid simulation constants")
	// ErrInvalidAgent is returned when a placed agent is outside its chunk or in a missing chunk.
	ErrInvalidAgent = errors.New("invalid agent placement")
	// ErrInvalidCount is returned when asked to spawn a negative number of agents.
	ErrInvalidCount = errors.New("agent count must not be negative")

	// Defensive checks. Any of these aborts the tick and latches the world as failed.

	// ErrLifetimeExceeded means a marker outlived the cull pass.
	ErrLifetimeExceeded = errors.New("marker age exceeds lifetime")
	// ErrQuadrant means the sensing quadrant resolved to an impossible neighbor.
	ErrQuadrant = errors.New("unexpected sensing quadrant")
	// ErrDecisionMismatch means a steering decision no longer lines up with its agent.
	ErrDecisionMismatch = errors.New("steering decision does not match agent")
	// ErrWorldFailed is returned by Tick once a previous tick has failed.
	ErrWorldFailed = errors.New("world failed on a previous tick")
)
