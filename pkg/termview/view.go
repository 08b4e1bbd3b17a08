// Package termview draws the simulation in a terminal with tcell and drives
// it from the keyboard.
package termview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/physarum"
	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/simulation"
	"go.uber.org/zap"
)

const steeringStep = math.Pi / 60

// View renders frames from a simulation host and turns key presses into
// host messages.
type View struct {
	screen tcell.Screen
	host   *simulation.Host
	cfg    *simulation.Config
	logger *zap.Logger

	params simulation.Params
	paused bool
	last   physarum.Snapshot
}

func New(screen tcell.Screen, host *simulation.Host, cfg *simulation.Config, logger *zap.Logger) *View {
	return &View{
		screen: screen,
		host:   host,
		cfg:    cfg,
		logger: logger.Named("termview"),
		params: simulation.Params{
			SensorAngle:     cfg.SensorAngle,
			SensorRange:     cfg.SensorRange,
			SteeringAngle:   cfg.SteeringAngle,
			AgentVisibility: cfg.AgentVisibility,
		},
	}
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionUpdate
	actionSpawn
)

// handleKey updates local state for a key and says what the host needs to hear.
func (v *View) handleKey(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
	default:
		return actionNone
	}

	switch ev.Rune() {
	case 'q':
		return actionQuit
	case ' ':
		v.paused = !v.paused
		return actionNone
	case 'v':
		v.params.AgentVisibility = !v.params.AgentVisibility
		return actionUpdate
	case 's':
		return actionSpawn
	case '+', '=':
		v.params.SteeringAngle = math.Min(v.params.SteeringAngle+steeringStep, math.Pi/2)
		return actionUpdate
	case '-':
		v.params.SteeringAngle = math.Max(v.params.SteeringAngle-steeringStep, 0)
		return actionUpdate
	}
	return actionNone
}

// Run ticks the world at cfg.TicksPerSecond and redraws on every frame
// until q is pressed, ctx ends or the world fails.
func (v *View) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(v.cfg.TicksPerSecond))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	dt := time.Second / time.Duration(v.cfg.TicksPerSecond)
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				v.screen.Sync()
				v.draw()
			case *tcell.EventKey:
				if err := v.dispatch(ctx, v.handleKey(ev)); err != nil {
					if errors.Is(err, errQuit) {
						return nil
					}
					return err
				}
			}

		case <-ticker.C:
			if v.paused {
				continue
			}
			if err := v.host.Tick(ctx, dt); err != nil {
				return err
			}

		case f := <-v.host.Frames:
			if f.Err != nil {
				return fmt.Errorf("simulation stopped: %w", f.Err)
			}
			v.last = f.Snapshot
			v.draw()
		}
	}
}

var errQuit = errors.New("quit")

func (v *View) dispatch(ctx context.Context, a action) error {
	switch a {
	case actionQuit:
		return errQuit
	case actionUpdate:
		v.logger.Debug("parameters changed",
			zap.Float64("steeringAngle", v.params.SteeringAngle),
			zap.Bool("agentVisibility", v.params.AgentVisibility))
		return v.host.Update(ctx, v.params)
	case actionSpawn:
		return v.host.Spawn(ctx, v.cfg.SpawnBatch)
	}
	return nil
}

var (
	agentStyle  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
)

func (v *View) draw() {
	v.screen.Clear()
	cols, rows := v.screen.Size()
	if rows < 2 || cols < 1 {
		v.screen.Show()
		return
	}

	r := Rasterize(&v.last, cols, rows-1)
	for y := 0; y < r.Rows; y++ {
		for x := 0; x < r.Cols; x++ {
			if r.Agents[y*r.Cols+x] {
				v.screen.SetContent(x, y, 'o', nil, agentStyle)
				continue
			}
			g := r.Glyph(x, y)
			if g == ' ' {
				continue
			}
			shade := int32(80 + 175*r.Level(x, y))
			v.screen.SetContent(x, y, g, nil, tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, shade, 0)))
		}
	}

	status := v.status()
	for x := 0; x < cols; x++ {
		ch := ' '
		if x < len(status) {
			ch = rune(status[x])
		}
		v.screen.SetContent(x, rows-1, ch, nil, statusStyle)
	}
	v.screen.Show()
}

func (v *View) status() string {
	state := "running"
	if v.paused {
		state = "paused"
	}
	return fmt.Sprintf(" tick %d | agents %d | markers %d | steer %.3f | %s | q quit  v agents  space pause  s spawn  +/- steer",
		v.last.Tick, len(v.last.Agents), len(v.last.Markers), v.params.SteeringAngle, state)
}

// Run opens the terminal, starts a host and blocks until the view exits.
func Run(ctx context.Context, cfg *simulation.Config, logger *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to init terminal: %w", err)
	}
	defer screen.Fini()

	host, err := simulation.StartHost(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := host.Stop(ctx); err != nil {
			logger.Warn("host stop failed", zap.Error(err))
		}
	}()

	return New(screen, host, cfg, logger).Run(ctx)
}
