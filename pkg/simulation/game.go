package simulation

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-physarum-simulation/pkg/ui"
	"go.uber.org/zap"
)

const (
	panelWidth  = 280
	panelMargin = 10
)

var (
	backgroundColor = color.RGBA{R: 12, G: 12, B: 16, A: 255}
	markerColor     = color.NRGBA{G: 255, A: 38}
	agentColor      = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	borderColor     = color.RGBA{R: 70, G: 70, B: 80, A: 255}
)

// Game is the ebiten front end: it drives the world actor one tick per
// frame and draws the latest snapshot it received.
type Game struct {
	ctx    context.Context
	host   *Host
	cfg    *Config
	logger *zap.Logger
	last   *Frame

	panel               *ui.Panel
	widgetSensorAngle   *ui.Slider
	widgetSensorRange   *ui.Slider
	widgetSteeringAngle *ui.Slider
	widgetShowAgents    *ui.Checkbox
	widgetPaused        *ui.Checkbox
	widgetSpawnBatch    *ui.Slider
	widgetSpawn         *ui.Button

	sent         Params
	pendingSpawn int

	// Timing instrumentation, rolling averages in ms
	updateAvg float64
	drawAvg   float64
}

func NewGame(ctx context.Context, cfg *Config, host *Host, logger *zap.Logger) *Game {
	g := &Game{
		ctx:    ctx,
		host:   host,
		cfg:    cfg,
		logger: logger.Named("game"),
		last:   &Frame{},
	}

	panel := ui.NewPanel(panelMargin, panelMargin, panelWidth, math.Max(cfg.WorldHeight()*cfg.Scale, 540)-2*panelMargin)
	panel.AddSection("Sensing")
	g.widgetSensorAngle = panel.AddSlider("Sensor Angle", 0, math.Pi, cfg.SensorAngle)
	g.widgetSensorRange = panel.AddSlider("Sensor Range", 0.5, cfg.ChunkSize/2, cfg.SensorRange)
	g.widgetSteeringAngle = panel.AddSlider("Steering Angle", 0, math.Pi/2, cfg.SteeringAngle)

	panel.AddSection("Agents")
	g.widgetShowAgents = panel.AddCheckbox("Show Agents", cfg.AgentVisibility)
	g.widgetSpawnBatch = panel.AddSlider("Spawn Batch", 1, 1000, float64(cfg.SpawnBatch))
	g.widgetSpawnBatch.Step = 1
	g.widgetSpawnBatch.Format = "%.0f"
	g.widgetSpawn = panel.AddButton("Spawn Agents", func() {
		g.pendingSpawn += int(g.widgetSpawnBatch.Value)
	})

	panel.AddSection("Simulation")
	g.widgetPaused = panel.AddCheckbox("Paused", false)
	g.panel = panel

	g.sent = g.params()
	return g
}

func (g *Game) params() Params {
	return Params{
		SensorAngle:     g.widgetSensorAngle.Value,
		SensorRange:     g.widgetSensorRange.Value,
		SteeringAngle:   g.widgetSteeringAngle.Value,
		AgentVisibility: g.widgetShowAgents.Value,
	}
}

// Update returns the kernel error once the world has failed, which ends
// ebiten.RunGame.
func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	select {
	case f := <-g.host.Frames:
		if f.Err != nil {
			return fmt.Errorf("simulation stopped: %w", f.Err)
		}
		g.last = f
	default:
		// Use previous state if new one isn't ready
	}

	if p := g.params(); p != g.sent {
		if err := g.host.Update(g.ctx, p); err != nil {
			return err
		}
		g.sent = p
	}
	if g.pendingSpawn > 0 {
		if err := g.host.Spawn(g.ctx, g.pendingSpawn); err != nil {
			return err
		}
		g.logger.Debug("spawn requested", zap.Int("count", g.pendingSpawn))
		g.pendingSpawn = 0
	}
	if g.widgetPaused.Value {
		return nil
	}
	return g.host.Tick(g.ctx, time.Second/time.Duration(g.cfg.TicksPerSecond))
}

// worldOrigin is where world (0, 0) lands on screen, right of the panel.
func (g *Game) worldOrigin() (float32, float32) {
	return panelWidth + 2*panelMargin, panelMargin
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(backgroundColor)
	ox, oy := g.worldOrigin()
	scale := float32(g.cfg.Scale)
	snap := &g.last.Snapshot

	vector.StrokeRect(screen, ox, oy,
		float32(g.cfg.WorldWidth())*scale, float32(g.cfg.WorldHeight())*scale,
		1, borderColor, false)

	for _, m := range snap.Markers {
		vector.FillCircle(screen,
			ox+float32(m.Position.X)*scale,
			oy+float32(m.Position.Y)*scale,
			float32(m.Radius)*scale,
			markerColor, true)
	}
	if snap.AgentVisibility {
		for _, a := range snap.Agents {
			vector.StrokeCircle(screen,
				ox+float32(a.Position.X)*scale,
				oy+float32(a.Position.Y)*scale,
				float32(g.cfg.AgentRadius),
				1, agentColor, true)
		}
	}

	g.panel.Draw(screen)

	msg := fmt.Sprintf("Tick: %d\nAgents: %d\nMarkers: %d\n\nFPS: %.2f\nTPS: %.2f\nUpdate: %.2fms\nDraw:   %.2fms",
		snap.Tick,
		len(snap.Agents),
		len(snap.Markers),
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-140, panelMargin)
}

func (g *Game) Layout(int, int) (int, int) {
	w := panelWidth + 3*panelMargin + int(math.Ceil(g.cfg.WorldWidth()*g.cfg.Scale)) + 150
	h := max(int(math.Ceil(g.cfg.WorldHeight()*g.cfg.Scale))+2*panelMargin, 540)
	return w, h
}

// RunWindow opens the simulation window and blocks until it is closed or the
// world fails.
func RunWindow(ctx context.Context, cfg *Config, logger *zap.Logger) (err error) {
	host, err := StartHost(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, host.Stop(ctx))
	}()

	game := NewGame(ctx, cfg, host, logger)
	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Physarum")
	ebiten.SetTPS(cfg.TicksPerSecond)

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("simulation window stopped", zap.Error(err))
		return err
	}
	return nil
}
