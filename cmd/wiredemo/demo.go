package main

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/wireboard/instance"
	"github.com/gogpu/wireboard/render"
)

const (
	targetSize   = 512
	frameTimeout = 5 * time.Second
)

type config struct {
	frames        int
	wires         int
	board         int
	gestureFrames int
	dirtyTracking bool
}

// demo owns the noop device, the render target and the renderers.
type demo struct {
	cfg config
	rng *rand.Rand

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	fence    hal.Fence

	target     hal.Texture
	targetView hal.TextureView

	viewport *render.Viewport
	board    *render.BoardRenderer
	wires    *render.WireRenderer

	gesture gesture
}

// gesture is a wire being dragged out with the cursor: a preview wire
// from the press point to the cursor plus a pin at each end.
type gesture struct {
	active   bool
	start    image.Point
	cursor   image.Point
	preview  render.Handle
	startPin render.Handle
	endPin   render.Handle
}

func newDemo(cfg config) (*demo, error) {
	cfg.board = max(cfg.board, 1)
	cfg.gestureFrames = max(cfg.gestureFrames, 2)
	d := &demo{cfg: cfg, rng: rand.New(rand.NewPCG(1, 2))}
	if err := d.openDevice(); err != nil {
		return nil, err
	}

	var err error
	if d.viewport, err = render.NewViewport(d.device, d.queue); err != nil {
		d.close()
		return nil, err
	}
	half := float32(cfg.board) / 2
	d.viewport.SetCamera(render.Camera{
		Center: [2]float32{half, half},
		Scale:  [2]float32{1 / half, -1 / half},
	})

	var storeOpts []instance.Option
	if cfg.dirtyTracking {
		storeOpts = append(storeOpts, instance.WithDirtyTracking())
	}
	if d.board, err = render.NewBoardRenderer(d.device, d.queue,
		render.WithStoreOptions(append(storeOpts, instance.WithInitialCapacity(cfg.board*cfg.board))...)); err != nil {
		d.close()
		return nil, err
	}
	if d.wires, err = render.NewWireRenderer(d.device, d.queue, render.WithStoreOptions(storeOpts...)); err != nil {
		d.close()
		return nil, err
	}

	d.layoutBoard()
	for range cfg.wires {
		d.commitWire(d.randomPoint(), d.randomPoint())
	}
	return d, nil
}

// openDevice opens the noop HAL device and the offscreen render target.
func (d *demo) openDevice() error {
	api := noop.API{}
	inst, err := api.CreateInstance(nil)
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	d.instance = inst

	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	d.device = openDev.Device
	d.queue = openDev.Queue

	if d.fence, err = d.device.CreateFence(); err != nil {
		return fmt.Errorf("create fence: %w", err)
	}

	d.target, err = d.device.CreateTexture(&hal.TextureDescriptor{
		Label: "wiredemo_target",
		Size: hal.Extent3D{
			Width:              targetSize,
			Height:             targetSize,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create render target: %w", err)
	}
	d.targetView, err = d.device.CreateTextureView(d.target, &hal.TextureViewDescriptor{
		Label: "wiredemo_target_view",
	})
	if err != nil {
		return fmt.Errorf("create render target view: %w", err)
	}
	return nil
}

// layoutBoard fills the board with a checkerboard of tiles.
func (d *demo) layoutBoard() {
	light := color.RGBA{R: 44, G: 48, B: 56, A: 255}
	dark := color.RGBA{R: 36, G: 40, B: 46, A: 255}
	for y := range d.cfg.board {
		for x := range d.cfg.board {
			c := light
			if (x+y)%2 == 1 {
				c = dark
			}
			d.board.Insert(render.Tile{Origin: image.Pt(x, y), Size: image.Pt(1, 1), Color: c})
		}
	}
}

func (d *demo) randomPoint() image.Point {
	return image.Pt(d.rng.IntN(d.cfg.board), d.rng.IntN(d.cfg.board))
}

// commitWire adds an axis-aligned wire with a pin at both ends.
func (d *demo) commitWire(from, to image.Point) {
	if d.rng.IntN(2) == 0 {
		to.Y = from.Y
	} else {
		to.X = from.X
	}
	powered := d.rng.IntN(3) == 0
	d.wires.Insert(render.Wire{Start: from, End: to, Powered: powered}.Rect())
	d.wires.Insert(render.Pin{Position: from, Powered: powered}.Rect())
	d.wires.Insert(render.Pin{Position: to, Powered: powered}.Rect())
}

// step advances the placement gesture by one frame: press, drag or
// release.
func (d *demo) step(frame int) {
	phase := frame % d.cfg.gestureFrames
	g := &d.gesture

	switch {
	case phase == 0:
		g.active = true
		g.start = d.randomPoint()
		g.cursor = g.start
		g.preview = d.wires.Insert(render.Wire{Start: g.start, End: g.cursor}.Rect())
		g.startPin = d.wires.Insert(render.Pin{Position: g.start}.Rect())
		g.endPin = d.wires.Insert(render.Pin{Position: g.cursor}.Rect())

	case phase == d.cfg.gestureFrames-1 && g.active:
		d.wires.Remove(g.preview)
		d.wires.Remove(g.startPin)
		d.wires.Remove(g.endPin)
		d.commitWire(g.start, g.cursor)
		g.active = false

	case g.active:
		g.cursor = g.cursor.Add(image.Pt(d.rng.IntN(3)-1, d.rng.IntN(3)-1))
		g.cursor.X = min(max(g.cursor.X, 0), d.cfg.board-1)
		g.cursor.Y = min(max(g.cursor.Y, 0), d.cfg.board-1)
		end := g.cursor
		if abs(end.X-g.start.X) >= abs(end.Y-g.start.Y) {
			end.Y = g.start.Y
		} else {
			end.X = g.start.X
		}
		d.wires.Update(g.preview, render.Wire{Start: g.start, End: end}.Rect())
		d.wires.Update(g.endPin, render.Pin{Position: end}.Rect())
	}
}

func (d *demo) run(ctx context.Context, logger *slog.Logger) error {
	start := time.Now()
	for frame := range d.cfg.frames {
		if err := ctx.Err(); err != nil {
			logger.Info("interrupted", "frame", frame)
			return nil
		}
		d.step(frame)
		if err := d.renderFrame(uint64(frame) + 1); err != nil { //nolint:gosec // frame is non-negative
			return fmt.Errorf("frame %d: %w", frame, err)
		}
		logger.Debug("frame rendered", "frame", frame, "wires", d.wires.Len(), "tiles", d.board.Len())
		if (frame+1)%d.cfg.gestureFrames == 0 {
			logger.Info("progress", "frame", frame+1, "wires", d.wires.Len(), "tiles", d.board.Len())
		}
	}
	logger.Info("done",
		"frames", d.cfg.frames,
		"wires", d.wires.Len(),
		"tiles", d.board.Len(),
		"elapsed", time.Since(start))
	return nil
}

// renderFrame records the board and the wires into one render pass and
// waits for the queue.
func (d *demo) renderFrame(value uint64) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "wiredemo_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("wiredemo_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "wiredemo_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       d.targetView,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0.1, G: 0.1, B: 0.12, A: 1},
		}},
	})
	drawErr := d.board.Draw(rp, d.viewport)
	if drawErr == nil {
		drawErr = d.wires.Draw(rp, d.viewport)
	}
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)
	if drawErr != nil {
		return drawErr
	}

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, d.fence, value); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := d.device.Wait(d.fence, value, frameTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// close releases everything in reverse creation order. Safe on a
// partially constructed demo.
func (d *demo) close() {
	if d.wires != nil {
		d.wires.Destroy()
	}
	if d.board != nil {
		d.board.Destroy()
	}
	if d.viewport != nil {
		d.viewport.Destroy()
	}
	if d.device != nil {
		if d.targetView != nil {
			d.device.DestroyTextureView(d.targetView)
		}
		if d.target != nil {
			d.device.DestroyTexture(d.target)
		}
		if d.fence != nil {
			d.device.DestroyFence(d.fence)
		}
		d.device.Destroy()
	}
	if d.instance != nil {
		d.instance.Destroy()
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
