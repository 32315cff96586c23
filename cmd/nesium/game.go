package main

import (
	"bytes"
	"image"
	"image/color"
	"log"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/mikai233/nesium-sub002/internal/config"
	"github.com/mikai233/nesium-sub002/internal/console"
	"github.com/mikai233/nesium-sub002/internal/controller"
	"github.com/mikai233/nesium-sub002/internal/ppu"
	"github.com/mikai233/nesium-sub002/internal/trace"
)

const (
	nesWidth  = 256
	nesHeight = 240
)

// game implements ebiten.Game, driving console.Core one frame per Update
// and blitting its palette-index output through ppu.Palette into an
// ebiten.Image each Draw.
type game struct {
	core   *console.Core
	cfg    *config.Config
	screen *ebiten.Image
	pixels *image.RGBA

	keys1, keys2 keyBinding

	audioCtx    *audio.Context
	audioPlayer *audio.Player
	audioQueue  *pcmQueue
}

type keyBinding struct {
	up, down, left, right, a, b, start, select_ ebiten.Key
}

func newGame(core *console.Core, cfg *config.Config) *game {
	g := &game{
		core:   core,
		cfg:    cfg,
		screen: ebiten.NewImage(nesWidth, nesHeight),
		pixels: image.NewRGBA(image.Rect(0, 0, nesWidth, nesHeight)),
		keys1:  resolveKeyBinding(cfg.Input.Player1Keys),
		keys2:  resolveKeyBinding(cfg.Input.Player2Keys),
	}
	if cfg.Audio.Enabled {
		g.audioQueue = newPCMQueue()
		g.audioCtx = audio.NewContext(cfg.Audio.SampleRate)
		player, err := g.audioCtx.NewPlayer(g.audioQueue)
		if err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			player.Play()
			g.audioPlayer = player
		}
	}
	return g
}

func (g *game) Update() error {
	g.core.SetControllerState(0, readButtons(g.keys1))
	g.core.SetControllerState(1, readButtons(g.keys2))

	out := g.core.RunFrame()
	if out.InvalidOpcode {
		log.Printf("cpu halted: %v", out.InvalidOpcodeErr)
	}
	g.blitFrame(out.Video)
	if g.audioQueue != nil {
		g.audioQueue.push(out.Audio, g.cfg.Audio.Volume)
	}
	return nil
}

func (g *game) blitFrame(video [nesWidth * nesHeight]uint8) {
	for i, idx := range video {
		c := ppu.Palette[idx&0x3F]
		o := i * 4
		g.pixels.Pix[o] = uint8(c >> 16)
		g.pixels.Pix[o+1] = uint8(c >> 8)
		g.pixels.Pix[o+2] = uint8(c)
		g.pixels.Pix[o+3] = 0xFF
	}
	g.screen.WritePixels(g.pixels.Pix)
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	bounds := screen.Bounds()
	scaleX := float64(bounds.Dx()) / float64(nesWidth)
	scaleY := float64(bounds.Dy()) / float64(nesHeight)
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	offsetX := (float64(bounds.Dx()) - float64(nesWidth)*scale) / 2
	offsetY := (float64(bounds.Dy()) - float64(nesHeight)*scale) / 2

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(g.screen, op)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func readButtons(k keyBinding) uint8 {
	var bits uint8
	set := func(b controller.Button, key ebiten.Key) {
		if ebiten.IsKeyPressed(key) {
			bits |= uint8(b)
		}
	}
	set(controller.ButtonA, k.a)
	set(controller.ButtonB, k.b)
	set(controller.ButtonSelect, k.select_)
	set(controller.ButtonStart, k.start)
	set(controller.ButtonUp, k.up)
	set(controller.ButtonDown, k.down)
	set(controller.ButtonLeft, k.left)
	set(controller.ButtonRight, k.right)
	return bits
}

func resolveKeyBinding(m config.KeyMapping) keyBinding {
	return keyBinding{
		up:      keyByName(m.Up),
		down:    keyByName(m.Down),
		left:    keyByName(m.Left),
		right:   keyByName(m.Right),
		a:       keyByName(m.A),
		b:       keyByName(m.B),
		start:   keyByName(m.Start),
		select_: keyByName(m.Select),
	}
}

var keyNames = map[string]ebiten.Key{
	"Up": ebiten.KeyArrowUp, "Down": ebiten.KeyArrowDown,
	"Left": ebiten.KeyArrowLeft, "Right": ebiten.KeyArrowRight,
	"Return": ebiten.KeyEnter, "Space": ebiten.KeySpace,
	"RShift": ebiten.KeyShiftRight, "RCtrl": ebiten.KeyControlRight,
	"LShift": ebiten.KeyShiftLeft, "LCtrl": ebiten.KeyControlLeft,
	"W": ebiten.KeyW, "A": ebiten.KeyA, "S": ebiten.KeyS, "D": ebiten.KeyD,
	"J": ebiten.KeyJ, "K": ebiten.KeyK, "N": ebiten.KeyN, "M": ebiten.KeyM,
	"Z": ebiten.KeyZ, "X": ebiten.KeyX,
}

func keyByName(name string) ebiten.Key {
	if k, ok := keyNames[name]; ok {
		return k
	}
	return ebiten.KeyAlt // inert fallback for an unrecognized binding
}

// pcmQueue is an io.Reader feeding ebiten's audio.Player a continuous
// stereo 16-bit stream, filling in silence when the emulator's frame
// output hasn't kept up with the player's consumption rate.
type pcmQueue struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func newPCMQueue() *pcmQueue { return &pcmQueue{} }

func (q *pcmQueue) push(samples []int16, volume float32) {
	if len(samples) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, s := range samples {
		v := int16(float32(s) * volume)
		q.buf.WriteByte(uint8(v))
		q.buf.WriteByte(uint8(v >> 8))
		q.buf.WriteByte(uint8(v))
		q.buf.WriteByte(uint8(v >> 8))
	}
}

func (q *pcmQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	n, _ := q.buf.Read(p)
	for i := n; i < len(p); i++ {
		p[i] = 0 // silence when the queue underruns
	}
	return len(p), nil
}

var _ trace.Sink = (*logTraceSink)(nil)

type logTraceSink struct{ logger *log.Logger }

func newLogTraceSink() *logTraceSink {
	return &logTraceSink{logger: log.New(log.Writer(), "trace: ", log.LstdFlags)}
}

func (s *logTraceSink) OnEvent(e trace.Event) {
	s.logger.Printf("cycle=%d kind=%d addr=$%04X value=$%02X", e.Cycle, e.Kind, e.Address, e.Value)
}
