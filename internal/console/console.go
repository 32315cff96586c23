// Package console is the facade a front end drives: load a cartridge,
// feed it controller input, and pull rendered frames and mixed audio out
// of it one frame at a time. It owns nothing about timing or decoding
// itself (that all lives in internal/bus and below); it only wires
// those pieces together and presents the stable outward API.
package console

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/mikai233/nesium-sub002/internal/bus"
	"github.com/mikai233/nesium-sub002/internal/cartridge"
	"github.com/mikai233/nesium-sub002/internal/trace"
)

// Region selects the timing family a Core runs. Only NTSC is fully
// implemented; PAL and Dendy are accepted by the enum so the seam stays
// clean, per spec's Open Questions, but LoadCartridge rejects them.
type Region uint8

const (
	RegionNTSC Region = iota
	RegionPAL
	RegionDendy
)

// stateVersion is bumped whenever the Snapshot wire format changes.
const stateVersion = 1

// UnsupportedFeature reports a request the core understands but does not
// (yet, or ever, per a documented Non-goal) implement.
type UnsupportedFeature struct {
	Reason string
}

func (e *UnsupportedFeature) Error() string { return fmt.Sprintf("unsupported feature: %s", e.Reason) }

// StateVersionMismatch reports a save-state blob built by an incompatible
// version of this package.
type StateVersionMismatch struct {
	Got, Want int
}

func (e *StateVersionMismatch) Error() string {
	return fmt.Sprintf("save state version mismatch: got %d, want %d", e.Got, e.Want)
}

// InvalidOpcode reports the CPU halting on a byte with no modeled
// behavior; RunFrame surfaces this via FrameOutput.InvalidOpcode and
// FrameOutput.InvalidOpcodeErr rather than panicking,
// per spec's "run_frame does not fail" propagation rule.
type InvalidOpcode struct {
	PC     uint16
	Opcode uint8
}

func (e *InvalidOpcode) Error() string {
	return fmt.Sprintf("invalid opcode $%02X at $%04X", e.Opcode, e.PC)
}

// FrameOutput is what RunFrame hands back: one assembled video frame
// (256x240 NES palette indices, 0-63) and the audio produced alongside it.
type FrameOutput struct {
	Video          [256 * 240]uint8
	Audio          []int16
	InvalidOpcode  bool
	InvalidOpcodeErr error
}

// Core is the emulator instance a front end drives.
type Core struct {
	Bus    *bus.Bus
	Region Region

	sampleRate      int
	cyclesPerSample float64
	sampleDebt      float64

	lastFrame uint64
	loaded    bool
}

// New creates a Core with no cartridge loaded; LoadCartridge must be
// called before RunFrame does anything useful.
func New(region Region) *Core {
	c := &Core{Region: region, sampleRate: 44100}
	c.recalcSampleStep()
	return c
}

func (c *Core) recalcSampleStep() {
	const cpuClockHz = 1789773.0 // NTSC 2A03 clock
	c.cyclesPerSample = cpuClockHz / float64(c.sampleRate)
}

// LoadCartridge parses data and wires a fresh Bus around it, replacing
// any previously loaded cartridge. Only RegionNTSC is currently playable.
func (c *Core) LoadCartridge(data []byte) error {
	if c.Region != RegionNTSC {
		return &UnsupportedFeature{Reason: "PAL/Dendy timing is not implemented"}
	}
	cart, err := cartridge.Load(data)
	if err != nil {
		return err
	}
	c.Bus = bus.New(cart)
	c.loaded = true
	c.lastFrame = c.Bus.PPU.Frame
	return nil
}

// Reset performs a soft reset: RAM contents and cartridge RAM survive,
// matching the real console's reset line.
func (c *Core) Reset() {
	if c.Bus != nil {
		c.Bus.Reset()
	}
}

// PowerCycle performs a hard reset by reconstructing the Bus around the
// same loaded cartridge (its PRG/CHR RAM arrays are reused, so battery
// save data still survives; only volatile work RAM is freshly allocated
// the way a real power cycle clears it).
func (c *Core) PowerCycle() {
	if c.Bus == nil {
		return
	}
	c.Bus = bus.New(c.Bus.Cart)
	c.lastFrame = c.Bus.PPU.Frame
}

// SetControllerState replaces the live button latch for port 0 or 1.
// buttons packs A, B, Select, Start, Up, Down, Left, Right LSB-first.
func (c *Core) SetControllerState(port int, buttons uint8) {
	if c.Bus == nil {
		return
	}
	switch port {
	case 0:
		c.Bus.Controllers.Pad1.SetState(buttons)
	case 1:
		c.Bus.Controllers.Pad2.SetState(buttons)
	}
}

// SetAudioSampleRate changes the host sample rate RunFrame downsamples
// APU output to.
func (c *Core) SetAudioSampleRate(hz int) {
	c.sampleRate = hz
	c.recalcSampleStep()
}

// AttachTraceSink wires a debug-hook sink into the bus for the lifetime
// of the currently loaded cartridge.
func (c *Core) AttachTraceSink(sink trace.Sink) {
	if c.Bus == nil {
		return
	}
	if sink == nil {
		sink = trace.Nop
	}
	c.Bus.Trace = sink
}

// RunFrame steps the CPU (and, transitively, the PPU/APU/mapper) until
// one full PPU frame has been produced, collecting a decimated audio
// stream alongside it. If the CPU halts on an unmodeled opcode mid-frame,
// RunFrame returns the partial frame produced so far with InvalidOpcode
// set, per spec's "mid-frame fatal error returns a partial frame" rule.
func (c *Core) RunFrame() FrameOutput {
	var out FrameOutput
	if c.Bus == nil || !c.loaded {
		return out
	}

	targetFrame := c.lastFrame + 1
	var invalidErr error
	c.Bus.CPU.OnInvalidOpcode = func(pc uint16, opcode uint8) {
		invalidErr = &InvalidOpcode{PC: pc, Opcode: opcode}
	}

	for c.Bus.PPU.Frame < targetFrame {
		if c.Bus.CPU.Halted() {
			out.InvalidOpcode = true
			out.InvalidOpcodeErr = invalidErr
			break
		}
		cyclesBefore := c.Bus.Cycle()
		c.Bus.CPU.Step()
		elapsed := c.Bus.Cycle() - cyclesBefore
		for i := uint64(0); i < elapsed; i++ {
			c.sampleDebt++
			if c.sampleDebt >= c.cyclesPerSample {
				c.sampleDebt -= c.cyclesPerSample
				sample := c.Bus.APU.Sample()
				if c.Bus.Cart.Mapper != nil {
					sample = addExpansionAudio(sample, c.Bus.Cart.Mapper.ExpansionAudioSample())
				}
				out.Audio = append(out.Audio, sample)
			}
		}
	}

	out.Video = c.Bus.PPU.FrameBuffer
	c.lastFrame = c.Bus.PPU.Frame
	return out
}

func addExpansionAudio(base, expansion int16) int16 {
	sum := int32(base) + int32(expansion)
	if sum > 32767 {
		return 32767
	}
	if sum < -32768 {
		return -32768
	}
	return int16(sum)
}

// CPUState is a read-only snapshot of the 6502 register file.
type CPUState struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8
}

// CPUState returns the current CPU register file for introspection/debugging.
func (c *Core) CPUState() CPUState {
	cp := c.Bus.CPU
	return CPUState{A: cp.A, X: cp.X, Y: cp.Y, SP: cp.SP, PC: cp.PC, P: cp.P}
}

// PaletteRAM returns a copy of the PPU's 32-byte palette RAM.
func (c *Core) PaletteRAM() [32]uint8 { return c.Bus.PPU.PaletteRAM() }

// OAMDump returns a copy of the PPU's 256-byte object attribute memory.
func (c *Core) OAMDump() [256]uint8 { return c.Bus.PPU.OAM() }

// PPUNametableDump returns a copy of the PPU's on-board 2KiB VRAM.
func (c *Core) PPUNametableDump() [0x800]uint8 { return c.Bus.PPU.Nametables() }

// PatternTable renders pattern table index (0 or 1) as a 128x128 index
// buffer (16x16 tiles of 8x8 pixels, 2-bit color index per pixel, not yet
// palette-mapped) for a debugger tile viewer.
func (c *Core) PatternTable(index int) [16 * 16 * 64]uint8 {
	var out [16 * 16 * 64]uint8
	base := uint16(index) * 0x1000
	for tile := 0; tile < 256; tile++ {
		tileAddr := base + uint16(tile)*16
		tx, ty := (tile%16)*8, (tile/16)*8
		for row := 0; row < 8; row++ {
			lo := c.Bus.PPU.DebugPatternByte(tileAddr + uint16(row))
			hi := c.Bus.PPU.DebugPatternByte(tileAddr + uint16(row) + 8)
			for col := 0; col < 8; col++ {
				bit := 7 - col
				px := (lo>>uint(bit))&1 | ((hi>>uint(bit))&1)<<1
				out[(ty+row)*128+(tx+col)] = px
			}
		}
	}
	return out
}

// APUChannelOutputs reports each channel's instantaneous output level, for
// a debugger's channel-activity view.
type APUChannelOutputs struct {
	Pulse1, Pulse2, Triangle, Noise, DMC uint8
}

func (c *Core) APUChannelOutputs() APUChannelOutputs {
	p1, p2, t, n, d := c.Bus.APU.ChannelOutputs()
	return APUChannelOutputs{Pulse1: p1, Pulse2: p2, Triangle: t, Noise: n, DMC: d}
}

// snapshot is the versioned, serializable form of all component state
// saved/loaded by SaveState/LoadState. Per §9's design note, derived
// caches (opcode dispatch, mixer tables) are never serialized; LoadState
// copies the saved fields into the existing Bus and leaves them as built.
type snapshot struct {
	Version int
	Bus     bus.Snapshot
}

// SaveState captures a complete, versioned snapshot of every component.
func (c *Core) SaveState() ([]byte, error) {
	if c.Bus == nil {
		return nil, fmt.Errorf("no cartridge loaded")
	}
	s := snapshot{Version: stateVersion, Bus: c.Bus.Snapshot()}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&s); err != nil {
		return nil, fmt.Errorf("encode save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a snapshot produced by SaveState against the
// currently loaded cartridge. The cartridge itself (PRG/CHR ROM, mapper
// identity) must already match; only volatile state is restored.
func (c *Core) LoadState(data []byte) error {
	if c.Bus == nil {
		return fmt.Errorf("no cartridge loaded")
	}
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("decode save state: %w", err)
	}
	if s.Version != stateVersion {
		return &StateVersionMismatch{Got: s.Version, Want: stateVersion}
	}
	c.Bus.Restore(s.Bus)
	c.lastFrame = c.Bus.PPU.Frame
	return nil
}
