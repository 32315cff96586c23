// Package mapper implements the cartridge mapper chips: the interposers
// that sit between the CPU/PPU address buses and PRG/CHR storage, bank
// switch it, and in some cases drive IRQs or mix in expansion audio.
//
// Mappers share one capability set (see the Mapper interface) and are
// dispatched through it rather than through a type switch, but there is no
// dynamic allocation on the hot path beyond the single interface value
// created at cartridge load time: each concrete mapper is a plain struct
// holding its own bank registers and a pointer to the shared Cart storage.
package mapper

import "fmt"

// Mirroring selects how the PPU's two physical nametables are mapped onto
// the four logical nametable slots.
type Mirroring uint8

const (
	MirrorHorizontal Mirroring = iota
	MirrorVertical
	MirrorSingleScreenLow
	MirrorSingleScreenHigh
	MirrorFourScreen
)

// NametableOffset returns the offset into a 2KiB VRAM array (or, for
// four-screen cartridges, the 4KiB extended array) that logical nametable
// index ntIndex (0..3, in PPU address order $2000/$2400/$2800/$2C00) maps
// to for the given mirroring mode.
func NametableOffset(m Mirroring, ntIndex int) int {
	switch m {
	case MirrorHorizontal:
		return [4]int{0, 0, 0x400, 0x400}[ntIndex]
	case MirrorVertical:
		return [4]int{0, 0x400, 0, 0x400}[ntIndex]
	case MirrorSingleScreenLow:
		return 0
	case MirrorSingleScreenHigh:
		return 0x400
	case MirrorFourScreen:
		return ntIndex * 0x400
	default:
		return 0
	}
}

// Cart holds the mapper-agnostic cartridge storage every mapper banks
// over: raw PRG/CHR ROM, CHR RAM when the cartridge has no CHR ROM, and
// PRG RAM (work RAM and/or battery-backed save RAM).
type Cart struct {
	PRGROM []uint8
	CHRROM []uint8
	CHRRAM []uint8
	PRGRAM []uint8

	HasBattery bool
	// FourScreenVRAM is allocated for cartridges whose header four-screen
	// bit is set and is nil otherwise. The PPU does not read or write it:
	// nametables always live in the PPU's own 2KiB VRAM under the mirroring
	// the mapper reports, so four-screen layouts fold onto that 2KiB.
	FourScreenVRAM []uint8
}

// Header carries the cartridge facts a mapper constructor needs: the
// parsed iNES/NES 2.0 header plus derived sizes. See internal/cartridge
// for the parser that produces it.
type Header struct {
	MapperID     uint16
	SubmapperID  uint8
	PRGROMSize   int
	CHRROMSize   int
	PRGRAMSize   int
	PRGNVRAMSize int
	CHRRAMSize   int
	CHRNVRAMSize int
	HasBattery   bool
	FourScreen   bool
	Mirroring    Mirroring
	IsNES20      bool
	TimingMode   uint8 // 0=NTSC 1=PAL 2=multi-region 3=Dendy
}

// Mapper is the uniform capability set every cartridge chip exposes.
type Mapper interface {
	// CPURead maps a $4020-$FFFF CPU address. ok is false when the address
	// is unmapped by this mapper and the bus should fall back to its
	// open-bus latch.
	CPURead(addr uint16) (value uint8, ok bool)
	// CPUWrite maps a $4020-$FFFF CPU address; most mapper register
	// writes land here.
	CPUWrite(addr uint16, value uint8)
	// PPURead maps a $0000-$1FFF PPU pattern-table address; the PPU serves
	// $2000-$2FFF from its own VRAM and does not call it for those. Called
	// for every pattern-table access, including the rendering pipeline's own background and
	// sprite pattern fetches, which is also how A12-edge-driven IRQ
	// counters (MMC3 and kin) observe the PPU address bus.
	PPURead(addr uint16) uint8
	PPUWrite(addr uint16, value uint8)
	// Mirroring reports the current nametable mirroring mode; mappers
	// that can reprogram it (MMC1, AxROM, ...) update it on register
	// writes.
	Mirroring() Mirroring
	// OnCPUCycle is a hook for counters that advance with CPU cycles
	// rather than PPU address-bus edges (MMC5 clocks its expansion-audio
	// timers here; its scanline IRQ uses NotifyScanline).
	OnCPUCycle()
	// NotifyScanline is called once at the start of each visible
	// scanline's rendering window, for mappers (MMC5) whose IRQ counter
	// is most naturally expressed as a scanline counter.
	NotifyScanline()
	// IRQLine reports the mapper's level-sensitive IRQ output.
	IRQLine() bool
	// ExpansionAudioSample returns the mapper's expansion audio output,
	// mixed into the main APU stream by internal/console. Mappers without
	// expansion audio return 0.
	ExpansionAudioSample() int16
	// Reset clears volatile mapper state (bank registers, IRQ latches)
	// but must not touch battery-backed PRG RAM.
	Reset()
}

// StateSaver is implemented by mappers whose bank/IRQ registers need to
// round-trip through a save state. Mappers that are stateless beyond what
// Cart already holds (NROM) don't need it; the bus skips mapper state
// entirely for mappers that don't implement it.
type StateSaver interface {
	SaveMapperState() []byte
	LoadMapperState([]byte) error
}

// Constructor builds a Mapper instance from shared cartridge storage and
// the parsed header.
type Constructor func(cart *Cart, hdr Header) (Mapper, error)

var registry = map[uint32]Constructor{}

func key(mapperID uint16, submapperID uint8) uint32 {
	return uint32(mapperID)<<8 | uint32(submapperID)
}

// Register installs a constructor for (mapperID, submapperID). RegisterAny
// registers a submapper-agnostic fallback under submapper key 0xFF.
func Register(mapperID uint16, submapperID uint8, ctor Constructor) {
	registry[key(mapperID, submapperID)] = ctor
}

// RegisterAny installs a constructor used for any submapper of mapperID
// that has no specific registration.
func RegisterAny(mapperID uint16, ctor Constructor) {
	registry[key(mapperID, 0xFF)] = ctor
}

// ErrUnsupportedMapper reports a (mapperID, submapperID) pair with no
// registered constructor.
type ErrUnsupportedMapper struct {
	MapperID    uint16
	SubmapperID uint8
}

func (e *ErrUnsupportedMapper) Error() string {
	return fmt.Sprintf("unsupported mapper %d submapper %d", e.MapperID, e.SubmapperID)
}

// New looks up and constructs the mapper for hdr, preferring an exact
// (mapperID, submapperID) match and falling back to the submapper-agnostic
// registration.
func New(cart *Cart, hdr Header) (Mapper, error) {
	if ctor, ok := registry[key(hdr.MapperID, hdr.SubmapperID)]; ok {
		return ctor(cart, hdr)
	}
	if ctor, ok := registry[key(hdr.MapperID, 0xFF)]; ok {
		return ctor(cart, hdr)
	}
	return nil, &ErrUnsupportedMapper{MapperID: hdr.MapperID, SubmapperID: hdr.SubmapperID}
}
