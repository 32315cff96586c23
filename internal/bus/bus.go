// Package bus wires the CPU, PPU, APU, cartridge mapper, and controllers
// together and owns the system's single cycle-accurate invariant: every
// CPU-visible memory access ticks the PPU forward 3 dots and the APU
// forward 1 step before the access itself completes. The CPU package
// never ticks timing itself; it only issues Read/Write calls in the
// right order, and this package is what makes that add up to a
// cycle-accurate system.
package bus

import (
	"github.com/mikai233/nesium-sub002/internal/apu"
	"github.com/mikai233/nesium-sub002/internal/cartridge"
	"github.com/mikai233/nesium-sub002/internal/controller"
	"github.com/mikai233/nesium-sub002/internal/cpu"
	"github.com/mikai233/nesium-sub002/internal/ppu"
	"github.com/mikai233/nesium-sub002/internal/trace"
)

// Bus connects every NES component and implements cpu.Bus.
type Bus struct {
	CPU         *cpu.CPU
	PPU         *ppu.PPU
	APU         *apu.APU
	Controllers controller.Ports
	Cart        *cartridge.Cartridge

	ram [0x800]uint8

	openBus uint8 // CPU-side open-bus latch

	cycle uint64 // system-wide CPU cycle counter, used for DMA parity decisions

	oamDMAPending bool
	oamDMAPage    uint8

	Trace trace.Sink
}

// New builds a fully wired Bus for cart. The CPU is constructed last,
// since it is the only component that needs the finished Bus as its
// memory interface.
func New(cart *cartridge.Cartridge) *Bus {
	b := &Bus{Cart: cart, Trace: trace.Nop}
	b.PPU = ppu.New()
	b.PPU.Mapper = cart.Mapper
	b.PPU.NMI = func() {
		b.CPU.SetNMILine(true)
		b.CPU.SetNMILine(false)
	}
	b.APU = apu.New(b.dmcMemRead)
	b.CPU = cpu.New(b)
	b.Reset()
	return b
}

// Reset performs a CPU reset: CPU/PPU/APU volatile state clears and
// controller latches reset, but work RAM keeps its contents and cartridge
// PRG/CHR RAM (and any battery-backed save data) is left untouched.
func (b *Bus) Reset() {
	b.Controllers.Reset()
	b.oamDMAPending = false
	if b.Cart.Mapper != nil {
		b.Cart.Mapper.Reset()
	}
	b.PPU.Reset()
	b.PPU.Mapper = b.Cart.Mapper
	b.APU.Reset()
	b.CPU.Reset()
}

// tick advances PPU by 3 dots and APU by 1 step, then re-derives the
// CPU's level-sensitive IRQ input from the APU's two IRQ flags and the
// mapper's IRQ line (all three are wire-ORed onto the single physical
// /IRQ conductor on real hardware).
func (b *Bus) tick() {
	b.cycle++
	b.PPU.Step()
	b.PPU.Step()
	b.PPU.Step()
	b.APU.Step()
	if b.Cart.Mapper != nil {
		b.Cart.Mapper.OnCPUCycle()
	}
	irq := b.APU.FrameIRQ() || b.APU.DMCIRQ()
	if b.Cart.Mapper != nil {
		irq = irq || b.Cart.Mapper.IRQLine()
	}
	b.CPU.SetIRQLine(irq)
}

// Stall pauses the CPU for n cycles, ticking timing forward without any
// memory transaction: the dummy alignment/idle cycles OAM and DMC DMA
// spend before their actual byte transfers begin.
func (b *Bus) Stall(cycles int) {
	for i := 0; i < cycles; i++ {
		b.tick()
	}
}

// Read services a CPU read, ticking timing first per the invariant every
// bus access shares, then decoding the address.
func (b *Bus) Read(addr uint16) uint8 {
	b.tick()
	v := b.decodeRead(addr)
	b.Trace.OnEvent(trace.Event{Cycle: b.cycle, Kind: trace.EventCPURead, Address: addr, Value: v})
	return v
}

// Write services a CPU write, ticking timing first, then decoding the
// address. A write to $4014 additionally runs the OAM DMA transfer
// in-line, matching the real CPU being stalled for its duration.
func (b *Bus) Write(addr uint16, value uint8) {
	b.tick()
	b.decodeWrite(addr, value)
	b.Trace.OnEvent(trace.Event{Cycle: b.cycle, Kind: trace.EventCPUWrite, Address: addr, Value: value})
}

func (b *Bus) decodeRead(addr uint16) uint8 {
	var v uint8
	switch {
	case addr < 0x2000:
		v = b.ram[addr&0x07FF]
	case addr < 0x4000:
		v = b.PPU.ReadRegister(addr)
	case addr == 0x4015:
		v = b.APU.ReadStatus()
	case addr == 0x4016:
		v = b.Controllers.Read4016(b.openBus)
	case addr == 0x4017:
		v = b.Controllers.Read4017(b.openBus)
	case addr < 0x4018:
		v = b.openBus // APU registers other than $4015 are write-only
	case addr < 0x4020:
		v = b.openBus // disabled APU/IO test-mode region
	default:
		if b.Cart.Mapper != nil {
			if mv, ok := b.Cart.Mapper.CPURead(addr); ok {
				v = mv
			} else {
				v = b.openBus
			}
		} else {
			v = b.openBus
		}
	}
	b.openBus = v
	return v
}

func (b *Bus) decodeWrite(addr uint16, value uint8) {
	b.openBus = value
	switch {
	case addr < 0x2000:
		b.ram[addr&0x07FF] = value
	case addr < 0x4000:
		b.PPU.WriteRegister(addr, value)
	case addr == 0x4014:
		b.runOAMDMA(value)
	case addr == 0x4016:
		b.Controllers.Write(value)
	case addr == 0x4017:
		b.APU.WriteRegister(addr, value)
	case addr < 0x4018:
		b.APU.WriteRegister(addr, value)
	case addr < 0x4020:
		// disabled test-mode region, no effect
	default:
		if b.Cart.Mapper != nil {
			b.Cart.Mapper.CPUWrite(addr, value)
		}
	}
}

// runOAMDMA performs the 513/514-cycle OAM DMA transfer triggered by a
// $4014 write, copying 256 bytes from page*$100 into OAM. It runs
// in-line (the CPU is blocked inside this single Write call for the
// transfer's whole duration), which is equivalent to the real CPU
// halting at a read cycle for the same span.
func (b *Bus) runOAMDMA(page uint8) {
	b.Trace.OnEvent(trace.Event{Cycle: b.cycle, Kind: trace.EventOAMDMAStart, Address: uint16(page) << 8})
	b.Stall(1) // the mandatory dummy cycle
	if b.cycle%2 == 1 {
		b.Stall(1) // extra alignment cycle when DMA starts on an odd CPU cycle
	}
	base := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.Stall(1)
		v := b.decodeRead(base + uint16(i))
		b.openBus = v
		b.Stall(1)
		b.PPU.WriteOAMDMA(v)
	}
	b.Trace.OnEvent(trace.Event{Cycle: b.cycle, Kind: trace.EventOAMDMAEnd})
}

// dmcMemRead is the APU's MemReader callback: it charges the CPU the
// 3- or 4-cycle DMA steal real hardware pays for a DMC sample fetch
// (depending on which half of the CPU's GET/PUT cycle pair the fetch
// lands on) before reading the byte off the CPU bus.
func (b *Bus) dmcMemRead(addr uint16) uint8 {
	b.Trace.OnEvent(trace.Event{Cycle: b.cycle, Kind: trace.EventDMCDMAStart, Address: addr})
	if b.cycle%2 == 0 {
		b.Stall(4)
	} else {
		b.Stall(3)
	}
	v := b.decodeRead(addr)
	b.openBus = v
	b.Trace.OnEvent(trace.Event{Cycle: b.cycle, Kind: trace.EventDMCDMAEnd, Address: addr, Value: v})
	return v
}

// Cycle returns the system-wide CPU cycle counter, used by save states
// and trace consumers that need a timestamp independent of any single
// component's internal counters.
func (b *Bus) Cycle() uint64 { return b.cycle }

// Snapshot is the serializable form of everything the bus owns directly
// plus every component's own Snapshot. Per §9's design note, mapper state
// is only captured for mappers implementing mapper.StateSaver; mappers
// that don't (documented in DESIGN.md) restore to their post-load default
// bank configuration instead of their in-flight one.
type Snapshot struct {
	RAM         [0x800]uint8
	OpenBus     uint8
	Cycle       uint64
	CPU         cpu.Snapshot
	PPU         ppu.Snapshot
	APU         apu.Snapshot
	Controllers controller.Snapshot
	MapperState []byte
}

// Snapshot captures the entire system's volatile state.
func (b *Bus) Snapshot() Snapshot {
	s := Snapshot{
		RAM: b.ram, OpenBus: b.openBus, Cycle: b.cycle,
		CPU: b.CPU.Snapshot(), PPU: b.PPU.Snapshot(), APU: b.APU.Snapshot(),
		Controllers: b.Controllers.Snapshot(),
	}
	if saver, ok := b.Cart.Mapper.(interface{ SaveMapperState() []byte }); ok {
		s.MapperState = saver.SaveMapperState()
	}
	return s
}

// Restore replaces the entire system's volatile state with a previously
// captured Snapshot.
func (b *Bus) Restore(s Snapshot) {
	b.ram, b.openBus, b.cycle = s.RAM, s.OpenBus, s.Cycle
	b.CPU.Restore(s.CPU)
	b.PPU.Restore(s.PPU)
	b.APU.Restore(s.APU)
	b.Controllers.Restore(s.Controllers)
	if s.MapperState != nil {
		if loader, ok := b.Cart.Mapper.(interface{ LoadMapperState([]byte) error }); ok {
			_ = loader.LoadMapperState(s.MapperState)
		}
	}
}
