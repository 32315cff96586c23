// Package cpu implements the NES's 6502-derivative CPU core (the 2A03,
// which omits decimal mode). Every instruction is expressed as the exact
// sequence of bus reads and writes real hardware performs for it,
// including the dummy reads/writes addressing modes are known for,
// rather than as an opcode plus a precomputed cycle count. Because the
// Bus this CPU is wired to ticks the PPU and APU forward on every single
// Read/Write call before performing it (see internal/bus), issuing the
// right access sequence is what makes the whole system cycle-accurate;
// the CPU package itself never advances a separate cycle counter.
package cpu

// Bus is everything the CPU needs from the system bus. Read and Write
// both tick PPU/APU timing forward by one CPU cycle as a side effect,
// before performing the access - the CPU relies on that invariant and
// never ticks timing itself.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	// Stall advances bus-tick-driven timing by n CPU cycles without the
	// CPU fetching or executing anything, for OAM/DMC DMA.
	Stall(cycles int)
}

const (
	flagC uint8 = 1 << 0
	flagZ uint8 = 1 << 1
	flagI uint8 = 1 << 2
	flagD uint8 = 1 << 3
	flagB uint8 = 1 << 4
	flagU uint8 = 1 << 5
	flagV uint8 = 1 << 6
	flagN uint8 = 1 << 7
)

const (
	stackBase   = 0x0100
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// CPU is the 6502-family core. P holds the raw status byte; getFlag and
// setFlag test and set its bits, and every push and interrupt sequence
// stores the real status byte with its well-known B-flag quirks (set on PHP/BRK, clear-but-stored on
// hardware IRQ/NMI push).
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	bus Bus

	nmiLine    bool // level input from the PPU, edge-detected internally
	nmiEdge    bool // latched pending NMI (edge already detected)
	irqLine    bool // level input (wired-OR of APU frame/DMC IRQ and mapper IRQ)
	halted     bool // true after executing the undefined JAM/KIL opcode

	Trace func(pc uint16, opcode uint8)

	// OnInvalidOpcode is invoked when Step hits an opcode byte with no
	// modeled behavior (the unstable AHX/TAS/LAS/SHX/SHY/XAA family); the
	// CPU halts afterward, matching real silicon's well-documented
	// unreliability on these but giving the host a diagnostic instead of
	// silently corrupting state.
	OnInvalidOpcode func(pc uint16, opcode uint8)
}

// Snapshot is the serializable form of the CPU's register file and
// interrupt-line latches.
type Snapshot struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8
	NMILine, NMIEdge, IRQLine, Halted bool
}

// Snapshot captures all CPU state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC, P: c.P,
		NMILine: c.nmiLine, NMIEdge: c.nmiEdge, IRQLine: c.irqLine, Halted: c.halted,
	}
}

// Restore replaces all CPU state with a previously captured Snapshot.
func (c *CPU) Restore(s Snapshot) {
	c.A, c.X, c.Y, c.SP, c.PC, c.P = s.A, s.X, s.Y, s.SP, s.PC, s.P
	c.nmiLine, c.nmiEdge, c.irqLine, c.halted = s.NMILine, s.NMIEdge, s.IRQLine, s.Halted
}

// Halted reports whether the CPU has stopped after a JAM/KIL opcode or an
// unmodeled opcode; it will not fetch another instruction until Reset.
func (c *CPU) Halted() bool { return c.halted }

func New(bus Bus) *CPU {
	return &CPU{bus: bus, SP: 0xFD, P: flagI | flagU}
}

// SetNMILine updates the edge-detected NMI input; a 0->1 transition
// latches a pending NMI regardless of how long the line is then held,
// matching real hardware's edge (not level) sensitivity on /NMI.
func (c *CPU) SetNMILine(asserted bool) {
	if asserted && !c.nmiLine {
		c.nmiEdge = true
	}
	c.nmiLine = asserted
}

// SetIRQLine sets the level-sensitive /IRQ input (the bus wires-ORs the
// APU's frame/DMC IRQ flags and the cartridge mapper's IRQ line into
// this single input, matching the real NES's shared IRQ conductor).
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

func (c *CPU) getFlag(mask uint8) bool { return c.P&mask != 0 }

func (c *CPU) setFlag(mask uint8, v bool) {
	if v {
		c.P |= mask
	} else {
		c.P &^= mask
	}
}

func (c *CPU) setZN(v uint8) {
	c.setFlag(flagZ, v == 0)
	c.setFlag(flagN, v&0x80 != 0)
}

func (c *CPU) read(addr uint16) uint8  { return c.bus.Read(addr) }
func (c *CPU) write(addr uint16, v uint8) { c.bus.Write(addr, v) }

func (c *CPU) push(v uint8) {
	c.write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.read(stackBase + uint16(c.SP))
}

// Reset reproduces the 6502's 7-cycle reset sequence: two discarded
// reads at PC, three
// dummy stack-pointer decrements that don't actually write (R/W held
// high), then a 2-cycle vector read.
func (c *CPU) Reset() {
	c.read(c.PC)
	c.read(c.PC)
	for i := 0; i < 3; i++ {
		c.read(stackBase + uint16(c.SP))
		c.SP--
	}
	c.setFlag(flagI, true)
	lo := uint16(c.read(resetVector))
	hi := uint16(c.read(resetVector + 1))
	c.PC = hi<<8 | lo
	c.A, c.X, c.Y = 0, 0, 0
	c.SP = 0xFD
	c.P = flagI | flagU
	c.nmiEdge = false
	c.halted = false
}

// serviceInterrupt runs the shared 7-cycle NMI/IRQ/BRK sequence: two
// bytes pushed as the return address, status pushed with the B flag set
// only for a software BRK, interrupt-disable set, and the vector loaded.
// brk is true only when this is a BRK instruction (opcode already
// fetched and PC already advanced past it); hardware-interrupt entry
// makes two dummy reads at the current PC instead of advancing, matching
// the real CPU's interrupt-hijack behavior where an NMI can override an
// in-flight BRK/IRQ sequence at the push-status step.
func (c *CPU) serviceInterrupt(vector uint16, brk bool) {
	if !brk {
		c.read(c.PC) // dummy opcode fetch, discarded
		c.read(c.PC) // dummy operand fetch, discarded
	}
	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC))
	status := c.P | flagU
	if brk {
		status |= flagB
	}
	// An NMI that arrives while the push sequence for a BRK/IRQ is in
	// flight hijacks the vector fetched at the end (the pushes still
	// happen; only which vector gets read changes).
	if c.nmiEdge {
		vector = nmiVector
		c.nmiEdge = false
	}
	c.push(status)
	c.setFlag(flagI, true)
	lo := uint16(c.read(vector))
	hi := uint16(c.read(vector + 1))
	c.PC = hi<<8 | lo
}

// pollInterrupts is called once per instruction boundary (never
// mid-instruction, per the bus's no-sub-instruction-suspension design)
// and services a pending NMI (priority) or an asserted IRQ when the
// interrupt-disable flag is clear.
func (c *CPU) pollInterrupts() bool {
	if c.nmiEdge {
		c.nmiEdge = false
		c.serviceInterrupt(nmiVector, false)
		return true
	}
	if c.irqLine && !c.getFlag(flagI) {
		c.serviceInterrupt(irqVector, false)
		return true
	}
	return false
}

// Step executes exactly one instruction (after first servicing any
// pending interrupt) and returns the opcode executed, or 0 if an
// interrupt was serviced instead. Interrupt polling happens only here, at
// instruction boundaries, never between an instruction's own bus
// accesses; OAM and DMC DMA stalls run inside the bus's access calls.
func (c *CPU) Step() uint8 {
	if c.halted {
		c.read(c.PC)
		return 0
	}
	if c.pollInterrupts() {
		return 0
	}
	pc := c.PC
	opcode := c.read(c.PC)
	c.PC++
	if c.Trace != nil {
		c.Trace(pc, opcode)
	}
	c.execute(opcode)
	return opcode
}
