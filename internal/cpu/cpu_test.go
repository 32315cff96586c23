package cpu

import "testing"

// testBus is a flat 64KiB memory backing the CPU for unit tests. It
// satisfies the Bus interface without any PPU/APU timing side effects,
// since these tests only care about CPU semantics.
type testBus struct {
	mem [0x10000]uint8
}

func (b *testBus) Read(addr uint16) uint8      { return b.mem[addr] }
func (b *testBus) Write(addr uint16, v uint8)  { b.mem[addr] = v }
func (b *testBus) Stall(cycles int)            {}

func newTestCPU() (*CPU, *testBus) {
	bus := &testBus{}
	bus.mem[resetVector] = 0x00
	bus.mem[resetVector+1] = 0x80
	c := New(bus)
	c.Reset()
	return c, bus
}

func (b *testBus) load(addr uint16, bytes ...uint8) {
	for i, v := range bytes {
		b.mem[int(addr)+i] = v
	}
}

func TestResetVector(t *testing.T) {
	c, _ := newTestCPU()
	if c.PC != 0x8000 {
		t.Fatalf("PC after reset = $%04X, want $8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Fatalf("SP after reset = $%02X, want $FD", c.SP)
	}
	if !c.getFlag(flagI) {
		t.Fatal("I flag should be set after reset")
	}
}

func TestLDAImmediateSetsFlags(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x8000, 0xA9, 0x00) // LDA #$00
	c.Step()
	if c.A != 0 {
		t.Fatalf("A = %#x, want 0", c.A)
	}
	if !c.getFlag(flagZ) {
		t.Fatal("Z flag should be set after loading 0")
	}

	c.PC = 0x8000
	bus.load(0x8000, 0xA9, 0x80) // LDA #$80
	c.Step()
	if !c.getFlag(flagN) {
		t.Fatal("N flag should be set after loading a negative value")
	}
}

func TestADCWithCarryAndOverflow(t *testing.T) {
	c, bus := newTestCPU()
	c.A = 0x50
	bus.load(0x8000, 0x69, 0x50) // ADC #$50 -> overflow (0x50+0x50=0xA0, signed overflow)
	c.Step()
	if c.A != 0xA0 {
		t.Fatalf("A = %#x, want 0xA0", c.A)
	}
	if !c.getFlag(flagV) {
		t.Fatal("V flag should be set on signed overflow")
	}
	if !c.getFlag(flagN) {
		t.Fatal("N flag should be set, result is negative")
	}
}

func TestZeroPageXWraps(t *testing.T) {
	c, bus := newTestCPU()
	c.X = 0xFF
	bus.mem[0x007F] = 0x42
	bus.load(0x8000, 0xB5, 0x80) // LDA $80,X -> wraps to $7F within zero page
	c.Step()
	if c.A != 0x42 {
		t.Fatalf("A = %#x, want 0x42 (zero page X-indexed address must wrap within page 0)", c.A)
	}
}

func TestIndirectJMPPageWrapBug(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x30FF] = 0x00
	bus.mem[0x3000] = 0x80 // hardware bug: high byte fetched from $3000, not $3100
	bus.mem[0x3100] = 0xFF
	bus.load(0x8000, 0x6C, 0xFF, 0x30) // JMP ($30FF)
	c.Step()
	if c.PC != 0x8000 {
		t.Fatalf("PC = $%04X, want $8000 (JMP indirect must reproduce the page-wrap bug)", c.PC)
	}
}

func TestBranchTakenMovesPC(t *testing.T) {
	c, bus := newTestCPU()
	c.PC = 0x80FE
	bus.load(0x80FE, 0xF0, 0x10) // BEQ +16, from $8100 lands on $8110 (same page, no extra cycle)
	c.setFlag(flagZ, true)
	before := c.PC
	c.Step()
	if c.PC == before {
		t.Fatal("branch should have been taken")
	}
}

func TestNMIEdgeDetection(t *testing.T) {
	c, _ := newTestCPU()
	c.SetNMILine(false)
	c.SetNMILine(true)
	if !c.nmiEdge {
		t.Fatal("rising edge on NMI line should latch a pending NMI")
	}
	c.nmiEdge = false
	c.SetNMILine(true) // already asserted, no new edge
	if c.nmiEdge {
		t.Fatal("holding NMI line high without a new transition must not relatch")
	}
}

func TestNMIServicedAtInstructionBoundary(t *testing.T) {
	c, bus := newTestCPU()
	bus.load(0x8000, 0xEA) // NOP
	bus.mem[nmiVector] = 0x00
	bus.mem[nmiVector+1] = 0x90
	c.SetNMILine(true)
	c.Step() // services the NMI instead of executing the NOP
	if c.PC != 0x9000 {
		t.Fatalf("PC = $%04X, want $9000 (NMI vector)", c.PC)
	}
}

func TestUnmodeledOpcodeHalts(t *testing.T) {
	c, bus := newTestCPU()
	var gotPC uint16
	var gotOp uint8
	c.OnInvalidOpcode = func(pc uint16, op uint8) { gotPC, gotOp = pc, op }
	bus.load(0x8000, 0x9B) // SHS/TAS - an unstable, unmodeled opcode byte
	c.Step()
	if !c.Halted() {
		t.Fatal("CPU should halt on an unmodeled opcode byte")
	}
	if gotOp != 0x9B || gotPC != 0x8000 {
		t.Fatalf("OnInvalidOpcode called with pc=$%04X op=$%02X, want pc=$8000 op=$9B", gotPC, gotOp)
	}
}

func TestHaltedCPUDoesNotFetch(t *testing.T) {
	c, bus := newTestCPU()
	c.halted = true
	pc := c.PC
	bus.load(pc, 0xA9, 0x42) // would be LDA #$42 if it ever executed
	c.Step()
	if c.PC != pc || c.A == 0x42 {
		t.Fatal("a halted CPU must not fetch or execute further instructions")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	c, _ := newTestCPU()
	c.A, c.X, c.Y, c.SP, c.PC, c.P = 1, 2, 3, 4, 0x1234, 5
	snap := c.Snapshot()

	c2, _ := newTestCPU()
	c2.Restore(snap)
	if c2.A != 1 || c2.X != 2 || c2.Y != 3 || c2.SP != 4 || c2.PC != 0x1234 || c2.P != 5 {
		t.Fatalf("Restore did not reproduce the captured register file: %+v", c2)
	}
}
