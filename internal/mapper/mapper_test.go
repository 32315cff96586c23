package mapper

import "testing"

func newCart(prgKiB, chrRAMKiB int) *Cart {
	return &Cart{
		PRGROM: make([]uint8, prgKiB*1024),
		CHRRAM: make([]uint8, chrRAMKiB*1024),
	}
}

func TestNROMMirrorsA16KiBBankAcrossThe32KiBWindow(t *testing.T) {
	cart := newCart(16, 8)
	cart.PRGROM[0] = 0x11
	cart.PRGROM[0x3FFF] = 0x22
	m, err := newNROM(cart, Header{Mirroring: MirrorHorizontal})
	if err != nil {
		t.Fatal(err)
	}
	lo, ok := m.CPURead(0x8000)
	if !ok || lo != 0x11 {
		t.Fatalf("CPURead($8000) = %#x,%v want 0x11,true", lo, ok)
	}
	hiMirrored, ok := m.CPURead(0xBFFF) // mirrors $7FFF within the 16KiB bank
	if !ok || hiMirrored != 0x22 {
		t.Fatalf("CPURead($BFFF) = %#x,%v want 0x22,true (16KiB bank mirrored into upper half)", hiMirrored, ok)
	}
}

func TestUxROMSwitchesLowBankAndFixesHighBank(t *testing.T) {
	cart := newCart(16*4, 8) // 4 switchable 16KiB banks
	cart.PRGROM[2*0x4000] = 0xAA       // bank 2, byte 0
	lastBankStart := 3 * 0x4000
	cart.PRGROM[lastBankStart] = 0xBB
	m, err := newUxROM(cart, Header{Mirroring: MirrorVertical})
	if err != nil {
		t.Fatal(err)
	}
	m.CPUWrite(0x8000, 0x02) // select bank 2 at $8000
	v, _ := m.CPURead(0x8000)
	if v != 0xAA {
		t.Fatalf("CPURead($8000) after selecting bank 2 = %#x, want 0xAA", v)
	}
	fixed, _ := m.CPURead(0xC000)
	if fixed != 0xBB {
		t.Fatalf("CPURead($C000) = %#x, want 0xBB (fixed to the last bank regardless of bank select)", fixed)
	}
}

func TestMMC1FifthWriteCommitsShiftRegisterToControl(t *testing.T) {
	cart := newCart(16*2, 8)
	m, err := newMMC1(cart, Header{})
	if err != nil {
		t.Fatal(err)
	}
	mm := m.(*mmc1)
	// write the 5-bit value 0b10011 (0x13) into the control register one
	// bit per write, LSB first.
	bits := []uint8{1, 1, 0, 0, 1}
	for _, b := range bits {
		m.CPUWrite(0x8000, b)
	}
	if mm.control != 0x13 {
		t.Fatalf("control = %#x, want 0x13 after five one-bit writes to $8000-$9FFF", mm.control)
	}
}

func TestMMC1ResetBitForcesPRGMode3WithoutWaitingForFifthWrite(t *testing.T) {
	cart := newCart(16*2, 8)
	m, err := newMMC1(cart, Header{})
	if err != nil {
		t.Fatal(err)
	}
	mm := m.(*mmc1)
	mm.control = 0
	m.CPUWrite(0x8000, 0x01)
	m.CPUWrite(0x8000, 0x80) // bit 7 set: resets shift register, forces PRG mode 3
	if mm.shiftCount != 0 {
		t.Fatalf("shiftCount = %d, want 0 after a reset write", mm.shiftCount)
	}
	if mm.control&0x0C != 0x0C {
		t.Fatalf("control = %#x, want PRG mode bits (0x0C) forced on", mm.control)
	}
}

func TestMMC1StateRoundTrip(t *testing.T) {
	cart := newCart(16*2, 8)
	m, _ := newMMC1(cart, Header{})
	mm := m.(*mmc1)
	mm.chrBank0, mm.prgBank, mm.prgRAMEnabled = 3, 5, false

	data := mm.SaveMapperState()

	m2, _ := newMMC1(cart, Header{})
	mm2 := m2.(*mmc1)
	if err := mm2.LoadMapperState(data); err != nil {
		t.Fatal(err)
	}
	if mm2.chrBank0 != 3 || mm2.prgBank != 5 || mm2.prgRAMEnabled {
		t.Fatal("LoadMapperState did not reproduce saved MMC1 register state")
	}
}

func clockMMC3A12Edge(m *mmc3) {
	m.PPURead(0x0000) // drive A12 low
	for i := 0; i < 12; i++ {
		m.OnCPUCycle()
	}
	m.PPURead(0x1000) // rising edge on A12, debounce window satisfied
}

func TestMMC3IRQFiresWhenCounterReachesZero(t *testing.T) {
	cart := newCart(0x4000, 8)
	m, err := newMMC3(cart, Header{})
	if err != nil {
		t.Fatal(err)
	}
	mm := m.(*mmc3)
	mm.irqLatch = 1
	mm.irqEnabled = true
	mm.irqReload = true

	clockMMC3A12Edge(mm) // reload to latch (1), not yet pending
	if mm.IRQLine() {
		t.Fatal("IRQ must not fire on the reload edge itself")
	}
	clockMMC3A12Edge(mm) // counter decrements 1 -> 0, fires
	if !mm.IRQLine() {
		t.Fatal("IRQ should fire once the counter reaches zero with IRQs enabled")
	}
}

func TestMMC3IRQDisableClearsPending(t *testing.T) {
	cart := newCart(0x4000, 8)
	m, _ := newMMC3(cart, Header{})
	mm := m.(*mmc3)
	mm.irqPending = true
	m.CPUWrite(0xE000, 0x00) // even address in $E000-$FFFF disables and acks
	if mm.IRQLine() {
		t.Fatal("writing $E000 (even) must disable IRQs and clear any pending IRQ")
	}
}

func TestMMC3StateRoundTrip(t *testing.T) {
	cart := newCart(0x4000, 8)
	m, _ := newMMC3(cart, Header{})
	mm := m.(*mmc3)
	mm.bankData[6] = 7
	mm.irqLatch = 42
	mm.mirroring = MirrorVertical

	data := mm.SaveMapperState()

	m2, _ := newMMC3(cart, Header{})
	mm2 := m2.(*mmc3)
	if err := mm2.LoadMapperState(data); err != nil {
		t.Fatal(err)
	}
	if mm2.bankData[6] != 7 || mm2.irqLatch != 42 || mm2.mirroring != MirrorVertical {
		t.Fatal("LoadMapperState did not reproduce saved MMC3 register state")
	}
}

func TestUnsupportedMapperReturnsError(t *testing.T) {
	_, err := New(&Cart{}, Header{MapperID: 9999, SubmapperID: 0})
	if err == nil {
		t.Fatal("expected an error for an unregistered mapper ID")
	}
	if _, ok := err.(*ErrUnsupportedMapper); !ok {
		t.Fatalf("error type = %T, want *ErrUnsupportedMapper", err)
	}
}
