package controller

import "testing"

func TestReadSerializesButtonsLSBFirstWhileStrobeLow(t *testing.T) {
	var p Pad
	p.SetState(uint8(ButtonA | ButtonStart)) // bits 0 and 3
	p.Strobe(true)
	p.Strobe(false)

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0}
	for i, w := range want {
		got := p.Read(0) & 0x01
		if got != w {
			t.Fatalf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestReadWhileStrobeHighAlwaysReturnsButtonA(t *testing.T) {
	var p Pad
	p.SetButton(ButtonA, true)
	p.Strobe(true)
	first := p.Read(0) & 0x01
	second := p.Read(0) & 0x01
	if first != 1 || second != 1 {
		t.Fatal("holding strobe high must keep returning button A without advancing the shift register")
	}
}

func TestReadPastEighthBitReturnsOnes(t *testing.T) {
	var p Pad
	p.SetState(0x00)
	p.Strobe(true)
	p.Strobe(false)
	for i := 0; i < 8; i++ {
		p.Read(0)
	}
	if v := p.Read(0) & 0x01; v != 1 {
		t.Fatalf("ninth read = %d, want 1 (shift register fills with 1s past the eighth bit)", v)
	}
}

func TestReadMixesOpenBusIntoUpperBits(t *testing.T) {
	var p Pad
	v := p.Read(0xFF)
	if v&openBusMask != openBusMask {
		t.Fatalf("Read did not mix the bus open-bus latch into the unconnected upper bits, got %#x", v)
	}
}

func TestPortsWriteDrivesStrobeOnBothPads(t *testing.T) {
	var ports Ports
	ports.Pad1.SetState(uint8(ButtonA))
	ports.Pad2.SetState(uint8(ButtonB))
	ports.Write(0x01) // strobe high
	ports.Write(0x00) // strobe low, latches both pads

	if v := ports.Read4016(0) & 0x01; v != 1 {
		t.Fatalf("Read4016 = %d, want 1 (pad1's button A)", v)
	}
	if v := ports.Read4017(0) & 0x01; v != 0 {
		t.Fatalf("Read4017 bit0 = %d, want 0 (pad2 has only button B pressed)", v)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	var ports Ports
	ports.Pad1.SetState(0x42)
	ports.Pad1.Strobe(true)
	snap := ports.Snapshot()

	var ports2 Ports
	ports2.Restore(snap)
	if ports2.Pad1.buttons != 0x42 || !ports2.Pad1.strobe {
		t.Fatal("Restore did not reproduce pad1 state")
	}
}
