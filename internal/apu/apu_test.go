package apu

import "testing"

func newTestAPU() *APU {
	return New(func(addr uint16) uint8 { return 0 })
}

func TestWriteFrameCounterFiresQuarterAndHalfFrameImmediatelyIn5StepMode(t *testing.T) {
	a := newTestAPU()
	a.Pulse1.lengthEnabled = true
	a.Pulse1.length = 10
	a.WriteRegister(0x4017, 0x80) // 5-step mode
	for a.resetPending >= 0 {
		a.Step()
	}
	if a.Pulse1.length != 9 {
		t.Fatalf("length = %d, want 9 (5-step mode clocks a half frame on the deferred reset)", a.Pulse1.length)
	}
}

func TestWriteFrameCounterDelayDependsOnCycleParity(t *testing.T) {
	a := newTestAPU()
	a.cpuCycle = 0 // next Step makes cpuCycle 1 (odd)
	a.WriteRegister(0x4017, 0x00)
	if a.resetPending != 3 {
		t.Fatalf("resetPending = %d, want 3 when write lands on an even cpuCycle", a.resetPending)
	}

	a2 := newTestAPU()
	a2.cpuCycle = 1
	a2.WriteRegister(0x4017, 0x00)
	if a2.resetPending != 4 {
		t.Fatalf("resetPending = %d, want 4 when write lands on an odd cpuCycle", a2.resetPending)
	}
}

func TestFrameIRQFiresIn4StepModeUnlessInhibited(t *testing.T) {
	a := newTestAPU()
	a.WriteRegister(0x4017, 0x00) // 4-step mode, IRQ enabled
	for i := 0; i < 30000; i++ {
		a.Step()
	}
	if !a.FrameIRQ() {
		t.Fatal("frame IRQ should fire once the 4-step sequence reaches its final step")
	}
}

func TestFrameIRQInhibitSuppressesAndClearsFlag(t *testing.T) {
	a := newTestAPU()
	a.frameIRQFlag = true
	a.WriteRegister(0x4017, 0x40) // inhibit bit set
	if a.FrameIRQ() {
		t.Fatal("setting the IRQ inhibit bit must clear a pending frame IRQ flag")
	}
}

func TestPulseTimerAndNoiseDMCStepOnlyOnApuCycle(t *testing.T) {
	a := newTestAPU()
	a.Pulse1.timer = 2
	a.Pulse1.timerCounter = 0
	a.Step() // cpuCycle becomes 1, odd: not an apuCycle
	if a.Pulse1.dutyPos != 0 {
		t.Fatal("pulse timer must not advance on the first (odd) CPU cycle after reset")
	}
	a.Step() // cpuCycle becomes 2, even: apuCycle fires
	if a.Pulse1.dutyPos != 1 {
		t.Fatalf("dutyPos = %d, want 1 after the timer reached zero on an apuCycle", a.Pulse1.dutyPos)
	}
}

func TestTriangleTimerStepsEveryCpuCycle(t *testing.T) {
	a := newTestAPU()
	a.Triangle.timer = 1
	a.Triangle.timerCounter = 0
	a.Triangle.length = 5
	a.Triangle.linearCounter = 5
	a.Step()
	if a.Triangle.seqPos != 1 {
		t.Fatalf("seqPos = %d, want 1 (triangle advances on every CPU cycle, not just apuCycles)", a.Triangle.seqPos)
	}
}

func TestDMCEnableWithNoBytesRemainingStartsSample(t *testing.T) {
	a := newTestAPU()
	a.DMC.sampleAddress = 0xC123
	a.DMC.sampleLength = 0x20
	a.WriteRegister(0x4015, 0x10)
	if a.DMC.currentAddress != 0xC123 || a.DMC.bytesRemaining != 0x20 {
		t.Fatalf("enabling DMC with bytesRemaining==0 should start a sample, got addr=$%04X remaining=%d",
			a.DMC.currentAddress, a.DMC.bytesRemaining)
	}
}

func TestReadStatusReportsChannelActivityAndClearsFrameIRQ(t *testing.T) {
	a := newTestAPU()
	a.Pulse1.length = 1
	a.DMC.bytesRemaining = 1
	a.frameIRQFlag = true
	v := a.ReadStatus()
	if v&0x01 == 0 {
		t.Fatal("status bit 0 should reflect pulse1 length > 0")
	}
	if v&0x10 == 0 {
		t.Fatal("status bit 4 should reflect DMC bytesRemaining > 0")
	}
	if v&0x40 == 0 {
		t.Fatal("status bit 6 should reflect the frame IRQ flag")
	}
	if a.FrameIRQ() {
		t.Fatal("reading $4015 must clear the frame IRQ flag as a side effect")
	}
}

func TestWriteStatusDisablingChannelZeroesLength(t *testing.T) {
	a := newTestAPU()
	a.Pulse1.length = 20
	a.writeStatus(0x00)
	if a.Pulse1.length != 0 {
		t.Fatalf("Pulse1.length = %d, want 0 after disabling the channel via $4015", a.Pulse1.length)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	a := newTestAPU()
	a.Pulse1.volume = 7
	a.Pulse1.timer = 0x123
	a.Triangle.linearCounter = 9
	a.Noise.shift = 0x55
	a.DMC.bytesRemaining = 42
	a.frameMode = true
	a.cpuCycle = 999

	snap := a.Snapshot()

	a2 := newTestAPU()
	a2.Restore(snap)
	if a2.Pulse1.volume != 7 || a2.Pulse1.timer != 0x123 {
		t.Fatal("Restore did not reproduce pulse1 state")
	}
	if a2.Triangle.linearCounter != 9 {
		t.Fatal("Restore did not reproduce triangle state")
	}
	if a2.Noise.shift != 0x55 {
		t.Fatal("Restore did not reproduce noise state")
	}
	if a2.DMC.bytesRemaining != 42 {
		t.Fatal("Restore did not reproduce DMC state")
	}
	if !a2.frameMode || a2.cpuCycle != 999 {
		t.Fatal("Restore did not reproduce frame sequencer state")
	}
}
