package console

import "testing"

func minimalNROM() []byte {
	const headerSize = 16
	const prgSize = 16 * 1024
	const chrSize = 8 * 1024
	data := make([]byte, headerSize+prgSize+chrSize)
	copy(data[0:4], []byte{'N', 'E', 'S', 0x1A})
	data[4] = 1
	data[5] = 1
	data[headerSize+prgSize-4] = 0x00
	data[headerSize+prgSize-3] = 0x80
	return data
}

func newLoadedCore(t *testing.T) *Core {
	t.Helper()
	c := New(RegionNTSC)
	if err := c.LoadCartridge(minimalNROM()); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLoadCartridgeRejectsNonNTSCRegions(t *testing.T) {
	c := New(RegionPAL)
	err := c.LoadCartridge(minimalNROM())
	if _, ok := err.(*UnsupportedFeature); !ok {
		t.Fatalf("err = %T, want *UnsupportedFeature", err)
	}
}

func TestRunFrameProducesOneFullVideoFrame(t *testing.T) {
	c := newLoadedCore(t)
	startFrame := c.Bus.PPU.Frame
	out := c.RunFrame()
	if out.InvalidOpcode {
		t.Fatalf("unexpected invalid opcode: %v", out.InvalidOpcodeErr)
	}
	if c.Bus.PPU.Frame != startFrame+1 {
		t.Fatalf("PPU.Frame = %d, want %d after one RunFrame call", c.Bus.PPU.Frame, startFrame+1)
	}
	if len(out.Video) != 256*240 {
		t.Fatalf("len(Video) = %d, want %d", len(out.Video), 256*240)
	}
}

func TestRunFrameProducesDownsampledAudio(t *testing.T) {
	c := newLoadedCore(t)
	c.SetAudioSampleRate(44100)
	out := c.RunFrame()
	if len(out.Audio) == 0 {
		t.Fatal("expected at least one decimated audio sample per frame")
	}
}

func romWithOpcodeAtReset(opcode uint8) []byte {
	data := minimalNROM()
	const headerSize = 16
	data[headerSize] = opcode // $8000, the reset vector's target
	return data
}

func TestRunFrameStopsOnInvalidOpcodeAndReturnsPartialFrame(t *testing.T) {
	c := New(RegionNTSC)
	if err := c.LoadCartridge(romWithOpcodeAtReset(0x9B)); err != nil { // SHS/TAS: unmodeled
		t.Fatal(err)
	}
	out := c.RunFrame()
	if !out.InvalidOpcode {
		t.Fatal("RunFrame should report InvalidOpcode when the CPU halts on an unmodeled opcode")
	}
	if out.InvalidOpcodeErr == nil {
		t.Fatal("InvalidOpcodeErr should be set alongside InvalidOpcode")
	}
}

func TestSaveStateLoadStateRoundTrip(t *testing.T) {
	c := newLoadedCore(t)
	c.RunFrame()
	data, err := c.SaveState()
	if err != nil {
		t.Fatal(err)
	}
	wantCycle := c.Bus.Cycle()

	c2 := newLoadedCore(t)
	if err := c2.LoadState(data); err != nil {
		t.Fatal(err)
	}
	if c2.Bus.Cycle() != wantCycle {
		t.Fatalf("Cycle() after LoadState = %d, want %d", c2.Bus.Cycle(), wantCycle)
	}
}

func TestLoadStateAcceptsItsOwnSaveState(t *testing.T) {
	c := newLoadedCore(t)
	data, _ := c.SaveState()
	if err := c.LoadState(data); err != nil {
		t.Fatalf("loading a freshly saved state must succeed: %v", err)
	}
}

func TestSetControllerStateIsNoOpBeforeCartridgeLoaded(t *testing.T) {
	c := New(RegionNTSC)
	c.SetControllerState(0, 0xFF) // must not panic with no Bus
}
