package apu

// Snapshot is the serializable form of all APU state. SaveState/LoadState
// (internal/console) round-trip through this exported DTO rather than
// gob-encoding the live channel structs directly, since encoding/gob
// silently drops unexported fields and every channel keeps its registers
// unexported by design.
type Snapshot struct {
	Pulse1, Pulse2 PulseSnapshot
	Triangle       TriangleSnapshot
	Noise          NoiseSnapshot
	DMC            DMCSnapshot

	FrameMode       bool
	FrameIRQInhibit bool
	FrameIRQFlag    bool
	FrameCycle      uint16
	ResetPending    int
	CPUCycle        uint64
}

type PulseSnapshot struct {
	Duty                          uint8
	EnvelopeLoop, ConstantVolume  bool
	Volume                        uint8
	SweepEnable                   bool
	SweepPeriod                   uint8
	SweepNegate                   bool
	SweepShift                    uint8
	SweepReload                   bool
	SweepDivider                  uint8
	Timer, TimerCounter           uint16
	Length                        uint8
	LengthEnabled                 bool
	EnvelopeStart                 bool
	EnvelopeDecay, EnvelopeDivider uint8
	DutyPos                       uint8
}

type TriangleSnapshot struct {
	HaltAndControl bool
	LinearLoad     uint8
	LinearCounter  uint8
	LinearReload   bool
	Timer          uint16
	TimerCounter   uint16
	Length         uint8
	LengthEnabled  bool
	SeqPos         uint8
}

type NoiseSnapshot struct {
	EnvelopeLoop, ConstantVolume   bool
	Volume                         uint8
	Mode                           bool
	Period                         uint8
	TimerCounter, Shift            uint16
	Length                         uint8
	LengthEnabled                  bool
	EnvelopeStart                  bool
	EnvelopeDecay, EnvelopeDivider uint8
}

type DMCSnapshot struct {
	IRQEnable                bool
	Loop                     bool
	RateIndex                uint8
	IRQFlag                  bool
	Output                   uint8
	SampleAddress            uint16
	SampleLength             uint16
	CurrentAddress           uint16
	BytesRemaining           uint16
	TimerCounter             uint16
	SampleBuffer             uint8
	SampleBufferEmpty        bool
	ShiftRegister            uint8
	BitsRemaining            uint8
	Silence                  bool
}

func snapshotPulse(p *Pulse) PulseSnapshot {
	return PulseSnapshot{
		Duty: p.duty, EnvelopeLoop: p.envelopeLoop, ConstantVolume: p.constantVolume, Volume: p.volume,
		SweepEnable: p.sweepEnable, SweepPeriod: p.sweepPeriod, SweepNegate: p.sweepNegate,
		SweepShift: p.sweepShift, SweepReload: p.sweepReload, SweepDivider: p.sweepDivider,
		Timer: p.timer, TimerCounter: p.timerCounter, Length: p.length, LengthEnabled: p.lengthEnabled,
		EnvelopeStart: p.envelopeStart, EnvelopeDecay: p.envelopeDecay, EnvelopeDivider: p.envelopeDivider,
		DutyPos: p.dutyPos,
	}
}

func restorePulse(p *Pulse, s PulseSnapshot) {
	p.duty, p.envelopeLoop, p.constantVolume, p.volume = s.Duty, s.EnvelopeLoop, s.ConstantVolume, s.Volume
	p.sweepEnable, p.sweepPeriod, p.sweepNegate = s.SweepEnable, s.SweepPeriod, s.SweepNegate
	p.sweepShift, p.sweepReload, p.sweepDivider = s.SweepShift, s.SweepReload, s.SweepDivider
	p.timer, p.timerCounter, p.length, p.lengthEnabled = s.Timer, s.TimerCounter, s.Length, s.LengthEnabled
	p.envelopeStart, p.envelopeDecay, p.envelopeDivider = s.EnvelopeStart, s.EnvelopeDecay, s.EnvelopeDivider
	p.dutyPos = s.DutyPos
}

// Snapshot captures all APU state for save-state support.
func (a *APU) Snapshot() Snapshot {
	return Snapshot{
		Pulse1: snapshotPulse(&a.Pulse1),
		Pulse2: snapshotPulse(&a.Pulse2),
		Triangle: TriangleSnapshot{
			HaltAndControl: a.Triangle.haltAndControl, LinearLoad: a.Triangle.linearLoad,
			LinearCounter: a.Triangle.linearCounter, LinearReload: a.Triangle.linearReload,
			Timer: a.Triangle.timer, TimerCounter: a.Triangle.timerCounter,
			Length: a.Triangle.length, LengthEnabled: a.Triangle.lengthEnabled, SeqPos: a.Triangle.seqPos,
		},
		Noise: NoiseSnapshot{
			EnvelopeLoop: a.Noise.envelopeLoop, ConstantVolume: a.Noise.constantVolume, Volume: a.Noise.volume,
			Mode: a.Noise.mode, Period: a.Noise.period, TimerCounter: a.Noise.timerCounter, Shift: a.Noise.shift,
			Length: a.Noise.length, LengthEnabled: a.Noise.lengthEnabled, EnvelopeStart: a.Noise.envelopeStart,
			EnvelopeDecay: a.Noise.envelopeDecay, EnvelopeDivider: a.Noise.envelopeDivider,
		},
		DMC: DMCSnapshot{
			IRQEnable: a.DMC.irqEnable, Loop: a.DMC.loop, RateIndex: a.DMC.rateIndex, IRQFlag: a.DMC.irqFlag,
			Output: a.DMC.output, SampleAddress: a.DMC.sampleAddress, SampleLength: a.DMC.sampleLength,
			CurrentAddress: a.DMC.currentAddress, BytesRemaining: a.DMC.bytesRemaining, TimerCounter: a.DMC.timerCounter,
			SampleBuffer: a.DMC.sampleBuffer, SampleBufferEmpty: a.DMC.sampleBufferEmpty,
			ShiftRegister: a.DMC.shiftRegister, BitsRemaining: a.DMC.bitsRemaining, Silence: a.DMC.silence,
		},
		FrameMode: a.frameMode, FrameIRQInhibit: a.frameIRQInhibit, FrameIRQFlag: a.frameIRQFlag,
		FrameCycle: a.frameCycle, ResetPending: a.resetPending, CPUCycle: a.cpuCycle,
	}
}

// Restore replaces all APU state with a previously captured Snapshot. The
// MemReader callback is left untouched (it is wiring, not state).
func (a *APU) Restore(s Snapshot) {
	restorePulse(&a.Pulse1, s.Pulse1)
	restorePulse(&a.Pulse2, s.Pulse2)
	a.Triangle = Triangle{
		haltAndControl: s.Triangle.HaltAndControl, linearLoad: s.Triangle.LinearLoad,
		linearCounter: s.Triangle.LinearCounter, linearReload: s.Triangle.LinearReload,
		timer: s.Triangle.Timer, timerCounter: s.Triangle.TimerCounter,
		length: s.Triangle.Length, lengthEnabled: s.Triangle.LengthEnabled, seqPos: s.Triangle.SeqPos,
	}
	a.Noise = Noise{
		envelopeLoop: s.Noise.EnvelopeLoop, constantVolume: s.Noise.ConstantVolume, volume: s.Noise.Volume,
		mode: s.Noise.Mode, period: s.Noise.Period, timerCounter: s.Noise.TimerCounter, shift: s.Noise.Shift,
		length: s.Noise.Length, lengthEnabled: s.Noise.LengthEnabled, envelopeStart: s.Noise.EnvelopeStart,
		envelopeDecay: s.Noise.EnvelopeDecay, envelopeDivider: s.Noise.EnvelopeDivider,
	}
	a.DMC = DMC{
		irqEnable: s.DMC.IRQEnable, loop: s.DMC.Loop, rateIndex: s.DMC.RateIndex, irqFlag: s.DMC.IRQFlag,
		output: s.DMC.Output, sampleAddress: s.DMC.SampleAddress, sampleLength: s.DMC.SampleLength,
		currentAddress: s.DMC.CurrentAddress, bytesRemaining: s.DMC.BytesRemaining, timerCounter: s.DMC.TimerCounter,
		sampleBuffer: s.DMC.SampleBuffer, sampleBufferEmpty: s.DMC.SampleBufferEmpty,
		shiftRegister: s.DMC.ShiftRegister, bitsRemaining: s.DMC.BitsRemaining, silence: s.DMC.Silence,
	}
	a.frameMode, a.frameIRQInhibit, a.frameIRQFlag = s.FrameMode, s.FrameIRQInhibit, s.FrameIRQFlag
	a.frameCycle, a.resetPending, a.cpuCycle = s.FrameCycle, s.ResetPending, s.CPUCycle
}
