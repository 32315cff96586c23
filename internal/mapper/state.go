package mapper

import (
	"bytes"
	"encoding/gob"
)

// encodeState gob-encodes a DTO into the []byte StateSaver returns;
// decodeState is its inverse. Mappers only ever exchange these bytes
// with the bus, which treats them as opaque.
func encodeState(v any) []byte {
	var buf bytes.Buffer
	_ = gob.NewEncoder(&buf).Encode(v)
	return buf.Bytes()
}

func decodeState(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// --- MMC1 ---

type mmc1State struct {
	Shift, ShiftCount                      uint8
	Control, ChrBank0, ChrBank1, PrgBank   uint8
	PrgRAMEnabled                          bool
}

func (m *mmc1) SaveMapperState() []byte {
	return encodeState(mmc1State{m.shift, m.shiftCount, m.control, m.chrBank0, m.chrBank1, m.prgBank, m.prgRAMEnabled})
}

func (m *mmc1) LoadMapperState(data []byte) error {
	var s mmc1State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.shift, m.shiftCount = s.Shift, s.ShiftCount
	m.control, m.chrBank0, m.chrBank1, m.prgBank = s.Control, s.ChrBank0, s.ChrBank1, s.PrgBank
	m.prgRAMEnabled = s.PrgRAMEnabled
	return nil
}

// --- MMC3 ---

type mmc3State struct {
	BankSelect              uint8
	BankData                [8]uint8
	Mirroring               Mirroring
	FourScreen              bool
	RAMEnabled, RAMWriteProt bool
	IRQLatch, IRQCounter    uint8
	IRQReload, IRQEnabled, IRQPending bool
	LastA12                 uint8
	A12LowSince             int
	CPUCycle                uint64
}

func (m *mmc3) SaveMapperState() []byte {
	return encodeState(mmc3State{
		BankSelect: m.bankSelect, BankData: m.bankData, Mirroring: m.mirroring, FourScreen: m.fourScreen,
		RAMEnabled: m.ramEnabled, RAMWriteProt: m.ramWriteProt,
		IRQLatch: m.irqLatch, IRQCounter: m.irqCounter, IRQReload: m.irqReload, IRQEnabled: m.irqEnabled, IRQPending: m.irqPending,
		LastA12: m.lastA12, A12LowSince: m.a12LowSince, CPUCycle: m.cpuCycle,
	})
}

func (m *mmc3) LoadMapperState(data []byte) error {
	var s mmc3State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.bankSelect, m.bankData, m.mirroring, m.fourScreen = s.BankSelect, s.BankData, s.Mirroring, s.FourScreen
	m.ramEnabled, m.ramWriteProt = s.RAMEnabled, s.RAMWriteProt
	m.irqLatch, m.irqCounter, m.irqReload, m.irqEnabled, m.irqPending = s.IRQLatch, s.IRQCounter, s.IRQReload, s.IRQEnabled, s.IRQPending
	m.lastA12, m.a12LowSince, m.cpuCycle = s.LastA12, s.A12LowSince, s.CPUCycle
	return nil
}

// --- MMC5 ---

type mmc5PulseState struct {
	Duty, Volume    uint8
	Enabled         bool
	Period, Timer   uint16
	Phase           uint8
	LenHalt         bool
	Length          uint8
}

func savePulseMMC5(p *mmc5Pulse) mmc5PulseState {
	return mmc5PulseState{p.duty, p.volume, p.enabled, p.period, p.timer, p.phase, p.lenHalt, p.length}
}

func loadPulseMMC5(p *mmc5Pulse, s mmc5PulseState) {
	p.duty, p.volume, p.enabled = s.Duty, s.Volume, s.Enabled
	p.period, p.timer, p.phase = s.Period, s.Timer, s.Phase
	p.lenHalt, p.length = s.LenHalt, s.Length
}

type mmc5State struct {
	Mirroring     Mirroring
	PrgMode       uint8
	PrgRAMProtect [2]uint8
	PrgBanks      [5]uint8
	ChrMode       uint8
	ChrBanksBG    [8]uint8
	ChrBanksSpr   [8]uint8
	ChrHighBits   uint8
	Exram         [0x400]uint8
	ExramMode     uint8
	Multiplicand, Multiplier uint8
	IRQTarget     uint8
	IRQEnabled    bool
	IRQPending    bool
	ScanlineCnt   uint8
	InFrame       bool
	Pulse1, Pulse2 mmc5PulseState
}

func (m *mmc5) SaveMapperState() []byte {
	return encodeState(mmc5State{
		Mirroring: m.mirroring, PrgMode: m.prgMode, PrgRAMProtect: m.prgRAMProtect, PrgBanks: m.prgBanks,
		ChrMode: m.chrMode, ChrBanksBG: m.chrBanksBG, ChrBanksSpr: m.chrBanksSpr, ChrHighBits: m.chrHighBits,
		Exram: m.exram, ExramMode: m.exramMode, Multiplicand: m.multiplicand, Multiplier: m.multiplier,
		IRQTarget: m.irqTarget, IRQEnabled: m.irqEnabled, IRQPending: m.irqPending, ScanlineCnt: m.scanlineCnt, InFrame: m.inFrame,
		Pulse1: savePulseMMC5(&m.pulse1), Pulse2: savePulseMMC5(&m.pulse2),
	})
}

func (m *mmc5) LoadMapperState(data []byte) error {
	var s mmc5State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.mirroring, m.prgMode, m.prgRAMProtect, m.prgBanks = s.Mirroring, s.PrgMode, s.PrgRAMProtect, s.PrgBanks
	m.chrMode, m.chrBanksBG, m.chrBanksSpr, m.chrHighBits = s.ChrMode, s.ChrBanksBG, s.ChrBanksSpr, s.ChrHighBits
	m.exram, m.exramMode, m.multiplicand, m.multiplier = s.Exram, s.ExramMode, s.Multiplicand, s.Multiplier
	m.irqTarget, m.irqEnabled, m.irqPending, m.scanlineCnt, m.inFrame = s.IRQTarget, s.IRQEnabled, s.IRQPending, s.ScanlineCnt, s.InFrame
	loadPulseMMC5(&m.pulse1, s.Pulse1)
	loadPulseMMC5(&m.pulse2, s.Pulse2)
	return nil
}

// --- MMC2/MMC4 ---

type mmc2or4State struct {
	PrgBank                          uint8
	Chr0FD, Chr0FE, Chr1FD, Chr1FE   uint8
	Latch0, Latch1                  uint8
	Mirroring                       Mirroring
}

func (m *mmc2or4) SaveMapperState() []byte {
	return encodeState(mmc2or4State{m.prgBank, m.chr0FD, m.chr0FE, m.chr1FD, m.chr1FE, m.latch0, m.latch1, m.mirroring})
}

func (m *mmc2or4) LoadMapperState(data []byte) error {
	var s mmc2or4State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.prgBank = s.PrgBank
	m.chr0FD, m.chr0FE, m.chr1FD, m.chr1FE = s.Chr0FD, s.Chr0FE, s.Chr1FD, s.Chr1FE
	m.latch0, m.latch1, m.mirroring = s.Latch0, s.Latch1, s.Mirroring
	return nil
}

// --- VRC6 ---

type vrc6PulseState struct {
	Duty, Volume    uint8
	Enabled         bool
	Digitize        bool
	Period, Timer   uint16
	Phase           uint8
}

func savePulseVRC6(p *vrc6Pulse) vrc6PulseState {
	return vrc6PulseState{p.duty, p.volume, p.enabled, p.digitize, p.period, p.timer, p.phase}
}

func loadPulseVRC6(p *vrc6Pulse, s vrc6PulseState) {
	p.duty, p.volume, p.enabled, p.digitize = s.Duty, s.Volume, s.Enabled, s.Digitize
	p.period, p.timer, p.phase = s.Period, s.Timer, s.Phase
}

type vrc6SawState struct {
	AccumRate, Accum, Step uint8
	Enabled                bool
	Period, Timer          uint16
}

type vrc6State struct {
	Mirroring              Mirroring
	Prg16, Prg8            uint8
	Chr                    [8]uint8
	IRQLatch, IRQCounter   uint8
	IRQEnabled, IRQAckMode, IRQPending bool
	Prescaler              int
	Pulse1, Pulse2         vrc6PulseState
	Saw                    vrc6SawState
}

func (m *vrc6) SaveMapperState() []byte {
	return encodeState(vrc6State{
		Mirroring: m.mirroring, Prg16: m.prg16, Prg8: m.prg8, Chr: m.chr,
		IRQLatch: m.irqLatch, IRQCounter: m.irqCounter, IRQEnabled: m.irqEnabled, IRQAckMode: m.irqAckMode, IRQPending: m.irqPending,
		Prescaler: m.prescaler,
		Pulse1:    savePulseVRC6(&m.pulse1), Pulse2: savePulseVRC6(&m.pulse2),
		Saw: vrc6SawState{m.saw.accumRate, m.saw.accum, m.saw.step, m.saw.enabled, m.saw.period, m.saw.timer},
	})
}

func (m *vrc6) LoadMapperState(data []byte) error {
	var s vrc6State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.mirroring, m.prg16, m.prg8, m.chr = s.Mirroring, s.Prg16, s.Prg8, s.Chr
	m.irqLatch, m.irqCounter, m.irqEnabled, m.irqAckMode, m.irqPending = s.IRQLatch, s.IRQCounter, s.IRQEnabled, s.IRQAckMode, s.IRQPending
	m.prescaler = s.Prescaler
	loadPulseVRC6(&m.pulse1, s.Pulse1)
	loadPulseVRC6(&m.pulse2, s.Pulse2)
	m.saw.accumRate, m.saw.accum, m.saw.step = s.Saw.AccumRate, s.Saw.Accum, s.Saw.Step
	m.saw.enabled, m.saw.period, m.saw.timer = s.Saw.Enabled, s.Saw.Period, s.Saw.Timer
	return nil
}

// --- VRC7 ---

type vrc7State struct {
	Mirroring               Mirroring
	Prg0, Prg1, Prg2        uint8
	Chr                     [8]uint8
	RAMEnabled              bool
	IRQLatch, IRQCounter    uint8
	IRQEnabled, IRQAckMode, IRQPending bool
	Prescaler               int
	AudioAddress            uint8
	AudioRegs               [0x40]uint8
}

func (m *vrc7) SaveMapperState() []byte {
	return encodeState(vrc7State{
		Mirroring: m.mirroring, Prg0: m.prg0, Prg1: m.prg1, Prg2: m.prg2, Chr: m.chr, RAMEnabled: m.ramEnabled,
		IRQLatch: m.irqLatch, IRQCounter: m.irqCounter, IRQEnabled: m.irqEnabled, IRQAckMode: m.irqAckMode, IRQPending: m.irqPending,
		Prescaler: m.prescaler, AudioAddress: m.audioAddress, AudioRegs: m.audioRegs,
	})
}

func (m *vrc7) LoadMapperState(data []byte) error {
	var s vrc7State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.mirroring, m.prg0, m.prg1, m.prg2, m.chr, m.ramEnabled = s.Mirroring, s.Prg0, s.Prg1, s.Prg2, s.Chr, s.RAMEnabled
	m.irqLatch, m.irqCounter, m.irqEnabled, m.irqAckMode, m.irqPending = s.IRQLatch, s.IRQCounter, s.IRQEnabled, s.IRQAckMode, s.IRQPending
	m.prescaler, m.audioAddress, m.audioRegs = s.Prescaler, s.AudioAddress, s.AudioRegs
	return nil
}

// --- VRC2/VRC4 ---

type vrc24State struct {
	Mirroring            Mirroring
	Prg                  [2]uint8
	PrgSwap              bool
	Chr, ChrHi           [8]uint8
	IRQLatch, IRQCounter uint8
	IRQEnabled, IRQAckMode, IRQPending bool
	IRQMode16            bool
	Prescaler            int
}

func (m *vrc24) SaveMapperState() []byte {
	return encodeState(vrc24State{
		Mirroring: m.mirroring, Prg: m.prg, PrgSwap: m.prgSwap, Chr: m.chr, ChrHi: m.chrHi,
		IRQLatch: m.irqLatch, IRQCounter: m.irqCounter, IRQEnabled: m.irqEnabled, IRQAckMode: m.irqAckMode,
		IRQPending: m.irqPending, IRQMode16: m.irqMode16, Prescaler: m.prescaler,
	})
}

func (m *vrc24) LoadMapperState(data []byte) error {
	var s vrc24State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.mirroring, m.prg, m.prgSwap, m.chr, m.chrHi = s.Mirroring, s.Prg, s.PrgSwap, s.Chr, s.ChrHi
	m.irqLatch, m.irqCounter, m.irqEnabled, m.irqAckMode = s.IRQLatch, s.IRQCounter, s.IRQEnabled, s.IRQAckMode
	m.irqPending, m.irqMode16, m.prescaler = s.IRQPending, s.IRQMode16, s.Prescaler
	return nil
}

// --- Namco 163 ---

type namco163State struct {
	Prg            [3]uint8
	Chr            [8]uint8
	NT             [2]uint8
	Mirroring      Mirroring
	IRQCounter     uint16
	IRQEnabled     bool
	SoundAddress   uint8
	SoundAutoInc   bool
	SoundRAM       [0x80]uint8
}

func (m *namco163) SaveMapperState() []byte {
	return encodeState(namco163State{
		Prg: m.prg, Chr: m.chr, NT: m.nt, Mirroring: m.mirroring,
		IRQCounter: m.irqCounter, IRQEnabled: m.irqEnabled,
		SoundAddress: m.soundAddress, SoundAutoInc: m.soundAutoInc, SoundRAM: m.soundRAM,
	})
}

func (m *namco163) LoadMapperState(data []byte) error {
	var s namco163State
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.prg, m.chr, m.nt, m.mirroring = s.Prg, s.Chr, s.NT, s.Mirroring
	m.irqCounter, m.irqEnabled = s.IRQCounter, s.IRQEnabled
	m.soundAddress, m.soundAutoInc, m.soundRAM = s.SoundAddress, s.SoundAutoInc, s.SoundRAM
	return nil
}

// --- Sunsoft 5B ---

type sunsoft5bState struct {
	Register      uint8
	ChrBank       [8]uint8
	PrgBank       [3]uint8
	PrgRAMBank    uint8
	PrgRAMEnabled bool
	Mirroring     Mirroring
	IRQEnabled    bool
	IRQCounting   bool
	IRQCounter    uint16
	IRQPending    bool
	PSGAddress    uint8
	PSGRegs       [16]uint8
}

func (m *sunsoft5b) SaveMapperState() []byte {
	return encodeState(sunsoft5bState{
		Register: m.register, ChrBank: m.chrBank, PrgBank: m.prgBank, PrgRAMBank: m.prgRAMBank, PrgRAMEnabled: m.prgRAMEnabled,
		Mirroring: m.mirroring, IRQEnabled: m.irqEnabled, IRQCounting: m.irqCounting, IRQCounter: m.irqCounter, IRQPending: m.irqPending,
		PSGAddress: m.psgAddress, PSGRegs: m.psgRegs,
	})
}

func (m *sunsoft5b) LoadMapperState(data []byte) error {
	var s sunsoft5bState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.register, m.chrBank, m.prgBank, m.prgRAMBank, m.prgRAMEnabled = s.Register, s.ChrBank, s.PrgBank, s.PrgRAMBank, s.PrgRAMEnabled
	m.mirroring, m.irqEnabled, m.irqCounting, m.irqCounter, m.irqPending = s.Mirroring, s.IRQEnabled, s.IRQCounting, s.IRQCounter, s.IRQPending
	m.psgAddress, m.psgRegs = s.PSGAddress, s.PSGRegs
	return nil
}

// --- simple single/dual-register mappers (AxROM, UxROM, CNROM, GxROM,
// Codemasters, Color Dreams) ---

type simpleBankState struct {
	PrgBank, ChrBank uint8
	Mirroring        Mirroring
}

func (m *axrom) SaveMapperState() []byte {
	return encodeState(simpleBankState{PrgBank: m.prgBank, Mirroring: m.mirroring})
}
func (m *axrom) LoadMapperState(data []byte) error {
	var s simpleBankState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.prgBank, m.mirroring = s.PrgBank, s.Mirroring
	return nil
}

func (m *uxrom) SaveMapperState() []byte { return encodeState(simpleBankState{PrgBank: m.bank, Mirroring: m.mirroring}) }
func (m *uxrom) LoadMapperState(data []byte) error {
	var s simpleBankState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.bank, m.mirroring = s.PrgBank, s.Mirroring
	return nil
}

func (m *cnrom) SaveMapperState() []byte { return encodeState(simpleBankState{ChrBank: m.chrBank, Mirroring: m.mirroring}) }
func (m *cnrom) LoadMapperState(data []byte) error {
	var s simpleBankState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.chrBank, m.mirroring = s.ChrBank, s.Mirroring
	return nil
}

func (m *gxrom) SaveMapperState() []byte {
	return encodeState(simpleBankState{PrgBank: m.prgBank, ChrBank: m.chrBank, Mirroring: m.mirroring})
}
func (m *gxrom) LoadMapperState(data []byte) error {
	var s simpleBankState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.prgBank, m.chrBank, m.mirroring = s.PrgBank, s.ChrBank, s.Mirroring
	return nil
}

func (m *codemasters) SaveMapperState() []byte {
	return encodeState(simpleBankState{PrgBank: m.prgBank, Mirroring: m.mirroring})
}
func (m *codemasters) LoadMapperState(data []byte) error {
	var s simpleBankState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.prgBank, m.mirroring = s.PrgBank, s.Mirroring
	return nil
}

func (m *colordreams) SaveMapperState() []byte {
	return encodeState(simpleBankState{PrgBank: m.prgBank, ChrBank: m.chrBank, Mirroring: m.mirroring})
}
func (m *colordreams) LoadMapperState(data []byte) error {
	var s simpleBankState
	if err := decodeState(data, &s); err != nil {
		return err
	}
	m.prgBank, m.chrBank, m.mirroring = s.PrgBank, s.ChrBank, s.Mirroring
	return nil
}

var (
	_ StateSaver = (*mmc1)(nil)
	_ StateSaver = (*mmc3)(nil)
	_ StateSaver = (*mmc5)(nil)
	_ StateSaver = (*mmc2or4)(nil)
	_ StateSaver = (*vrc6)(nil)
	_ StateSaver = (*vrc7)(nil)
	_ StateSaver = (*vrc24)(nil)
	_ StateSaver = (*namco163)(nil)
	_ StateSaver = (*sunsoft5b)(nil)
	_ StateSaver = (*axrom)(nil)
	_ StateSaver = (*uxrom)(nil)
	_ StateSaver = (*cnrom)(nil)
	_ StateSaver = (*gxrom)(nil)
	_ StateSaver = (*codemasters)(nil)
	_ StateSaver = (*colordreams)(nil)
)
