package controller

// PadSnapshot is the serializable form of one Pad's state.
type PadSnapshot struct {
	Buttons uint8
	Shift   uint8
	Strobe  bool
}

// Snapshot is the serializable form of both controller ports.
type Snapshot struct {
	Pad1, Pad2 PadSnapshot
}

func (p *Pad) snapshot() PadSnapshot {
	return PadSnapshot{Buttons: p.buttons, Shift: p.shift, Strobe: p.strobe}
}

func (p *Pad) restore(s PadSnapshot) {
	p.buttons, p.shift, p.strobe = s.Buttons, s.Shift, s.Strobe
}

// Snapshot captures both pads' state.
func (p *Ports) Snapshot() Snapshot {
	return Snapshot{Pad1: p.Pad1.snapshot(), Pad2: p.Pad2.snapshot()}
}

// Restore replaces both pads' state.
func (p *Ports) Restore(s Snapshot) {
	p.Pad1.restore(s.Pad1)
	p.Pad2.restore(s.Pad2)
}
