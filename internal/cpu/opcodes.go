package cpu

// mode is an addressing mode tag used only to resolve an opcode's
// operand; the actual bus-access pattern for each tag lives in
// addressing.go.
type mode uint8

const (
	modeImplied mode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect
	modeIndexedIndirect
	modeIndirectIndexed
	modeRelative
)

// op describes one opcode byte: which operation it runs and how its
// operand is addressed. rmw marks instructions that read-modify-write
// their operand (ASL/DEC/the unofficial SLO family...); store marks
// plain stores (STA/STX/STY/SAX). Both force the indexed-addressing
// "always pay the extra cycle" penalty that real loads only pay on an
// actual page cross.
type op struct {
	name  string
	mode  mode
	rmw   bool
	store bool
}

var opcodes [256]op

func def(code uint8, name string, m mode, rmw, store bool) {
	opcodes[code] = op{name: name, mode: m, rmw: rmw, store: store}
}

func init() {
	// Loads/stores
	def(0xA9, "LDA", modeImmediate, false, false)
	def(0xA5, "LDA", modeZeroPage, false, false)
	def(0xB5, "LDA", modeZeroPageX, false, false)
	def(0xAD, "LDA", modeAbsolute, false, false)
	def(0xBD, "LDA", modeAbsoluteX, false, false)
	def(0xB9, "LDA", modeAbsoluteY, false, false)
	def(0xA1, "LDA", modeIndexedIndirect, false, false)
	def(0xB1, "LDA", modeIndirectIndexed, false, false)

	def(0xA2, "LDX", modeImmediate, false, false)
	def(0xA6, "LDX", modeZeroPage, false, false)
	def(0xB6, "LDX", modeZeroPageY, false, false)
	def(0xAE, "LDX", modeAbsolute, false, false)
	def(0xBE, "LDX", modeAbsoluteY, false, false)

	def(0xA0, "LDY", modeImmediate, false, false)
	def(0xA4, "LDY", modeZeroPage, false, false)
	def(0xB4, "LDY", modeZeroPageX, false, false)
	def(0xAC, "LDY", modeAbsolute, false, false)
	def(0xBC, "LDY", modeAbsoluteX, false, false)

	def(0x85, "STA", modeZeroPage, false, true)
	def(0x95, "STA", modeZeroPageX, false, true)
	def(0x8D, "STA", modeAbsolute, false, true)
	def(0x9D, "STA", modeAbsoluteX, false, true)
	def(0x99, "STA", modeAbsoluteY, false, true)
	def(0x81, "STA", modeIndexedIndirect, false, true)
	def(0x91, "STA", modeIndirectIndexed, false, true)

	def(0x86, "STX", modeZeroPage, false, true)
	def(0x96, "STX", modeZeroPageY, false, true)
	def(0x8E, "STX", modeAbsolute, false, true)

	def(0x84, "STY", modeZeroPage, false, true)
	def(0x94, "STY", modeZeroPageX, false, true)
	def(0x8C, "STY", modeAbsolute, false, true)

	// Transfers / stack
	def(0xAA, "TAX", modeImplied, false, false)
	def(0xA8, "TAY", modeImplied, false, false)
	def(0xBA, "TSX", modeImplied, false, false)
	def(0x8A, "TXA", modeImplied, false, false)
	def(0x9A, "TXS", modeImplied, false, false)
	def(0x98, "TYA", modeImplied, false, false)
	def(0x48, "PHA", modeImplied, false, false)
	def(0x08, "PHP", modeImplied, false, false)
	def(0x68, "PLA", modeImplied, false, false)
	def(0x28, "PLP", modeImplied, false, false)

	// Arithmetic / logic
	for code, m := range map[uint8]mode{0x69: modeImmediate, 0x65: modeZeroPage, 0x75: modeZeroPageX, 0x6D: modeAbsolute, 0x7D: modeAbsoluteX, 0x79: modeAbsoluteY, 0x61: modeIndexedIndirect, 0x71: modeIndirectIndexed} {
		def(code, "ADC", m, false, false)
	}
	for code, m := range map[uint8]mode{0xE9: modeImmediate, 0xEB: modeImmediate, 0xE5: modeZeroPage, 0xF5: modeZeroPageX, 0xED: modeAbsolute, 0xFD: modeAbsoluteX, 0xF9: modeAbsoluteY, 0xE1: modeIndexedIndirect, 0xF1: modeIndirectIndexed} {
		def(code, "SBC", m, false, false)
	}
	for code, m := range map[uint8]mode{0x29: modeImmediate, 0x25: modeZeroPage, 0x35: modeZeroPageX, 0x2D: modeAbsolute, 0x3D: modeAbsoluteX, 0x39: modeAbsoluteY, 0x21: modeIndexedIndirect, 0x31: modeIndirectIndexed} {
		def(code, "AND", m, false, false)
	}
	for code, m := range map[uint8]mode{0x49: modeImmediate, 0x45: modeZeroPage, 0x55: modeZeroPageX, 0x4D: modeAbsolute, 0x5D: modeAbsoluteX, 0x59: modeAbsoluteY, 0x41: modeIndexedIndirect, 0x51: modeIndirectIndexed} {
		def(code, "EOR", m, false, false)
	}
	for code, m := range map[uint8]mode{0x09: modeImmediate, 0x05: modeZeroPage, 0x15: modeZeroPageX, 0x0D: modeAbsolute, 0x1D: modeAbsoluteX, 0x19: modeAbsoluteY, 0x01: modeIndexedIndirect, 0x11: modeIndirectIndexed} {
		def(code, "ORA", m, false, false)
	}
	for code, m := range map[uint8]mode{0xC9: modeImmediate, 0xC5: modeZeroPage, 0xD5: modeZeroPageX, 0xCD: modeAbsolute, 0xDD: modeAbsoluteX, 0xD9: modeAbsoluteY, 0xC1: modeIndexedIndirect, 0xD1: modeIndirectIndexed} {
		def(code, "CMP", m, false, false)
	}
	def(0xE0, "CPX", modeImmediate, false, false)
	def(0xE4, "CPX", modeZeroPage, false, false)
	def(0xEC, "CPX", modeAbsolute, false, false)
	def(0xC0, "CPY", modeImmediate, false, false)
	def(0xC4, "CPY", modeZeroPage, false, false)
	def(0xCC, "CPY", modeAbsolute, false, false)
	def(0x24, "BIT", modeZeroPage, false, false)
	def(0x2C, "BIT", modeAbsolute, false, false)

	// Read-modify-write
	def(0x0A, "ASL", modeAccumulator, false, false)
	def(0x06, "ASL", modeZeroPage, true, false)
	def(0x16, "ASL", modeZeroPageX, true, false)
	def(0x0E, "ASL", modeAbsolute, true, false)
	def(0x1E, "ASL", modeAbsoluteX, true, false)

	def(0x4A, "LSR", modeAccumulator, false, false)
	def(0x46, "LSR", modeZeroPage, true, false)
	def(0x56, "LSR", modeZeroPageX, true, false)
	def(0x4E, "LSR", modeAbsolute, true, false)
	def(0x5E, "LSR", modeAbsoluteX, true, false)

	def(0x2A, "ROL", modeAccumulator, false, false)
	def(0x26, "ROL", modeZeroPage, true, false)
	def(0x36, "ROL", modeZeroPageX, true, false)
	def(0x2E, "ROL", modeAbsolute, true, false)
	def(0x3E, "ROL", modeAbsoluteX, true, false)

	def(0x6A, "ROR", modeAccumulator, false, false)
	def(0x66, "ROR", modeZeroPage, true, false)
	def(0x76, "ROR", modeZeroPageX, true, false)
	def(0x6E, "ROR", modeAbsolute, true, false)
	def(0x7E, "ROR", modeAbsoluteX, true, false)

	def(0xE6, "INC", modeZeroPage, true, false)
	def(0xF6, "INC", modeZeroPageX, true, false)
	def(0xEE, "INC", modeAbsolute, true, false)
	def(0xFE, "INC", modeAbsoluteX, true, false)
	def(0xC6, "DEC", modeZeroPage, true, false)
	def(0xD6, "DEC", modeZeroPageX, true, false)
	def(0xCE, "DEC", modeAbsolute, true, false)
	def(0xDE, "DEC", modeAbsoluteX, true, false)
	def(0xE8, "INX", modeImplied, false, false)
	def(0xC8, "INY", modeImplied, false, false)
	def(0xCA, "DEX", modeImplied, false, false)
	def(0x88, "DEY", modeImplied, false, false)

	// Flags
	def(0x18, "CLC", modeImplied, false, false)
	def(0x38, "SEC", modeImplied, false, false)
	def(0x58, "CLI", modeImplied, false, false)
	def(0x78, "SEI", modeImplied, false, false)
	def(0xB8, "CLV", modeImplied, false, false)
	def(0xD8, "CLD", modeImplied, false, false)
	def(0xF8, "SED", modeImplied, false, false)

	// Control flow
	def(0x4C, "JMP", modeAbsolute, false, false)
	def(0x6C, "JMP", modeIndirect, false, false)
	def(0x20, "JSR", modeAbsolute, false, false)
	def(0x60, "RTS", modeImplied, false, false)
	def(0x40, "RTI", modeImplied, false, false)
	def(0x00, "BRK", modeImplied, false, false)
	def(0x90, "BCC", modeRelative, false, false)
	def(0xB0, "BCS", modeRelative, false, false)
	def(0xF0, "BEQ", modeRelative, false, false)
	def(0x30, "BMI", modeRelative, false, false)
	def(0xD0, "BNE", modeRelative, false, false)
	def(0x10, "BPL", modeRelative, false, false)
	def(0x50, "BVC", modeRelative, false, false)
	def(0x70, "BVS", modeRelative, false, false)

	// NOP and its many undocumented addressing-mode variants
	def(0xEA, "NOP", modeImplied, false, false)
	for _, code := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		def(code, "NOP", modeImplied, false, false)
	}
	for _, code := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		def(code, "NOP", modeImmediate, false, false)
	}
	for _, code := range []uint8{0x04, 0x44, 0x64} {
		def(code, "NOP", modeZeroPage, false, false)
	}
	for _, code := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		def(code, "NOP", modeZeroPageX, false, false)
	}
	for _, code := range []uint8{0x0C} {
		def(code, "NOP", modeAbsolute, false, false)
	}
	for _, code := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		def(code, "NOP", modeAbsoluteX, false, false)
	}

	// Stable unofficial opcodes
	for code, m := range map[uint8]mode{0xA7: modeZeroPage, 0xB7: modeZeroPageY, 0xAF: modeAbsolute, 0xBF: modeAbsoluteY, 0xA3: modeIndexedIndirect, 0xB3: modeIndirectIndexed} {
		def(code, "LAX", m, false, false)
	}
	for code, m := range map[uint8]mode{0x87: modeZeroPage, 0x97: modeZeroPageY, 0x8F: modeAbsolute, 0x83: modeIndexedIndirect} {
		def(code, "SAX", m, false, true)
	}
	for code, m := range map[uint8]mode{0xC7: modeZeroPage, 0xD7: modeZeroPageX, 0xCF: modeAbsolute, 0xDF: modeAbsoluteX, 0xDB: modeAbsoluteY, 0xC3: modeIndexedIndirect, 0xD3: modeIndirectIndexed} {
		def(code, "DCP", m, true, false)
	}
	for code, m := range map[uint8]mode{0xE7: modeZeroPage, 0xF7: modeZeroPageX, 0xEF: modeAbsolute, 0xFF: modeAbsoluteX, 0xFB: modeAbsoluteY, 0xE3: modeIndexedIndirect, 0xF3: modeIndirectIndexed} {
		def(code, "ISB", m, true, false)
	}
	for code, m := range map[uint8]mode{0x07: modeZeroPage, 0x17: modeZeroPageX, 0x0F: modeAbsolute, 0x1F: modeAbsoluteX, 0x1B: modeAbsoluteY, 0x03: modeIndexedIndirect, 0x13: modeIndirectIndexed} {
		def(code, "SLO", m, true, false)
	}
	for code, m := range map[uint8]mode{0x27: modeZeroPage, 0x37: modeZeroPageX, 0x2F: modeAbsolute, 0x3F: modeAbsoluteX, 0x3B: modeAbsoluteY, 0x23: modeIndexedIndirect, 0x33: modeIndirectIndexed} {
		def(code, "RLA", m, true, false)
	}
	for code, m := range map[uint8]mode{0x47: modeZeroPage, 0x57: modeZeroPageX, 0x4F: modeAbsolute, 0x5F: modeAbsoluteX, 0x5B: modeAbsoluteY, 0x43: modeIndexedIndirect, 0x53: modeIndirectIndexed} {
		def(code, "SRE", m, true, false)
	}
	for code, m := range map[uint8]mode{0x67: modeZeroPage, 0x77: modeZeroPageX, 0x6F: modeAbsolute, 0x7F: modeAbsoluteX, 0x7B: modeAbsoluteY, 0x63: modeIndexedIndirect, 0x73: modeIndirectIndexed} {
		def(code, "RRA", m, true, false)
	}
	def(0x0B, "ANC", modeImmediate, false, false)
	def(0x2B, "ANC", modeImmediate, false, false)
	def(0x4B, "ALR", modeImmediate, false, false)
	def(0x6B, "ARR", modeImmediate, false, false)
	def(0xCB, "SBX", modeImmediate, false, false)

	for _, code := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		def(code, "JAM", modeImplied, false, false)
	}
}

// operand resolves the current opcode's addressing mode to an effective
// address, issuing exactly the bus accesses real hardware would. For
// modeImplied/modeAccumulator it performs the mandatory dummy read of
// the next instruction byte (without consuming it) that those one-byte
// instructions still spend a cycle on.
func (c *CPU) operand(o op) uint16 {
	switch o.mode {
	case modeImplied:
		c.read(c.PC) // dummy: 1-byte instructions still read the next byte
		return 0
	case modeAccumulator:
		c.read(c.PC)
		return 0
	case modeImmediate:
		addr := c.PC
		c.PC++
		return addr
	case modeZeroPage:
		return c.addrZeroPage()
	case modeZeroPageX:
		return c.addrZeroPageIndexed(c.X)
	case modeZeroPageY:
		return c.addrZeroPageIndexed(c.Y)
	case modeAbsolute:
		return c.addrAbsolute()
	case modeAbsoluteX:
		return c.addrAbsoluteIndexed(c.X, o.rmw || o.store)
	case modeAbsoluteY:
		return c.addrAbsoluteIndexed(c.Y, o.rmw || o.store)
	case modeIndirect:
		return c.addrIndirectJMP()
	case modeIndexedIndirect:
		return c.addrIndexedIndirect()
	case modeIndirectIndexed:
		return c.addrIndirectIndexed(o.rmw || o.store)
	case modeRelative:
		return 0 // handled specially by branch instructions
	default:
		return 0
	}
}

func (c *CPU) readModifyWrite(addr uint16, f func(uint8) uint8) uint8 {
	old := c.read(addr)
	c.write(addr, old) // dummy write-back of the unmodified value
	nv := f(old)
	c.write(addr, nv)
	return nv
}

func (c *CPU) execute(code uint8) {
	o := opcodes[code]
	if o.name == "" {
		if c.OnInvalidOpcode != nil {
			c.OnInvalidOpcode(c.PC-1, code)
		}
		c.halted = true
		return
	}

	if o.mode == modeRelative {
		c.branch(o.name)
		return
	}

	addr := c.operand(o)

	switch o.name {
	case "LDA":
		c.A = c.read(addr)
		c.setZN(c.A)
	case "LDX":
		c.X = c.read(addr)
		c.setZN(c.X)
	case "LDY":
		c.Y = c.read(addr)
		c.setZN(c.Y)
	case "STA":
		c.write(addr, c.A)
	case "STX":
		c.write(addr, c.X)
	case "STY":
		c.write(addr, c.Y)
	case "SAX":
		c.write(addr, c.A&c.X)
	case "TAX":
		c.X = c.A
		c.setZN(c.X)
	case "TAY":
		c.Y = c.A
		c.setZN(c.Y)
	case "TSX":
		c.X = c.SP
		c.setZN(c.X)
	case "TXA":
		c.A = c.X
		c.setZN(c.A)
	case "TXS":
		c.SP = c.X
	case "TYA":
		c.A = c.Y
		c.setZN(c.A)
	case "PHA":
		c.push(c.A)
	case "PHP":
		c.push(c.P | flagB | flagU)
	case "PLA":
		c.read(stackBase + uint16(c.SP)) // dummy read during SP increment cycle
		c.A = c.pop()
		c.setZN(c.A)
	case "PLP":
		c.read(stackBase + uint16(c.SP))
		c.P = (c.pop() &^ flagB) | flagU
	case "ADC":
		c.adc(c.read(addr))
	case "SBC":
		c.adc(^c.read(addr))
	case "AND":
		c.A &= c.read(addr)
		c.setZN(c.A)
	case "EOR":
		c.A ^= c.read(addr)
		c.setZN(c.A)
	case "ORA":
		c.A |= c.read(addr)
		c.setZN(c.A)
	case "CMP":
		c.compare(c.A, c.read(addr))
	case "CPX":
		c.compare(c.X, c.read(addr))
	case "CPY":
		c.compare(c.Y, c.read(addr))
	case "BIT":
		v := c.read(addr)
		c.setFlag(flagZ, c.A&v == 0)
		c.setFlag(flagV, v&flagV != 0)
		c.setFlag(flagN, v&flagN != 0)
	case "ASL":
		c.shiftLeft(addr, o.mode == modeAccumulator)
	case "LSR":
		c.shiftRight(addr, o.mode == modeAccumulator)
	case "ROL":
		c.rotateLeft(addr, o.mode == modeAccumulator)
	case "ROR":
		c.rotateRight(addr, o.mode == modeAccumulator)
	case "INC":
		c.readModifyWrite(addr, func(v uint8) uint8 { v++; c.setZN(v); return v })
	case "DEC":
		c.readModifyWrite(addr, func(v uint8) uint8 { v--; c.setZN(v); return v })
	case "INX":
		c.X++
		c.setZN(c.X)
	case "INY":
		c.Y++
		c.setZN(c.Y)
	case "DEX":
		c.X--
		c.setZN(c.X)
	case "DEY":
		c.Y--
		c.setZN(c.Y)
	case "CLC":
		c.setFlag(flagC, false)
	case "SEC":
		c.setFlag(flagC, true)
	case "CLI":
		c.setFlag(flagI, false)
	case "SEI":
		c.setFlag(flagI, true)
	case "CLV":
		c.setFlag(flagV, false)
	case "CLD":
		c.setFlag(flagD, false)
	case "SED":
		c.setFlag(flagD, true)
	case "JMP":
		c.PC = addr
	case "JSR":
		c.read(stackBase + uint16(c.SP)) // internal delay cycle
		ret := c.PC - 1
		c.push(uint8(ret >> 8))
		c.push(uint8(ret))
		c.PC = addr
	case "RTS":
		c.read(stackBase + uint16(c.SP))
		lo := uint16(c.pop())
		hi := uint16(c.pop())
		c.PC = hi<<8 | lo
		c.read(c.PC)
		c.PC++
	case "RTI":
		c.read(stackBase + uint16(c.SP))
		c.P = (c.pop() &^ flagB) | flagU
		lo := uint16(c.pop())
		hi := uint16(c.pop())
		c.PC = hi<<8 | lo
	case "BRK":
		c.PC++ // BRK's operand byte (a padding byte/break mark) is skipped
		c.serviceInterrupt(irqVector, true)
	case "NOP":
		if addr != 0 {
			c.read(addr)
		}
	case "LAX":
		c.A = c.read(addr)
		c.X = c.A
		c.setZN(c.A)
	case "DCP":
		v := c.readModifyWrite(addr, func(v uint8) uint8 { v--; return v })
		c.compare(c.A, v)
	case "ISB":
		v := c.readModifyWrite(addr, func(v uint8) uint8 { return v + 1 })
		c.adc(^v)
	case "SLO":
		v := c.readModifyWrite(addr, func(v uint8) uint8 {
			c.setFlag(flagC, v&0x80 != 0)
			return v << 1
		})
		c.A |= v
		c.setZN(c.A)
	case "RLA":
		v := c.readModifyWrite(addr, func(v uint8) uint8 {
			carryIn := uint8(0)
			if c.getFlag(flagC) {
				carryIn = 1
			}
			c.setFlag(flagC, v&0x80 != 0)
			return v<<1 | carryIn
		})
		c.A &= v
		c.setZN(c.A)
	case "SRE":
		v := c.readModifyWrite(addr, func(v uint8) uint8 {
			c.setFlag(flagC, v&0x01 != 0)
			return v >> 1
		})
		c.A ^= v
		c.setZN(c.A)
	case "RRA":
		v := c.readModifyWrite(addr, func(v uint8) uint8 {
			carryIn := uint8(0)
			if c.getFlag(flagC) {
				carryIn = 0x80
			}
			c.setFlag(flagC, v&0x01 != 0)
			return v>>1 | carryIn
		})
		c.adc(v)
	case "ANC":
		c.A &= c.read(addr)
		c.setZN(c.A)
		c.setFlag(flagC, c.A&0x80 != 0)
	case "ALR":
		c.A &= c.read(addr)
		c.setFlag(flagC, c.A&0x01 != 0)
		c.A >>= 1
		c.setZN(c.A)
	case "ARR":
		c.A &= c.read(addr)
		carryIn := uint8(0)
		if c.getFlag(flagC) {
			carryIn = 0x80
		}
		c.A = c.A>>1 | carryIn
		c.setZN(c.A)
		c.setFlag(flagC, c.A&0x40 != 0)
		c.setFlag(flagV, (c.A>>6)&1^(c.A>>5)&1 != 0)
	case "SBX":
		v := c.read(addr)
		result := (c.A & c.X) - v
		c.setFlag(flagC, c.A&c.X >= v)
		c.X = result
		c.setZN(c.X)
	case "JAM":
		c.halted = true
	}
}

func (c *CPU) adc(operand uint8) {
	sum := uint16(c.A) + uint16(operand)
	if c.getFlag(flagC) {
		sum++
	}
	result := uint8(sum)
	c.setFlag(flagC, sum > 0xFF)
	c.setFlag(flagV, (c.A^result)&(operand^result)&0x80 != 0)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) compare(reg, v uint8) {
	c.setFlag(flagC, reg >= v)
	c.setZN(reg - v)
}

func (c *CPU) shiftLeft(addr uint16, accum bool) {
	if accum {
		c.setFlag(flagC, c.A&0x80 != 0)
		c.A <<= 1
		c.setZN(c.A)
		return
	}
	c.readModifyWrite(addr, func(v uint8) uint8 {
		c.setFlag(flagC, v&0x80 != 0)
		v <<= 1
		c.setZN(v)
		return v
	})
}

func (c *CPU) shiftRight(addr uint16, accum bool) {
	if accum {
		c.setFlag(flagC, c.A&0x01 != 0)
		c.A >>= 1
		c.setZN(c.A)
		return
	}
	c.readModifyWrite(addr, func(v uint8) uint8 {
		c.setFlag(flagC, v&0x01 != 0)
		v >>= 1
		c.setZN(v)
		return v
	})
}

func (c *CPU) rotateLeft(addr uint16, accum bool) {
	carryIn := uint8(0)
	if c.getFlag(flagC) {
		carryIn = 1
	}
	if accum {
		c.setFlag(flagC, c.A&0x80 != 0)
		c.A = c.A<<1 | carryIn
		c.setZN(c.A)
		return
	}
	c.readModifyWrite(addr, func(v uint8) uint8 {
		c.setFlag(flagC, v&0x80 != 0)
		v = v<<1 | carryIn
		c.setZN(v)
		return v
	})
}

func (c *CPU) rotateRight(addr uint16, accum bool) {
	carryIn := uint8(0)
	if c.getFlag(flagC) {
		carryIn = 0x80
	}
	if accum {
		c.setFlag(flagC, c.A&0x01 != 0)
		c.A = c.A>>1 | carryIn
		c.setZN(c.A)
		return
	}
	c.readModifyWrite(addr, func(v uint8) uint8 {
		c.setFlag(flagC, v&0x01 != 0)
		v = v>>1 | carryIn
		c.setZN(v)
		return v
	})
}

// branch handles all eight conditional branches, including the extra
// cycle paid when the branch is taken and the further extra cycle paid
// only when taking it crosses a page boundary.
func (c *CPU) branch(name string) {
	offset := c.fetchRelative()
	taken := false
	switch name {
	case "BCC":
		taken = !c.getFlag(flagC)
	case "BCS":
		taken = c.getFlag(flagC)
	case "BEQ":
		taken = c.getFlag(flagZ)
	case "BNE":
		taken = !c.getFlag(flagZ)
	case "BMI":
		taken = c.getFlag(flagN)
	case "BPL":
		taken = !c.getFlag(flagN)
	case "BVC":
		taken = !c.getFlag(flagV)
	case "BVS":
		taken = c.getFlag(flagV)
	}
	if !taken {
		return
	}
	c.read(c.PC) // dummy read: the branch-taken internal cycle
	target := uint16(int32(c.PC) + int32(offset))
	if target&0xFF00 != c.PC&0xFF00 {
		c.read((c.PC & 0xFF00) | (target & 0x00FF)) // page-cross penalty
	}
	c.PC = target
}
