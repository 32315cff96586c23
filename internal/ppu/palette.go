package ppu

// Palette is the 2C02's fixed 64-entry RGB palette (the commonly used
// "2C02" reference LUT), indexed by the 6-bit value FrameBuffer stores
// per pixel. Packed as 0x00RRGGBB for direct use by a front end's pixel
// buffer.
var Palette = [64]uint32{
	0x626262, 0x001fb2, 0x2404c8, 0x5200b2,
	0x730076, 0x800024, 0x730b00, 0x522800,
	0x244400, 0x005700, 0x005c00, 0x005324,
	0x003c76, 0x000000, 0x000000, 0x000000,
	0xababab, 0x0d57ff, 0x4b30ff, 0x8a13ff,
	0xbc08d6, 0xd21269, 0xc72e00, 0x9d5400,
	0x607b00, 0x209800, 0x00a300, 0x009942,
	0x00799d, 0x000000, 0x000000, 0x000000,
	0xffffff, 0x53aeff, 0x9085ff, 0xd365ff,
	0xff57ff, 0xff5dcf, 0xff7757, 0xfa9e00,
	0xbdc700, 0x7ae700, 0x43f611, 0x26ef7e,
	0x2cd5f6, 0x4e4e4e, 0x000000, 0x000000,
	0xffffff, 0xb6e1ff, 0xced1ff, 0xe9c3ff,
	0xffbcff, 0xffbdf4, 0xffc6c3, 0xffd59a,
	0xe8e681, 0xcef481, 0xb6fb9a, 0xa9fac3,
	0xa9f0f4, 0xb8b8b8, 0x000000, 0x000000,
}
