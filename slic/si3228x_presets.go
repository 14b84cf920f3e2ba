// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slic

// RAM presets of the Si3228x, as captured from a running Si32282 board.

// si3228xGeneral is the general purpose configuration, written before the power-down register.
var si3228xGeneral = []RAMValue{
	{0x2fc, 0xad000},
	{0x300, 0x6666635},
	{0x2ff, 0x3d70a20},
	{0x393, 0xfff0000},
	{0x394, 0x1999a00},
	{0x397, 0xf00000},
	{0x398, 0xf00000},
	{0x3ca, 0x800000},
	{0x3ec, 0xf18900},
	{0x3ed, 0x809d80},
	{0x3ee, 0x0},
	{0x3ef, 0x1a00000},
	{0x604, 0x400000},
	{0x605, 0x400000},
	{0x606, 0x200000},
	{0x609, 0x500000},
	{0x60a, 0x0},
	{0x60b, 0xa00000},
	{0x612, 0x0},
	{0x616, 0x0},
	{0x618, 0x200000},
	{0x631, 0x300000},
	{0x632, 0x180000},
	{0x633, 0x100000},
	{0x634, 0x12fc000},
	{0x635, 0xf00000},
	{0x636, 0xfda4000},
	{0x2f7, 0x7feb800},
	{0x2f4, 0x5b05b2},
	{0x3c7, 0x3a2e8ba},
	{0x3fa, 0x3000000},
	{0x3f9, 0x5000000},
	{0x3f5, 0x1000000},
	{0x3f4, 0x3700000},
	{0x3f3, 0x4b80200},
	{0x3f2, 0x823000},
}

// si3228xGeneral2 follows the power-down register write.
var si3228xGeneral2 = []RAMValue{
	{0x215, 0x71eb851},
	{0x272, 0x723f235},
	{0x273, 0x57a9804},
	{0x396, 0x36000},
	{0x650, 0x1100000},
	{0x3cd, 0xffffff},
	{0x3ce, 0xa18937},
	{0x3cf, 0xe49ba5},
	{0x204, 0x10038d},
	{0x201, 0x4eddb9},
	{0x202, 0x806d6},
	{0x205, 0x10059f},
	{0x2c4, 0xf0000},
	{0x2c5, 0x106240},
}

// si3228xGeneral3 follows the RAM 0x627 fix-up.
var si3228xGeneral3 = []RAMValue{
	{0x669, 0x200000},
	{0x66b, 0x0},
	{0x61d, 0xc00000},
	{0x2ee, 0x206280},
	{0x663, 0x0},
	{0x3cb, 0x1f00000},
	{0x3cc, 0x51eb80},
	{0x611, 0x0},
	{0x35c, 0xa00000},
}

// si3228xDCFeed is the DC feed preset.
var si3228xDCFeed = []RAMValue{
	{0x27a, 0x1d999d52},
	{0x27b, 0x1f26f6a1},
	{0x27c, 0x40a0e0},
	{0x27e, 0x1ad888e8},
	{0x27f, 0x1cfbde56},
	{0x280, 0x5dfabcb},
	{0x281, 0x50d2839},
	{0x282, 0x3fe7f0f},
	{0x283, 0xf7a560},
	{0x284, 0x6b0532},
	{0x285, 0x2f737c},
	{0x355, 0x5b0afb},
	{0x354, 0x6d4060},
	{0x2bd, 0x8000},
	{0x35a, 0x48d595},
	{0x35b, 0x3fbae2},
	{0x2be, 0x8000},
	{0x356, 0xf0000},
	{0x357, 0x80000},
	{0x358, 0x140000},
	{0x359, 0x140000},
	{0x2ec, 0x1ba5e35},
	{0x2f0, 0x51eb85},
	{0x2ef, 0x415f45},
}

// si3228xRinger is the ringing preset, written before the ring timers.
var si3228xRinger = []RAMValue{
	{0x2f3, 0x40000},
	{0x34c, 0x7e6c000},
	{0x34d, 0x27f1a3},
	{0x34e, 0x0},
	{0x34b, 0x0},
	{0x27d, 0x15e5200e},
	{0x35c, 0x6c94d6},
	{0x350, 0x614e73},
	{0x34f, 0xfffffff},
	{0x352, 0x8000},
	{0x351, 0x8000},
	{0x2f1, 0x51eb82},
	{0x380, 0x0},
	{0x300, 0x59cda16},
}

// si3228xRinger2 follows the ring control registers.
var si3228xRinger2 = []RAMValue{
	{0x2ed, 0x2ce6d0b},
	{0x1e2, 0x2ce6d0b},
	{0x1e3, 0x3126e8},
}

// si3228xRinger3 is written in user mode.
var si3228xRinger3 = []RAMValue{
	{0x618, 0x200000},
	{0x1b2, 0x0},
}

// si3228xZsynthTBR21 holds the impedance synthesis filters for a TBR21 termination.
var si3228xZsynthTBR21 = []RAMValue{
	{0x21c, 0x750e500},
	{0x21d, 0x1fc70280},
	{0x21e, 0xba980},
	{0x21f, 0x1ffd2880},
	{0x222, 0xa8e2380},
	{0x223, 0x1b905280},
	{0x224, 0x847700},
	{0x225, 0x1fdafa00},
	{0x233, 0x2c8880},
	{0x234, 0x1f630d80},
	{0x235, 0x27f7980},
	{0x236, 0x1f3ad200},
	{0x237, 0x40b8680},
	{0x238, 0x1f414d00},
	{0x239, 0x1427b00},
	{0x23a, 0x208200},
	{0x23b, 0x26ae00},
	{0x23c, 0x1fd71680},
	{0x23d, 0xc8edb00},
	{0x23e, 0x1b688a00},
	{0x290, 0xd7fe800},
	{0x291, 0x1a7f1a80},
	{0x28e, 0x96fe00},
	{0x28d, 0x1f657980},
	{0x28f, 0x35500},
}

// si3228xZsynthTBR21Gain holds the gains and the trimmed coefficients of a TBR21 termination.
var si3228xZsynthTBR21Gain = []RAMValue{
	{0x220, 0x8000000},
	{0x38a, 0x1106b80},
	{0x221, 0x1106b80},
	{0x292, 0x7bc8400},
	{0x293, 0x18437c80},
	{0x294, 0x7790880},
	{0x220, 0x7fffd28},
	{0x21c, 0x750e4f0},
	{0x21d, 0x1fc70610},
	{0x21e, 0xba860},
	{0x21f, 0x1ffd2970},
	{0x38a, 0x1106a48},
	{0x221, 0x1106a48},
	{0x222, 0xa8e2218},
	{0x223, 0x1b905588},
	{0x224, 0x847628},
	{0x225, 0x1fdafb70},
}

// si3228xPCM holds the audio path filters.
var si3228xPCM = []RAMValue{
	{0x206, 0x3538e80},
	{0x207, 0x3538e80},
	{0x208, 0x1aa9100},
	{0x209, 0x216d100},
	{0x20a, 0x2505400},
	{0x20b, 0x216d100},
	{0x20c, 0x2cb8100},
	{0x20d, 0x1d7fa500},
	{0x20e, 0x2cd9b00},
	{0x20f, 0x1276d00},
	{0x210, 0x2cd9b00},
	{0x211, 0x2335300},
	{0x212, 0x19d5f700},
	{0x226, 0x6a71d00},
	{0x227, 0x6a71d00},
	{0x228, 0x1aa9100},
	{0x229, 0x216d100},
	{0x22a, 0x2505400},
	{0x22b, 0x216d100},
	{0x22c, 0x2cb8100},
	{0x22d, 0x1d7fa500},
	{0x22e, 0x2cd9b00},
	{0x22f, 0x1276d00},
	{0x230, 0x2cd9b00},
	{0x231, 0x2335300},
	{0x232, 0x19d5f700},
}
