// Copyright 2020 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regs holds the register and RAM address maps of ProSLIC chips.
package regs // import "github.com/go-lpc/proslic/slic/internal/regs"

import "fmt"

// Common registers shared by all ProSLIC variants.
const (
	ID          = 0x00
	RESET       = 0x01
	MSTREN      = 0x02
	MSTRSTAT    = 0x03
	RAM_STAT    = 0x04
	RAM_ADDR_HI = 0x05
	RAM_D0      = 0x06
	RAM_D1      = 0x07
	RAM_D2      = 0x08
	RAM_D3      = 0x09
	RAM_ADDR_LO = 0x0A
	PCMMODE     = 0x0B
	PCMTXLO     = 0x0C
	PCMTXHI     = 0x0D
	PCMRXLO     = 0x0E
	PCMRXHI     = 0x0F
	IRQ         = 0x10
	IRQ0        = 0x11
	IRQ1        = 0x12
	IRQ2        = 0x13
	IRQ3        = 0x14
	IRQ4        = 0x15
	IRQEN1      = 0x16
	IRQEN2      = 0x17
	IRQEN3      = 0x18
	IRQEN4      = 0x19
	CALR0       = 0x1A
	CALR1       = 0x1B
	CALR2       = 0x1C
	CALR3       = 0x1D
	LINEFEED    = 0x1E
	POLREV      = 0x1F
	LCRRTP      = 0x22
	RINGCON     = 0x26
	RINGTALO    = 0x27
	RINGTAHI    = 0x28
	RINGTILO    = 0x29
	RINGTIHI    = 0x2A
	LOOPBACK    = 0x2B
	DIGCON      = 0x2C
	RA          = 0x2D
	ZCAL_EN     = 0x2E
	ENHANCE     = 0x2F
	USERSTAT    = 0x42
	OCON44      = 0x44
	PMCON       = 0x4B
	AUTO        = 0x50
	JMPEN       = 0x51
	JMP0LO      = 0x52
	PDN         = 0x62
	PDN_STAT    = 0x63
	USERMODE    = 0x7E
)

// NumJumpRegs is the number of jump-table registers starting at JMP0LO.
const NumJumpRegs = 16

// RAM locations.
const (
	RAM_MADC_VBAT     = 0x003
	RAM_BLOB_ID       = 0x1C0
	RAM_TEST_IO       = 0x1C1
	RAM_VBAT_TARGET   = 0x2FF
	RAM_BLOB_DATA_PTR = 1358
	RAM_BLOB_DATA     = 1359
	RAM_DCDC_CTRL     = 0x602
	RAM_JMP_TABLE2    = 0x63D
)

// NumJumpRAMs is the number of RAM jump-table words starting at RAM_JMP_TABLE2.
const NumJumpRAMs = 8

// IRQ1 bits.
const (
	IRQ1_OSC1_T1      = 1 << 0
	IRQ1_OSC1_T2      = 1 << 1
	IRQ1_OSC2_T1      = 1 << 2
	IRQ1_OSC2_T2      = 1 << 3
	IRQ1_RING_T1      = 1 << 4
	IRQ1_RING_T2      = 1 << 5
	IRQ1_FSKBUF_AVAIL = 1 << 6
	IRQ1_VBAT         = 1 << 7
)

// IRQ2 bits.
const (
	IRQ2_RING_TRIP   = 1 << 0
	IRQ2_LOOP_STATUS = 1 << 1
	IRQ2_LONG_STAT   = 1 << 2
	IRQ2_VOC_TRACK   = 1 << 3
	IRQ2_DTMF        = 1 << 4
	IRQ2_INDIRECT    = 1 << 5
	IRQ2_RXMDM       = 1 << 6
	IRQ2_TXMDM       = 1 << 7
)

// IRQ3 bits.
const (
	IRQ3_P_HVIC  = 1 << 0
	IRQ3_P_THERM = 1 << 1
	IRQ3_PQ3     = 1 << 2
	IRQ3_PQ4     = 1 << 3
	IRQ3_PQ5     = 1 << 4
	IRQ3_PQ6     = 1 << 5
	IRQ3_DSP     = 1 << 6
	IRQ3_MADC_FS = 1 << 7
)

var regNames = map[uint8]string{
	ID:          "ID",
	RESET:       "RESET",
	MSTREN:      "MSTREN",
	MSTRSTAT:    "MSTRSTAT",
	RAM_STAT:    "RAM_STAT",
	RAM_ADDR_HI: "RAM_ADDR_HI",
	RAM_D0:      "RAM_D0",
	RAM_D1:      "RAM_D1",
	RAM_D2:      "RAM_D2",
	RAM_D3:      "RAM_D3",
	RAM_ADDR_LO: "RAM_ADDR_LO",
	PCMMODE:     "PCMMODE",
	PCMTXLO:     "PCMTXLO",
	PCMTXHI:     "PCMTXHI",
	PCMRXLO:     "PCMRXLO",
	PCMRXHI:     "PCMRXHI",
	IRQ:         "IRQ",
	IRQ0:        "IRQ0",
	IRQ1:        "IRQ1",
	IRQ2:        "IRQ2",
	IRQ3:        "IRQ3",
	IRQ4:        "IRQ4",
	IRQEN1:      "IRQEN1",
	IRQEN2:      "IRQEN2",
	IRQEN3:      "IRQEN3",
	IRQEN4:      "IRQEN4",
	CALR0:       "CALR0",
	CALR1:       "CALR1",
	CALR2:       "CALR2",
	CALR3:       "CALR3",
	LINEFEED:    "LINEFEED",
	POLREV:      "POLREV",
	LCRRTP:      "LCRRTP",
	RINGCON:     "RINGCON",
	RINGTALO:    "RINGTALO",
	RINGTAHI:    "RINGTAHI",
	RINGTILO:    "RINGTILO",
	RINGTIHI:    "RINGTIHI",
	LOOPBACK:    "LOOPBACK",
	DIGCON:      "DIGCON",
	RA:          "RA",
	ZCAL_EN:     "ZCAL_EN",
	ENHANCE:     "ENHANCE",
	USERSTAT:    "USERSTAT",
	PMCON:       "PMCON",
	AUTO:        "AUTO",
	JMPEN:       "JMPEN",
	PDN:         "PDN",
	PDN_STAT:    "PDN_STAT",
	USERMODE:    "USERMODE",
}

var ramNames = map[uint16]string{
	RAM_MADC_VBAT:     "MADC_VBAT",
	RAM_BLOB_ID:       "BLOB_ID",
	RAM_TEST_IO:       "TEST_IO",
	RAM_VBAT_TARGET:   "VBAT_TARGET",
	RAM_BLOB_DATA_PTR: "BLOB_DATA_PTR",
	RAM_BLOB_DATA:     "BLOB_DATA",
	RAM_DCDC_CTRL:     "DCDC_CTRL",
}

// Name returns the symbolic name of a register.
func Name(reg uint8) string {
	if name, ok := regNames[reg]; ok {
		return name
	}
	if reg >= JMP0LO && reg < JMP0LO+NumJumpRegs {
		i := reg - JMP0LO
		hl := "LO"
		if i%2 == 1 {
			hl = "HI"
		}
		return fmt.Sprintf("JMP%d%s", i/2, hl)
	}
	return fmt.Sprintf("REG_0x%02x", reg)
}

// RAMName returns the symbolic name of a RAM location.
func RAMName(addr uint16) string {
	if name, ok := ramNames[addr]; ok {
		return name
	}
	if addr >= RAM_JMP_TABLE2 && addr < RAM_JMP_TABLE2+NumJumpRAMs {
		return fmt.Sprintf("JMP_TABLE2_%d", addr-RAM_JMP_TABLE2)
	}
	return fmt.Sprintf("RAM_0x%03x", addr)
}
