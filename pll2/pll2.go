// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package pll2 drives the Allwinner A10 audio PLL.
//
// One 32 bit register holds an enable bit and three rate fields: a 5 bit
// pre-divider, a 7 bit multiplier and a 4 bit post-divider. The hardware
// exposes four taps off that register:
//
//	1x	parent * N / P / S, the gated fundamental output
//	8x	parent * 2 * N / P, the raw oscillation, no post-divider
//	4x	half of 8x
//	2x	a quarter of 8x
//
// Only the 1x tap commits register writes; the other taps translate rates
// and leave the commit to whatever feeds their parent.
package pll2

import (
	"errors"
	"fmt"

	"github.com/platinasystems/clk/hw"
)

const (
	EnableBit = 31

	postDivShift = 26
	postDivMask  = 0xf
	nShift       = 8
	nMask        = 0x7f
	preDivShift  = 0
	preDivMask   = 0x1f
)

// The only two rates the audio PLL locks on reliably, 512 times the
// 44.1 kHz and 48 kHz sample rate families.
const (
	Rate44K1 = 22579200
	Rate48K  = 24576000
)

// Field values for the two supported rates.
const (
	preDiv  = 21
	postDiv = 4
	n44K1   = 79
	n48K    = 86
)

var ErrUnsupportedRate = errors.New("pll2: unsupported rate")

// FieldError reports a value that won't fit its register field.
type FieldError struct {
	Field string
	Value uint32
	Mask  uint32
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("pll2: %s value %#x exceeds field mask %#x",
		e.Field, e.Value, e.Mask)
}

// effective applies the hardware convention that a stored field value of 0
// means 1. Decode only; stored bits are never rewritten.
func effective(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	return v
}

func decode(val uint32) (n, prediv, postdiv uint32) {
	n = effective((val >> nShift) & nMask)
	prediv = effective((val >> preDivShift) & preDivMask)
	postdiv = effective((val >> postDivShift) & postDivMask)
	return
}

// encodeFields clears the three rate fields of val and ORs in the given
// values. The enable bit and reserved bits pass through untouched.
func encodeFields(val, n, prediv, postdiv uint32) (uint32, error) {
	if n&^uint32(nMask) != 0 {
		return 0, &FieldError{"n", n, nMask}
	}
	if prediv&^uint32(preDivMask) != 0 {
		return 0, &FieldError{"pre-div", prediv, preDivMask}
	}
	if postdiv&^uint32(postDivMask) != 0 {
		return 0, &FieldError{"post-div", postdiv, postDivMask}
	}
	val &^= nMask << nShift
	val &^= preDivMask << preDivShift
	val &^= postDivMask << postDivShift
	val |= n << nShift
	val |= prediv << preDivShift
	val |= postdiv << postDivShift
	return val, nil
}

// Pll owns the PLL2 control register. It provides no locking; serialize
// concurrent rate changes externally.
type Pll struct {
	reg hw.Reg32
}

func New(reg hw.Reg32) *Pll { return &Pll{reg: reg} }

func (p *Pll) X1() *X1 { return &X1{p} }
func (p *Pll) X2() *X2 { return &X2{p} }
func (p *Pll) X4() *X4 { return &X4{p} }
func (p *Pll) X8() *X8 { return &X8{p} }

// X1 is the fundamental output and the only view with commit authority.
type X1 struct {
	p *Pll
}

func (v *X1) RecalcRate(parentRate uint64) uint64 {
	n, prediv, postdiv := decode(v.p.reg.Get())
	return parentRate * uint64(n) / uint64(prediv) / uint64(postdiv)
}

// RoundRate snaps to the nearest of the two supported rates. Requests below
// the lower checkpoint are unsupported; requests above the upper checkpoint,
// however large, snap down to it.
func (v *X1) RoundRate(rate uint64) (uint64, uint64, error) {
	if rate < Rate44K1 {
		return 0, 0, ErrUnsupportedRate
	}
	if rate < Rate48K {
		return Rate44K1, 0, nil
	}
	return Rate48K, 0, nil
}

// SetRate commits the multiplier for one of the two supported rates with the
// fixed pre- and post-dividers, in a single read-modify-write. On error the
// register is left untouched.
func (v *X1) SetRate(rate, parentRate uint64) error {
	var n uint32

	switch rate {
	case Rate44K1:
		n = n44K1
	case Rate48K:
		n = n48K
	default:
		return ErrUnsupportedRate
	}

	val, err := encodeFields(v.p.reg.Get(), n, preDiv, postDiv)
	if err != nil {
		return err
	}
	v.p.reg.Set(val)
	return nil
}

// X8 is the raw doubled oscillation before post-division.
type X8 struct {
	p *Pll
}

func (v *X8) RecalcRate(parentRate uint64) uint64 {
	n, prediv, _ := decode(v.p.reg.Get())
	return parentRate * 2 * uint64(n) / uint64(prediv)
}

// RoundRate accepts any rate and reports the parent rate it would take:
// times 4 to undo the post-divider of the usable configurations, halved to
// undo the doubling.
func (v *X8) RoundRate(rate uint64) (uint64, uint64, error) {
	return rate, rate * 4 / 2, nil
}

// X4 is half the 8x rate.
type X4 struct {
	p *Pll
}

func (v *X4) RecalcRate(parentRate uint64) uint64 {
	return (&X8{v.p}).RecalcRate(parentRate / 2)
}

func (v *X4) RoundRate(rate uint64) (uint64, uint64, error) {
	return (&X8{v.p}).RoundRate(rate * 2)
}

// X2 is a quarter of the 8x rate.
type X2 struct {
	p *Pll
}

func (v *X2) RecalcRate(parentRate uint64) uint64 {
	return (&X8{v.p}).RecalcRate(parentRate / 4)
}

func (v *X2) RoundRate(rate uint64) (uint64, uint64, error) {
	return (&X8{v.p}).RoundRate(rate * 4)
}
