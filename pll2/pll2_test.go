// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package pll2

import (
	"math"
	"math/rand"
	"testing"

	"github.com/platinasystems/clk/hw"
)

const fieldBits = nMask<<nShift | preDivMask<<preDivShift |
	postDivMask<<postDivShift

func TestEncodePreservesOtherBits(t *testing.T) {
	for i := 0; i < 10000; i++ {
		raw := rand.Uint32()
		n, prediv, postdiv := (raw>>nShift)&nMask,
			(raw>>preDivShift)&preDivMask,
			(raw>>postDivShift)&postDivMask
		got, err := encodeFields(raw, n, prediv, postdiv)
		if err != nil {
			t.Fatal(err)
		}
		if got != raw {
			t.Fatalf("%#x != %#x", got, raw)
		}
		// and with different field values, bits outside the
		// fields still round trip
		got, err = encodeFields(raw, n44K1, preDiv, postDiv)
		if err != nil {
			t.Fatal(err)
		}
		if got&^uint32(fieldBits) != raw&^uint32(fieldBits) {
			t.Fatalf("non-field bits %#x != %#x",
				got&^uint32(fieldBits), raw&^uint32(fieldBits))
		}
	}
}

func TestEncodeRange(t *testing.T) {
	for _, x := range []struct{ n, prediv, postdiv uint32 }{
		{nMask + 1, preDiv, postDiv},
		{n44K1, preDivMask + 1, postDiv},
		{n44K1, preDiv, postDivMask + 1},
	} {
		_, err := encodeFields(0, x.n, x.prediv, x.postdiv)
		if err == nil {
			t.Errorf("%v: no error", x)
		} else if _, ok := err.(*FieldError); !ok {
			t.Errorf("%v: %T not a FieldError", x, err)
		}
	}
}

func TestDecodeZeroMeansOne(t *testing.T) {
	n, prediv, postdiv := decode(0)
	if n != 1 || prediv != 1 || postdiv != 1 {
		t.Errorf("got %d %d %d, want 1 1 1", n, prediv, postdiv)
	}
	// zero substitution is per field
	n, prediv, postdiv = decode(n44K1 << nShift)
	if n != n44K1 || prediv != 1 || postdiv != 1 {
		t.Errorf("got %d %d %d, want %d 1 1", n, prediv, postdiv,
			n44K1)
	}
}

func TestDecodeNeverRewritesStoredBits(t *testing.T) {
	var reg hw.Word
	p := New(&reg)
	p.X1().RecalcRate(24000000)
	if got := reg.Get(); got != 0 {
		t.Errorf("decode wrote %#x to the register", got)
	}
}

func TestX1RoundRate(t *testing.T) {
	v := New(new(hw.Word)).X1()
	for _, x := range []struct {
		rate uint64
		want uint64
		err  error
	}{
		{0, 0, ErrUnsupportedRate},
		{Rate44K1 - 1, 0, ErrUnsupportedRate},
		{Rate44K1, Rate44K1, nil},
		{Rate48K - 1, Rate44K1, nil},
		{Rate48K, Rate48K, nil},
		{Rate48K + 1, Rate48K, nil},
		// requests far above the upper checkpoint still snap
		// down to it rather than fail
		{math.MaxUint64, Rate48K, nil},
	} {
		got, _, err := v.RoundRate(x.rate)
		if err != x.err {
			t.Errorf("%d: error %v, want %v", x.rate, err, x.err)
		} else if got != x.want {
			t.Errorf("%d: %d != %d", x.rate, got, x.want)
		}
	}
}

func TestX1SetRate(t *testing.T) {
	reg := hw.Word(1<<EnableBit | 1<<30) // enable plus a reserved bit
	p := New(&reg)
	v := p.X1()

	if err := v.SetRate(Rate44K1, 24000000); err != nil {
		t.Fatal(err)
	}
	want := uint32(1<<EnableBit | 1<<30 | n44K1<<nShift |
		preDiv<<preDivShift | postDiv<<postDivShift)
	if got := reg.Get(); got != want {
		t.Fatalf("%#x != %#x", got, want)
	}

	if err := v.SetRate(Rate48K, 24000000); err != nil {
		t.Fatal(err)
	}
	want = 1<<EnableBit | 1<<30 | n48K<<nShift |
		preDiv<<preDivShift | postDiv<<postDivShift
	if got := reg.Get(); got != want {
		t.Fatalf("%#x != %#x", got, want)
	}
}

func TestX1SetRateUnsupportedLeavesRegister(t *testing.T) {
	reg := hw.Word(0xdeadbeef)
	v := New(&reg).X1()
	for _, rate := range []uint64{0, 1, Rate44K1 - 1, Rate44K1 + 1,
		Rate48K + 1, 44100, 48000} {
		if err := v.SetRate(rate, 24000000); err != ErrUnsupportedRate {
			t.Errorf("%d: error %v, want %v", rate, err,
				ErrUnsupportedRate)
		}
		if got := reg.Get(); got != 0xdeadbeef {
			t.Fatalf("%d: register changed to %#x", rate, got)
		}
	}
}

func TestX1RecalcRate(t *testing.T) {
	var reg hw.Word
	p := New(&reg)
	v := p.X1()

	if err := v.SetRate(Rate44K1, 0); err != nil {
		t.Fatal(err)
	}
	// parent * 79 / 21 / 4, integer division truncating at each step
	if got, want := v.RecalcRate(24000000), uint64(22571428); got != want {
		t.Errorf("%d != %d", got, want)
	}

	if err := v.SetRate(Rate48K, 0); err != nil {
		t.Fatal(err)
	}
	if got, want := v.RecalcRate(24000000), uint64(24571428); got != want {
		t.Errorf("%d != %d", got, want)
	}
	// the nominal rate fed back as parent does not reproduce itself;
	// integer truncation, not idealized arithmetic
	if got, want := v.RecalcRate(Rate48K), uint64(25161142); got != want {
		t.Errorf("%d != %d", got, want)
	}
}

func TestX8RecalcRate(t *testing.T) {
	var reg hw.Word
	p := New(&reg)
	if err := p.X1().SetRate(Rate44K1, 0); err != nil {
		t.Fatal(err)
	}
	// parent * 2 * 79 / 21, no post-divider
	if got, want := p.X8().RecalcRate(24000000), uint64(180571428); got != want {
		t.Errorf("%d != %d", got, want)
	}
}

func TestX8RoundRatePassesThrough(t *testing.T) {
	v := New(new(hw.Word)).X8()
	for _, rate := range []uint64{0, 1, 44100, Rate44K1, Rate48K,
		1000000000} {
		got, parent, err := v.RoundRate(rate)
		if err != nil {
			t.Fatal(err)
		}
		if got != rate {
			t.Errorf("%d: rounded to %d", rate, got)
		}
		if want := rate * 4 / 2; parent != want {
			t.Errorf("%d: parent %d != %d", rate, parent, want)
		}
	}
}

func TestDerivedViewsTrackX8(t *testing.T) {
	var reg hw.Word
	p := New(&reg)
	if err := p.X1().SetRate(Rate48K, 0); err != nil {
		t.Fatal(err)
	}
	for _, parent := range []uint64{0, 1, 3, 24000000, 24000001,
		Rate44K1, Rate48K} {
		if got, want := p.X4().RecalcRate(parent),
			p.X8().RecalcRate(parent/2); got != want {
			t.Errorf("4x(%d): %d != %d", parent, got, want)
		}
		if got, want := p.X2().RecalcRate(parent),
			p.X8().RecalcRate(parent/4); got != want {
			t.Errorf("2x(%d): %d != %d", parent, got, want)
		}
	}
	for _, rate := range []uint64{1, 44100, Rate44K1 / 4, 6000000} {
		got, parent, err := p.X4().RoundRate(rate)
		if err != nil {
			t.Fatal(err)
		}
		if want := rate * 2; got != want {
			t.Errorf("4x round %d: %d != %d", rate, got, want)
		}
		if want := rate * 2 * 2; parent != want {
			t.Errorf("4x round %d: parent %d != %d", rate, parent,
				want)
		}
		got, parent, err = p.X2().RoundRate(rate)
		if err != nil {
			t.Fatal(err)
		}
		if want := rate * 4; got != want {
			t.Errorf("2x round %d: %d != %d", rate, got, want)
		}
		if want := rate * 4 * 2; parent != want {
			t.Errorf("2x round %d: parent %d != %d", rate, parent,
				want)
		}
	}
}
