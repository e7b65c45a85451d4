// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package fdtclk builds the clock tree described by a flattened device
// tree: fixed-rate oscillators and the sun4i audio PLL with its four
// outputs.
package fdtclk

import (
	"encoding/binary"
	"strings"

	"github.com/platinasystems/fdt"
	"github.com/platinasystems/log"

	"github.com/platinasystems/clk"
	"github.com/platinasystems/clk/gate"
	"github.com/platinasystems/clk/hw"
	"github.com/platinasystems/clk/pll2"
)

const (
	CompatPll2  = "allwinner,sun4i-a10-b-pll2-clk"
	CompatFixed = "fixed-clock"
)

// RegFn maps the control register of the unit at the given physical
// address.
type RegFn func(addr uint64) (hw.Reg32, error)

// DevMem maps a unit register through /dev/mem. The mapping lives for the
// process lifetime, like the clock built over it.
func DevMem(addr uint64) (hw.Reg32, error) {
	m, err := hw.Map(uintptr(addr), 4)
	if err != nil {
		return nil, err
	}
	return m.Reg(0), nil
}

// Setup registers every clock the tree describes. Bad nodes are reported
// and skipped; the rest of the tree still comes up.
func Setup(t *fdt.Tree, p *clk.Provider, reg RegFn) {
	ph := phandles(t)

	t.EachProperty("compatible", CompatFixed, func(n *fdt.Node, _, _ string) {
		fixedSetup(t, n, p)
	})
	t.EachProperty("compatible", CompatPll2, func(n *fdt.Node, _, _ string) {
		pll2Setup(t, n, p, reg, ph)
	})
}

func fixedSetup(t *fdt.Tree, n *fdt.Node, p *clk.Provider) {
	b, found := n.Properties["clock-frequency"]
	if !found || len(b) < 4 {
		log.Print("fdtclk: ", n.Name, ": missing clock-frequency")
		return
	}
	rate := uint64(propUint32(t, b))
	if err := p.Register(clk.NewFixedRate(clockName(t, n), rate)); err != nil {
		log.Print("fdtclk: ", err)
	}
}

func pll2Setup(t *fdt.Tree, n *fdt.Node, p *clk.Provider, reg RegFn, ph map[uint32]*fdt.Node) {
	b, found := n.Properties["reg"]
	if !found || len(b) < 4 {
		log.Print("fdtclk: ", n.Name, ": missing reg")
		return
	}
	// single address cell, as on sun4i
	addr := uint64(propUint32(t, b))

	r, err := reg(addr)
	if err != nil {
		log.Print("fdtclk: ", n.Name, ": ", err)
		return
	}

	names := outputNames(t, n)
	parent := parentName(t, n, ph)
	if parent == "" {
		log.Print("fdtclk: ", n.Name, ": no parent clock")
	}

	pll := pll2.New(r)
	g := &gate.Gate{Reg: r, Bit: pll2.EnableBit}

	for _, c := range []clk.Clock{
		clk.NewComposite(names[0], parent, pll.X1(), g),
		// the derived taps are parented on the 1x output
		clk.NewOutput(names[1], names[0], pll.X2()),
		clk.NewOutput(names[2], names[0], pll.X4()),
		clk.NewOutput(names[3], names[0], pll.X8()),
	} {
		if err = p.Register(c); err != nil {
			log.Print("fdtclk: ", err)
		}
	}
}

// phandles maps phandle values to nodes so parent references in "clocks"
// properties can be resolved.
func phandles(t *fdt.Tree) map[uint32]*fdt.Node {
	m := make(map[uint32]*fdt.Node)
	walk(t.RootNode, func(n *fdt.Node) {
		for _, prop := range []string{"phandle", "linux,phandle"} {
			if b, found := n.Properties[prop]; found && len(b) >= 4 {
				m[propUint32(t, b)] = n
			}
		}
	})
	return m
}

func walk(n *fdt.Node, f func(*fdt.Node)) {
	if n == nil {
		return
	}
	f(n)
	for _, c := range n.Children {
		walk(c, f)
	}
}

func parentName(t *fdt.Tree, n *fdt.Node, ph map[uint32]*fdt.Node) string {
	b, found := n.Properties["clocks"]
	if !found || len(b) < 4 {
		return ""
	}
	pn, found := ph[propUint32(t, b)]
	if !found {
		return ""
	}
	return clockName(t, pn)
}

// clockName is a node's first output name, falling back to the node name
// with any unit address stripped.
func clockName(t *fdt.Tree, n *fdt.Node) string {
	if b, found := n.Properties["clock-output-names"]; found {
		if s := propStrings(b); len(s) > 0 {
			return s[0]
		}
	}
	return baseName(n)
}

// outputNames returns the four output names of a PLL node, defaulting the
// missing ones from the node name.
func outputNames(t *fdt.Tree, n *fdt.Node) [4]string {
	base := baseName(n)
	names := [4]string{base, base + "-2x", base + "-4x", base + "-8x"}
	if b, found := n.Properties["clock-output-names"]; found {
		for i, s := range propStrings(b) {
			if i >= len(names) {
				break
			}
			names[i] = s
		}
	}
	return names
}

func baseName(n *fdt.Node) string { return strings.Split(n.Name, "@")[0] }

func propStrings(b []byte) (s []string) {
	for _, v := range strings.Split(string(b), "\x00") {
		if v != "" {
			s = append(s, v)
		}
	}
	return
}

func propUint32(t *fdt.Tree, b []byte) uint32 {
	if t.IsLittleEndian {
		return binary.LittleEndian.Uint32(b)
	}
	return binary.BigEndian.Uint32(b)
}
