// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package clkcmd provides a cli command to inspect and tune the clock tree.
package clkcmd

import (
	"fmt"
	"io/ioutil"
	"strconv"

	"github.com/platinasystems/fdt"
	"github.com/platinasystems/flags"
	"github.com/platinasystems/goes/lang"
	"github.com/platinasystems/parms"

	"github.com/platinasystems/clk"
	"github.com/platinasystems/clk/fdtclk"
)

// File is the default device tree blob.
var File = "/boot/linux.dtb"

type Command struct{}

func (Command) String() string { return "clk" }

func (Command) Usage() string {
	return "clk [-f DTB] [-parent HZ] [-e | -d] [NAME [RATE]]"
}

func (Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "query/configure clock rates",
	}
}

func (Command) Man() lang.Alt {
	return lang.Alt{
		lang.EnUS: `
DESCRIPTION
	Print or change rates of the clocks described by the device tree.
	  -f DTB	device tree blob (default /boot/linux.dtb)
	  -parent HZ	rate of any parent the tree doesn't describe
	  -e NAME	enable the named clock
	  -d NAME	disable the named clock
	  NAME		print one clock instead of all
	  NAME RATE	request a new rate in Hz`,
	}
}

func (Command) Main(args ...string) error {
	flag, args := flags.New(args, "-e", "-d")
	parm, args := parms.New(args, "-f", "-parent")
	if parm.ByName["-f"] == "" {
		parm.ByName["-f"] = File
	}
	if len(args) > 2 {
		return fmt.Errorf("%v: unexpected", args[2:])
	}

	b, err := ioutil.ReadFile(parm.ByName["-f"])
	if err != nil {
		return err
	}
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	t.Parse(b)

	p := clk.NewProvider()
	fdtclk.Setup(t, p, fdtclk.DevMem)

	if s := parm.ByName["-parent"]; s != "" {
		rate, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %v", s, err)
		}
		registerMissingParents(p, rate)
	}

	if len(args) == 0 {
		for _, name := range p.Names() {
			show(p, name)
		}
		return nil
	}

	name := args[0]
	c, found := p.Lookup(name)
	if !found {
		return fmt.Errorf("%s: not found", name)
	}

	if flag.ByName["-e"] || flag.ByName["-d"] {
		g, ok := c.(clk.Gater)
		if !ok {
			return fmt.Errorf("%s: not gated", name)
		}
		if flag.ByName["-e"] {
			g.Enable()
		} else {
			g.Disable()
		}
	}

	if len(args) == 2 {
		rate, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %v", args[1], err)
		}
		if err = p.SetRate(name, rate); err != nil {
			return err
		}
	}

	show(p, name)
	return nil
}

// registerMissingParents gives every dangling parent reference a fixed rate
// so the tree resolves even when the blob doesn't describe the oscillator.
func registerMissingParents(p *clk.Provider, rate uint64) {
	for _, name := range p.Names() {
		c, _ := p.Lookup(name)
		parent := c.ParentName()
		if parent == "" {
			continue
		}
		if _, found := p.Lookup(parent); !found {
			p.Register(clk.NewFixedRate(parent, rate))
		}
	}
}

func show(p *clk.Provider, name string) {
	rate, err := p.Rate(name)
	if err != nil {
		fmt.Printf("%-16s %v\n", name, err)
		return
	}
	s := ""
	if c, found := p.Lookup(name); found {
		if g, ok := c.(clk.Gater); ok {
			s = "disabled"
			if g.IsEnabled() {
				s = "enabled"
			}
		}
	}
	fmt.Printf("%-16s %12d %s\n", name, rate, s)
}
