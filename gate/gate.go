// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package gate toggles a single clock enable bit.
package gate

import "github.com/platinasystems/clk/hw"

// Gate switches one bit of a shared register, leaving every other bit
// alone. Rate fields in the same register are never disturbed.
type Gate struct {
	Reg hw.Reg32
	Bit uint
}

func (g *Gate) Enable()  { g.Reg.Set(g.Reg.Get() | 1<<g.Bit) }
func (g *Gate) Disable() { g.Reg.Set(g.Reg.Get() &^ (1 << g.Bit)) }

func (g *Gate) IsEnabled() bool { return g.Reg.Get()&(1<<g.Bit) != 0 }
