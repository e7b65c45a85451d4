// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package clk

// FixedRate is a root clock with a constant rate, typically a crystal
// oscillator.
type FixedRate struct {
	name string
	rate uint64
}

func NewFixedRate(name string, rate uint64) *FixedRate {
	return &FixedRate{name: name, rate: rate}
}

func (c *FixedRate) Name() string       { return c.name }
func (c *FixedRate) ParentName() string { return "" }

func (c *FixedRate) RecalcRate(uint64) uint64 { return c.rate }
