// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package clk

// Output names a rate-only tap in the clock tree. Rate requests that reach
// an Output are translated by its Rater and passed up to the parent.
type Output struct {
	name   string
	parent string
	ops    Rater
}

func NewOutput(name, parent string, ops Rater) *Output {
	return &Output{name: name, parent: parent, ops: ops}
}

func (c *Output) Name() string       { return c.name }
func (c *Output) ParentName() string { return c.parent }

func (c *Output) RecalcRate(parentRate uint64) uint64 {
	return c.ops.RecalcRate(parentRate)
}

func (c *Output) RoundRate(rate uint64) (uint64, uint64, error) {
	return c.ops.RoundRate(rate)
}

// Composite is an Output that owns its register's commit path and enable
// bit, like the fundamental output of a PLL.
type Composite struct {
	Output
	set  Setter
	gate Gater
}

// NewComposite binds a name to a rate-setting tap and, if g is non-nil, a
// gate on the same register.
func NewComposite(name, parent string, ops RateSetter, g Gater) *Composite {
	c := &Composite{
		Output: Output{name: name, parent: parent, ops: ops},
		set:    ops,
		gate:   g,
	}
	return c
}

func (c *Composite) SetRate(rate, parentRate uint64) error {
	return c.set.SetRate(rate, parentRate)
}

func (c *Composite) Enable() {
	if c.gate != nil {
		c.gate.Enable()
	}
}

func (c *Composite) Disable() {
	if c.gate != nil {
		c.gate.Disable()
	}
}

func (c *Composite) IsEnabled() bool {
	return c.gate != nil && c.gate.IsEnabled()
}
