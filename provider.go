// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package clk

import (
	"fmt"
	"sort"
)

// Provider holds a tree of named clocks. It does no locking; callers
// serialize concurrent rate changes.
type Provider struct {
	clks map[string]Clock
}

func NewProvider() *Provider {
	return &Provider{clks: make(map[string]Clock)}
}

func (p *Provider) Register(c Clock) error {
	if _, found := p.clks[c.Name()]; found {
		return fmt.Errorf("clk: %s: already registered", c.Name())
	}
	p.clks[c.Name()] = c
	return nil
}

func (p *Provider) Lookup(name string) (Clock, bool) {
	c, found := p.clks[name]
	return c, found
}

// Names returns the registered clock names, sorted.
func (p *Provider) Names() []string {
	names := make([]string, 0, len(p.clks))
	for name := range p.clks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rate resolves the parent chain and recomputes the clock's effective rate
// from live hardware state.
func (p *Provider) Rate(name string) (uint64, error) {
	c, found := p.clks[name]
	if !found {
		return 0, fmt.Errorf("clk: %s: not found", name)
	}
	if c.ParentName() == "" {
		return c.RecalcRate(0), nil
	}
	parentRate, err := p.Rate(c.ParentName())
	if err != nil {
		return 0, err
	}
	return c.RecalcRate(parentRate), nil
}

// SetRate changes a clock's rate. A clock with commit authority rounds the
// request and commits it; a rate-only clock translates the request into a
// parent rate demand and passes it up the tree.
func (p *Provider) SetRate(name string, rate uint64) error {
	c, found := p.clks[name]
	if !found {
		return fmt.Errorf("clk: %s: not found", name)
	}

	var parentRate uint64
	if c.ParentName() != "" {
		var err error
		if parentRate, err = p.Rate(c.ParentName()); err != nil {
			return err
		}
	}

	if s, ok := c.(Setter); ok {
		if r, ok := c.(Rounder); ok {
			rounded, _, err := r.RoundRate(rate)
			if err != nil {
				return err
			}
			rate = rounded
		}
		return s.SetRate(rate, parentRate)
	}

	if r, ok := c.(Rounder); ok && c.ParentName() != "" {
		_, want, err := r.RoundRate(rate)
		if err != nil {
			return err
		}
		if want != 0 {
			return p.SetRate(c.ParentName(), want)
		}
	}
	return fmt.Errorf("clk: %s: rate is fixed", name)
}
