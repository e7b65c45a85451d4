// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package clk models a tree of derived hardware clocks. A clock has a name,
// at most one parent, and a rate computed from its parent's rate. Clocks are
// built explicitly and registered with a Provider; there is no implicit
// global registry.
package clk

// Clock is a node in the clock tree. Rates are derived, never cached; a
// clock recomputes its rate from the parent rate and live hardware state on
// every call.
type Clock interface {
	Name() string

	// ParentName returns "" for root clocks.
	ParentName() string

	RecalcRate(parentRate uint64) uint64
}

// Rater is the rate capability of a clock tap: recompute the effective rate
// from a parent rate, and translate a requested rate into an achievable one.
// RoundRate's second result is the parent rate the request would take, or 0
// if the tap makes no demand on its parent.
type Rater interface {
	RecalcRate(parentRate uint64) uint64
	RoundRate(rate uint64) (rounded uint64, parentRate uint64, err error)
}

// RateSetter is a Rater with commit authority.
type RateSetter interface {
	Rater
	SetRate(rate, parentRate uint64) error
}

// Rounder is implemented by clocks that translate rate requests.
type Rounder interface {
	RoundRate(rate uint64) (rounded uint64, parentRate uint64, err error)
}

// Setter is implemented by clocks that commit rate changes to hardware.
type Setter interface {
	SetRate(rate, parentRate uint64) error
}

// Gater is implemented by clocks with an enable bit.
type Gater interface {
	Enable()
	Disable()
	IsEnabled() bool
}
