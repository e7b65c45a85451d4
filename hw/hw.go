// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package hw provides memory mapped 32 bit device registers.
package hw

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

const DevMem = "/dev/mem"

// Reg32 is a single 32 bit hardware register.
type Reg32 interface {
	Get() uint32
	Set(uint32)
}

// Word is a memory backed register for tests and simulation.
type Word uint32

func (w *Word) Get() uint32  { return uint32(*w) }
func (w *Word) Set(v uint32) { *w = Word(v) }

// Mem is a window of physical address space mapped through /dev/mem.
type Mem struct {
	// byte offset of the requested base within the page aligned mapping
	off uintptr
	b   []byte
}

func align(x, a uintptr) uintptr { return (x + a - 1) &^ (a - 1) }

// Map the size bytes of physical address space starting at base.
func Map(base, size uintptr) (m *Mem, err error) {
	f, err := os.OpenFile(DevMem, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return
	}
	defer f.Close()

	pg := uintptr(syscall.Getpagesize())
	pgbase := base &^ (pg - 1)
	n := align(size+base-pgbase, pg)
	b, err := syscall.Mmap(int(f.Fd()), int64(pgbase), int(n),
		syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		err = fmt.Errorf("mmap %s @ %#x: %v", DevMem, base, err)
		return
	}
	m = &Mem{off: base - pgbase, b: b}
	return
}

func (m *Mem) Close() error { return syscall.Munmap(m.b) }

func (m *Mem) Read32(offset uintptr) uint32 {
	return *(*uint32)(unsafe.Pointer(&m.b[m.off+offset]))
}

func (m *Mem) Write32(offset uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(&m.b[m.off+offset])) = v
}

// Reg returns the register at the given byte offset within the mapping.
func (m *Mem) Reg(offset uintptr) Reg32 { return &reg{m, offset} }

type reg struct {
	m      *Mem
	offset uintptr
}

func (r *reg) Get() uint32  { return r.m.Read32(r.offset) }
func (r *reg) Set(v uint32) { r.m.Write32(r.offset, v) }
