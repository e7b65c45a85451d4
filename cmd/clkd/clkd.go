// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package clkd publishes the clock tree to redis and accepts rate and gate
// writes over the hash.
package clkd

import (
	"fmt"
	"io/ioutil"
	"net/rpc"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/platinasystems/atsock"
	"github.com/platinasystems/fdt"
	"github.com/platinasystems/goes/cmd"
	"github.com/platinasystems/goes/lang"
	"github.com/platinasystems/log"
	"github.com/platinasystems/redis"
	"github.com/platinasystems/redis/publisher"
	"github.com/platinasystems/redis/rpc/args"
	"github.com/platinasystems/redis/rpc/reply"

	"github.com/platinasystems/clk"
	"github.com/platinasystems/clk/fdtclk"
)

var (
	// File is the device tree blob describing the clocks.
	File = "/boot/linux.dtb"

	pollInterval time.Duration = 10
)

type Command struct {
	Info
	Init func()
	init sync.Once
}

type Info struct {
	mutex sync.Mutex
	rpc   *atsock.RpcServer
	pub   *publisher.Publisher
	stop  chan struct{}
	prov  *clk.Provider
	lasts map[string]string
}

func (*Command) String() string { return "clkd" }

func (*Command) Usage() string { return "clkd" }

func (*Command) Apropos() lang.Alt {
	return lang.Alt{
		lang.EnUS: "clock tree daemon",
	}
}

func (*Command) Kind() cmd.Kind { return cmd.Daemon }

func (c *Command) Main(...string) error {
	if c.Init != nil {
		c.init.Do(c.Init)
	}

	err := redis.IsReady()
	if err != nil {
		return err
	}

	b, err := ioutil.ReadFile(File)
	if err != nil {
		return err
	}
	t := &fdt.Tree{Debug: false, IsLittleEndian: false}
	t.Parse(b)
	c.prov = clk.NewProvider()
	fdtclk.Setup(t, c.prov, fdtclk.DevMem)

	c.stop = make(chan struct{})
	c.lasts = make(map[string]string)

	if c.pub, err = publisher.New(); err != nil {
		return err
	}

	if c.rpc, err = atsock.NewRpcServer("clkd"); err != nil {
		return err
	}

	rpc.Register(&c.Info)
	for _, name := range c.prov.Names() {
		err = redis.Assign(redis.DefaultHash+":"+name+".", "clkd", "Info")
		if err != nil {
			return err
		}
	}

	ticker := time.NewTicker(pollInterval * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return nil
		case <-ticker.C:
			if err = c.update(); err != nil {
				log.Print("clkd: ", err)
			}
		}
	}
}

func (c *Command) Close() error {
	close(c.stop)
	return nil
}

func (c *Command) update() error {
	c.Info.mutex.Lock()
	defer c.Info.mutex.Unlock()

	for _, name := range c.prov.Names() {
		rate, err := c.prov.Rate(name)
		if err != nil {
			continue
		}
		c.publish(name+".rate.units.hz", strconv.FormatUint(rate, 10))

		cl, _ := c.prov.Lookup(name)
		if g, ok := cl.(clk.Gater); ok {
			c.publish(name+".enable",
				strconv.FormatBool(g.IsEnabled()))
		}
	}
	return nil
}

func (c *Command) publish(key, value string) {
	if value != c.lasts[key] {
		c.pub.Print(key, ": ", value)
		c.lasts[key] = value
	}
}

func (i *Info) Hset(a args.Hset, r *reply.Hset) error {
	i.mutex.Lock()
	defer i.mutex.Unlock()

	v := strings.TrimRight(string(a.Value), "\n")

	switch {
	case strings.HasSuffix(a.Field, ".rate.units.hz"):
		name := strings.TrimSuffix(a.Field, ".rate.units.hz")
		rate, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		if err = i.prov.SetRate(name, rate); err != nil {
			return err
		}

	case strings.HasSuffix(a.Field, ".enable"):
		name := strings.TrimSuffix(a.Field, ".enable")
		cl, found := i.prov.Lookup(name)
		if !found {
			return fmt.Errorf("%s: not found", name)
		}
		g, ok := cl.(clk.Gater)
		if !ok {
			return fmt.Errorf("%s: not gated", name)
		}
		switch v {
		case "true":
			g.Enable()
		case "false":
			g.Disable()
		default:
			return fmt.Errorf("%s: invalid: want true or false", v)
		}

	default:
		return fmt.Errorf("Don't know how to set %s", a.Field)
	}

	i.pub.Print(a.Field, ": ", v)
	*r = 1
	return nil
}
