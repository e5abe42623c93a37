// Copyright 2025 The Deep Dream Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package convnet provides the public API for the built-in
// GoogLeNet-shaped convolutional network.
//
// The network is randomly initialized (no pretrained weights ship with
// this module) and exists to drive the dream loop: deterministic for a
// given seed, with named layers from "conv1/7x7_s2" down to
// "inception_5b/output". It satisfies dream.Net.
//
// Example:
//
//	net, err := convnet.New(convnet.Config{Device: tensor.CPU, Seed: 42})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer net.Close()
//	fmt.Println(net.Layers())
package convnet

import (
	"github.com/xdxdVSxdxd/deep-dream/internal/convnet"
	"github.com/xdxdVSxdxd/deep-dream/internal/dream"
)

// Network is a feed-forward convolutional network with named layers.
type Network = convnet.Network

// Config selects the compute device and the weight seed.
type Config = convnet.Config

// Compile-time check that Network implements dream.Net.
var _ dream.Net = (*Network)(nil)

// DefaultConfig returns a CPU-backed configuration with seed 0.
func DefaultConfig() Config {
	return convnet.DefaultConfig()
}

// New builds the network on the configured device.
//
// Example:
//
//	net, err := convnet.New(convnet.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer net.Close()
func New(cfg Config) (*Network, error) {
	return convnet.New(cfg)
}
