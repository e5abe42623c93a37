// Package convnet provides the layered convolutional network the
// dreamer ascends over: a GoogLeNet-shaped stack of convolution and
// pooling stages with deterministic, seed-derived weights. Layer names
// follow the familiar GoogLeNet blob names, with each inception module
// collapsed into the single convolution that produces its output
// channel count.
package convnet

import (
	"fmt"
	"math/rand"

	"github.com/xdxdVSxdxd/deep-dream/internal/backend/cpu"
	"github.com/xdxdVSxdxd/deep-dream/internal/backend/webgpu"
	"github.com/xdxdVSxdxd/deep-dream/internal/dream"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// inputChannels is the image depth the first convolution expects.
const inputChannels = 3

// Config selects the compute device and the weight stream.
type Config struct {
	// Device picks the backend the network computes on.
	Device tensor.Device

	// Seed derives every layer weight. Networks built from the same
	// seed are identical.
	Seed int64
}

// DefaultConfig returns a CPU network with the default weight stream.
func DefaultConfig() Config {
	return Config{Device: tensor.CPU, Seed: 0}
}

// layer pairs a name with its computation and its live buffers, in the
// style of a blob store: Activation and Gradient hand the buffers out
// directly, and forward and backward passes rewrite them.
type layer struct {
	name string
	op   op
	act  *tensor.Tensor
	grad *tensor.Tensor
}

// Network is a sequential convolutional network with named layers.
//
// It is not safe for concurrent use: passes share the per-layer
// activation and gradient buffers.
type Network struct {
	backend tensor.Backend
	release func()
	layers  []*layer
	index   map[string]int
}

var _ dream.Net = (*Network)(nil)

// New builds the network on the configured device.
func New(cfg Config) (*Network, error) {
	var backend tensor.Backend
	var release func()
	switch cfg.Device {
	case tensor.CPU:
		backend = cpu.New()
	case tensor.WebGPU:
		gpu, err := webgpu.New()
		if err != nil {
			return nil, err
		}
		backend = gpu
		release = gpu.Release
	default:
		return nil, fmt.Errorf("convnet: unsupported device %s", cfg.Device)
	}

	n := &Network{
		backend: backend,
		release: release,
		index:   make(map[string]int),
	}
	n.add("data", nil)

	rng := rand.New(rand.NewSource(cfg.Seed))
	channels := inputChannels
	conv := func(name string, out, kernel, stride, padding int) {
		n.add(name, newConvLayer(rng, channels, out, kernel, stride, padding))
		channels = out
	}
	pool := func(name string) {
		n.add(name, &poolLayer{kernelSize: 3, stride: 2})
	}

	conv("conv1/7x7_s2", 16, 7, 2, 3)
	pool("pool1/3x3_s2")
	conv("conv2/3x3_reduce", 16, 1, 1, 0)
	conv("conv2/3x3", 32, 3, 1, 1)
	pool("pool2/3x3_s2")
	conv("inception_3a/output", 48, 3, 1, 1)
	conv("inception_3b/output", 64, 3, 1, 1)
	pool("pool3/3x3_s2")
	conv("inception_4a/output", 80, 3, 1, 1)
	conv("inception_4b/output", 96, 3, 1, 1)
	conv("inception_4c/output", 112, 3, 1, 1)
	conv("inception_4d/output", 128, 3, 1, 1)
	conv("inception_4e/output", 144, 3, 1, 1)
	pool("pool4/3x3_s2")
	conv("inception_5a/output", 160, 3, 1, 1)
	conv("inception_5b/output", 176, 3, 1, 1)

	return n, nil
}

func (n *Network) add(name string, o op) {
	n.index[name] = len(n.layers)
	n.layers = append(n.layers, &layer{name: name, op: o})
}

// Close releases backend resources. CPU networks hold none; WebGPU
// networks free their device objects.
func (n *Network) Close() {
	if n.release != nil {
		n.release()
		n.release = nil
	}
}

// Backend returns the compute backend in use.
func (n *Network) Backend() tensor.Backend {
	return n.backend
}

// InputLayer returns the name of the image input layer.
func (n *Network) InputLayer() string {
	return "data"
}

// Layers lists all layer names in forward order.
func (n *Network) Layers() []string {
	names := make([]string, len(n.layers))
	for i, l := range n.layers {
		names[i] = l.name
	}
	return names
}

// SetInput resizes the input layer to [channels, height, width].
// Deeper activations remain stale until the next Forward pass.
func (n *Network) SetInput(channels, height, width int) {
	if channels != inputChannels {
		panic(fmt.Sprintf("convnet: network expects %d input channels, got %d", inputChannels, channels))
	}
	if height < 1 || width < 1 {
		panic(fmt.Sprintf("convnet: invalid input size %dx%d", height, width))
	}
	shape := tensor.Shape{channels, height, width}
	n.layers[0].act = mustTensor(shape)
	n.layers[0].grad = mustTensor(shape)
}

// Forward runs the network from the input through the end layer.
func (n *Network) Forward(end string) error {
	endIdx, ok := n.index[end]
	if !ok {
		return fmt.Errorf("convnet: no such layer %q", end)
	}
	if n.layers[0].act == nil {
		return fmt.Errorf("convnet: input not set")
	}
	for i := 1; i <= endIdx; i++ {
		l := n.layers[i]
		l.act = l.op.forward(n.backend, n.layers[i-1].act)
		l.grad = mustTensor(l.act.Shape())
	}
	return nil
}

// Backward propagates the gradient seeded at the start layer back to
// the input. Valid only after a Forward pass that reached start.
func (n *Network) Backward(start string) error {
	startIdx, ok := n.index[start]
	if !ok {
		return fmt.Errorf("convnet: no such layer %q", start)
	}
	if n.layers[startIdx].act == nil || n.layers[startIdx].grad == nil {
		return fmt.Errorf("convnet: layer %q has no gradient; run Forward first", start)
	}
	for i := startIdx; i >= 1; i-- {
		l := n.layers[i]
		n.layers[i-1].grad = l.op.backward(n.backend, n.layers[i-1].act.Shape(), l.act, l.grad)
	}
	return nil
}

// Activation returns the live activation buffer of the named layer.
// The input buffer is valid after SetInput; deeper buffers are valid
// after a Forward pass that reached them. Panics on unknown names.
func (n *Network) Activation(name string) *tensor.Tensor {
	idx, ok := n.index[name]
	if !ok {
		panic(fmt.Sprintf("convnet: no such layer %q", name))
	}
	return n.layers[idx].act
}

// SetActivation overwrites the named layer's activation buffer with
// the contents of t. Panics on unknown names or a shape mismatch.
func (n *Network) SetActivation(name string, t *tensor.Tensor) {
	setBuffer(n.Activation(name), t, name, "activation")
}

// Gradient returns the live gradient buffer of the named layer.
// Panics on unknown names.
func (n *Network) Gradient(name string) *tensor.Tensor {
	idx, ok := n.index[name]
	if !ok {
		panic(fmt.Sprintf("convnet: no such layer %q", name))
	}
	return n.layers[idx].grad
}

// SetGradient overwrites the named layer's gradient buffer with the
// contents of t. Panics on unknown names or a shape mismatch.
func (n *Network) SetGradient(name string, t *tensor.Tensor) {
	setBuffer(n.Gradient(name), t, name, "gradient")
}

func setBuffer(dst, src *tensor.Tensor, name, kind string) {
	if dst == nil {
		panic(fmt.Sprintf("convnet: layer %q has no %s buffer; run SetInput and Forward first", name, kind))
	}
	if !dst.Shape().Equal(src.Shape()) {
		panic(fmt.Sprintf("convnet: set %s %q: shape %v does not match buffer shape %v",
			kind, name, src.Shape(), dst.Shape()))
	}
	copy(dst.Data(), src.Data())
}

// ZeroGradients clears every allocated gradient buffer.
func (n *Network) ZeroGradients() {
	for _, l := range n.layers {
		if l.grad == nil {
			continue
		}
		data := l.grad.Data()
		for i := range data {
			data[i] = 0
		}
	}
}

func mustTensor(shape tensor.Shape) *tensor.Tensor {
	t, err := tensor.New(shape.Clone())
	if err != nil {
		panic(fmt.Sprintf("convnet: tensor alloc: %v", err))
	}
	return t
}
