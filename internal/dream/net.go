package dream

import "github.com/xdxdVSxdxd/deep-dream/internal/tensor"

// Net is the network surface the dreamer drives. Activations and
// gradients are exposed as live buffers keyed by layer name, so the
// ascent loop can seed the objective gradient and read back the input
// gradient without copies through an optimizer.
type Net interface {
	// InputLayer returns the name of the layer images are fed into.
	InputLayer() string

	// Layers lists every layer that can serve as an objective, in
	// forward order. The input layer is included.
	Layers() []string

	// SetInput resizes the input layer to the given dimensions,
	// reallocating downstream buffers as needed. Tiling feeds the
	// network differently sized tiles within a single run.
	SetInput(channels, height, width int)

	// Forward propagates the input activation through the network,
	// stopping after the end layer.
	Forward(end string) error

	// Backward propagates the gradient seeded at the start layer back
	// to the input layer.
	Backward(start string) error

	// Activation returns the live activation buffer of a layer.
	// Panics if the layer does not exist.
	Activation(layer string) *tensor.Tensor

	// SetActivation overwrites a layer's activation buffer with the
	// contents of t. Panics if the layer does not exist or t does not
	// match the buffer's shape.
	SetActivation(layer string, t *tensor.Tensor)

	// Gradient returns the live gradient buffer of a layer.
	// Panics if the layer does not exist.
	Gradient(layer string) *tensor.Tensor

	// SetGradient overwrites a layer's gradient buffer with the
	// contents of t. Seeding the objective is SetGradient of the end
	// layer with its own activation.
	SetGradient(layer string, t *tensor.Tensor)

	// ZeroGradients clears every gradient buffer.
	ZeroGradients()
}
