package tensor

// Backend defines the compute operations a convolutional network needs
// from a device. Backends own no tensor state: every call is a pure
// function from input tensors to a fresh output tensor.
//
// Tensors are channel-first (C, H, W) with no batch dimension; the dream
// pipeline drives the network one image (or image tile) at a time.
//
// Contract: backends panic on shape or parameter violations. Callers are
// expected to pass well-formed tensors; misuse is a programmer error,
// not a runtime condition.
//
// Implementations:
//   - backend/cpu: pure Go kernels
//   - backend/webgpu: WGSL compute shaders via WebGPU
type Backend interface {
	// Conv2D computes a 2D cross-correlation of input (Cin, H, W) with
	// kernel (Cout, Cin, K, K), producing (Cout, HOut, WOut) where
	// HOut = (H + 2*padding - K)/stride + 1.
	Conv2D(input, kernel *Tensor, stride, padding int) *Tensor

	// Conv2DInputBackward computes the gradient of Conv2D with respect to
	// its input: given the output gradient (Cout, HOut, WOut) and the
	// kernel, it returns a tensor of shape inputShape (Cin, H, W).
	Conv2DInputBackward(inputShape Shape, kernel, grad *Tensor, stride, padding int) *Tensor

	// MaxPool2D computes 2D max pooling over input (C, H, W) and returns
	// the pooled tensor (C, HOut, WOut) together with the flat input
	// index of the maximum for every output position, as needed to route
	// gradients in MaxPool2DBackward.
	MaxPool2D(input *Tensor, kernelSize, stride int) (*Tensor, []int)

	// MaxPool2DBackward routes the output gradient back to the input
	// positions recorded in maxIndices, returning a tensor of shape
	// inputShape with zeros everywhere else.
	MaxPool2DBackward(inputShape Shape, grad *Tensor, maxIndices []int) *Tensor

	// Metadata.
	Name() string
	Device() Device
}
