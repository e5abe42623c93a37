package webgpu

import (
	"encoding/binary"
	"fmt"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// convParams packs the shared convolution uniform block.
func convParams(cIn, hIn, wIn, cOut, hOut, wOut, kH, kW, stride, padding int) []byte {
	params := make([]byte, 48) // 10 u32 fields, padded to 16-byte boundary
	for i, v := range []int{cIn, hIn, wIn, cOut, hOut, wOut, kH, kW, stride, padding} {
		//nolint:gosec // G115: Safe conversion, dimensions are non-negative
		binary.LittleEndian.PutUint32(params[i*4:i*4+4], uint32(v))
	}
	return params
}

// Conv2D performs 2D cross-correlation on the GPU.
// Input shape [C_in, H, W], kernel shape [C_out, C_in, KH, KW].
func (b *Backend) Conv2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor {
	result, err := b.runConv2D(input, kernel, stride, padding)
	if err != nil {
		panic("webgpu: Conv2D: " + err.Error())
	}
	return result
}

func (b *Backend) runConv2D(input, kernel *tensor.Tensor, stride, padding int) (*tensor.Tensor, error) {
	inShape := input.Shape()
	kShape := kernel.Shape()
	if len(inShape) != 3 {
		return nil, fmt.Errorf("conv2d requires 3D input [C,H,W], got %v", inShape)
	}
	if len(kShape) != 4 {
		return nil, fmt.Errorf("conv2d requires 4D kernel [C_out,C_in,KH,KW], got %v", kShape)
	}
	if kShape[1] != inShape[0] {
		return nil, fmt.Errorf("conv2d channel mismatch: input has %d, kernel expects %d", inShape[0], kShape[1])
	}
	if stride <= 0 {
		return nil, fmt.Errorf("conv2d invalid stride %d", stride)
	}
	if padding < 0 {
		return nil, fmt.Errorf("conv2d invalid padding %d", padding)
	}

	cIn, h, w := inShape[0], inShape[1], inShape[2]
	cOut, kH, kW := kShape[0], kShape[2], kShape[3]
	hOut := (h+2*padding-kH)/stride + 1
	wOut := (w+2*padding-kW)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		return nil, fmt.Errorf("conv2d kernel %dx%d too large for input %dx%d (padding %d)", kH, kW, h, w, padding)
	}

	shader := b.compileShader("conv2d", conv2dShader)
	pipeline := b.getOrCreatePipeline("conv2d", shader)

	bufferInput := b.uploadBuffer(input.Data())
	defer bufferInput.Release()

	bufferKernel := b.uploadBuffer(kernel.Data())
	defer bufferKernel.Release()

	total := cOut * hOut * wOut
	resultSize := uint64(total) * 4
	bufferResult := b.outputBuffer(resultSize)
	defer bufferResult.Release()

	bufferParams := b.createUniformBuffer(convParams(cIn, h, w, cOut, hOut, wOut, kH, kW, stride, padding))
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, uint64(len(input.Data()))*4),
		wgpu.BufferBindingEntry(1, bufferKernel, 0, uint64(len(kernel.Data()))*4),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 48),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, total)

	result, err := tensor.New(tensor.Shape{cOut, hOut, wOut})
	if err != nil {
		return nil, err
	}
	if err := b.readFloats(bufferResult, result.Data()); err != nil {
		return nil, err
	}
	return result, nil
}

// Conv2DInputBackward computes the convolution gradient with respect to
// the input on the GPU.
func (b *Backend) Conv2DInputBackward(inputShape tensor.Shape, kernel, grad *tensor.Tensor, stride, padding int) *tensor.Tensor {
	result, err := b.runConv2DInputBackward(inputShape, kernel, grad, stride, padding)
	if err != nil {
		panic("webgpu: Conv2DInputBackward: " + err.Error())
	}
	return result
}

func (b *Backend) runConv2DInputBackward(inputShape tensor.Shape, kernel, grad *tensor.Tensor, stride, padding int) (*tensor.Tensor, error) {
	kShape := kernel.Shape()
	gShape := grad.Shape()
	if len(inputShape) != 3 {
		return nil, fmt.Errorf("conv2d backward requires 3D input shape [C,H,W], got %v", inputShape)
	}
	if len(kShape) != 4 {
		return nil, fmt.Errorf("conv2d backward requires 4D kernel [C_out,C_in,KH,KW], got %v", kShape)
	}
	if len(gShape) != 3 {
		return nil, fmt.Errorf("conv2d backward requires 3D gradient [C_out,H_out,W_out], got %v", gShape)
	}
	if kShape[1] != inputShape[0] {
		return nil, fmt.Errorf("conv2d backward channel mismatch: input has %d, kernel expects %d", inputShape[0], kShape[1])
	}
	if gShape[0] != kShape[0] {
		return nil, fmt.Errorf("conv2d backward channel mismatch: gradient has %d, kernel produces %d", gShape[0], kShape[0])
	}
	if stride <= 0 {
		return nil, fmt.Errorf("conv2d backward invalid stride %d", stride)
	}
	if padding < 0 {
		return nil, fmt.Errorf("conv2d backward invalid padding %d", padding)
	}

	cIn, h, w := inputShape[0], inputShape[1], inputShape[2]
	cOut, kH, kW := kShape[0], kShape[2], kShape[3]
	hOut, wOut := gShape[1], gShape[2]
	if hOut != (h+2*padding-kH)/stride+1 || wOut != (w+2*padding-kW)/stride+1 {
		return nil, fmt.Errorf("conv2d backward gradient %dx%d does not match input %dx%d with kernel %dx%d stride %d padding %d",
			hOut, wOut, h, w, kH, kW, stride, padding)
	}

	shader := b.compileShader("conv2d_input_backward", conv2dInputBackwardShader)
	pipeline := b.getOrCreatePipeline("conv2d_input_backward", shader)

	bufferGrad := b.uploadBuffer(grad.Data())
	defer bufferGrad.Release()

	bufferKernel := b.uploadBuffer(kernel.Data())
	defer bufferKernel.Release()

	total := cIn * h * w
	resultSize := uint64(total) * 4
	bufferResult := b.outputBuffer(resultSize)
	defer bufferResult.Release()

	bufferParams := b.createUniformBuffer(convParams(cIn, h, w, cOut, hOut, wOut, kH, kW, stride, padding))
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferGrad, 0, uint64(len(grad.Data()))*4),
		wgpu.BufferBindingEntry(1, bufferKernel, 0, uint64(len(kernel.Data()))*4),
		wgpu.BufferBindingEntry(2, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 48),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, total)

	result, err := tensor.New(inputShape.Clone())
	if err != nil {
		return nil, err
	}
	if err := b.readFloats(bufferResult, result.Data()); err != nil {
		return nil, err
	}
	return result, nil
}

// MaxPool2D performs max pooling on the GPU and returns the pooled
// tensor along with the flat input index of each window maximum.
func (b *Backend) MaxPool2D(input *tensor.Tensor, kernelSize, stride int) (*tensor.Tensor, []int) {
	result, indices, err := b.runMaxPool2D(input, kernelSize, stride)
	if err != nil {
		panic("webgpu: MaxPool2D: " + err.Error())
	}
	return result, indices
}

func (b *Backend) runMaxPool2D(input *tensor.Tensor, kernelSize, stride int) (*tensor.Tensor, []int, error) {
	inShape := input.Shape()
	if len(inShape) != 3 {
		return nil, nil, fmt.Errorf("maxpool2d requires 3D input [C,H,W], got %v", inShape)
	}
	if kernelSize <= 0 {
		return nil, nil, fmt.Errorf("maxpool2d invalid kernel size %d", kernelSize)
	}
	if stride <= 0 {
		return nil, nil, fmt.Errorf("maxpool2d invalid stride %d", stride)
	}

	channels, h, w := inShape[0], inShape[1], inShape[2]
	if kernelSize > h || kernelSize > w {
		return nil, nil, fmt.Errorf("maxpool2d kernel size %d too large for input %dx%d", kernelSize, h, w)
	}
	hOut := (h-kernelSize)/stride + 1
	wOut := (w-kernelSize)/stride + 1

	shader := b.compileShader("maxpool2d", maxpool2dShader)
	pipeline := b.getOrCreatePipeline("maxpool2d", shader)

	bufferInput := b.uploadBuffer(input.Data())
	defer bufferInput.Release()

	total := channels * hOut * wOut
	resultSize := uint64(total) * 4
	bufferResult := b.outputBuffer(resultSize)
	defer bufferResult.Release()

	bufferIndices := b.outputBuffer(resultSize)
	defer bufferIndices.Release()

	params := make([]byte, 32) // 7 u32 fields, padded to 16-byte boundary
	for i, v := range []int{channels, h, w, hOut, wOut, kernelSize, stride} {
		//nolint:gosec // G115: Safe conversion, dimensions are non-negative
		binary.LittleEndian.PutUint32(params[i*4:i*4+4], uint32(v))
	}
	bufferParams := b.createUniformBuffer(params)
	defer bufferParams.Release()

	bindGroupLayout := pipeline.GetBindGroupLayout(0)
	bindGroup := b.device.CreateBindGroupSimple(bindGroupLayout, []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufferInput, 0, uint64(len(input.Data()))*4),
		wgpu.BufferBindingEntry(1, bufferResult, 0, resultSize),
		wgpu.BufferBindingEntry(2, bufferIndices, 0, resultSize),
		wgpu.BufferBindingEntry(3, bufferParams, 0, 32),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, total)

	result, err := tensor.New(tensor.Shape{channels, hOut, wOut})
	if err != nil {
		return nil, nil, err
	}
	if err := b.readFloats(bufferResult, result.Data()); err != nil {
		return nil, nil, err
	}
	indices, err := b.readIndices(bufferIndices, total)
	if err != nil {
		return nil, nil, err
	}
	return result, indices, nil
}

// MaxPool2DBackward routes each output gradient back to the input
// position recorded in maxIndices. The scatter runs on the CPU: WGSL
// has no float atomics, and the index buffer is already host-side.
func (b *Backend) MaxPool2DBackward(inputShape tensor.Shape, grad *tensor.Tensor, maxIndices []int) *tensor.Tensor {
	if len(inputShape) != 3 {
		panic(fmt.Sprintf("webgpu: MaxPool2DBackward: input shape must be 3D [C,H,W], got %v", inputShape))
	}
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("webgpu: MaxPool2DBackward: maxIndices length %d != grad elements %d",
			len(maxIndices), grad.NumElements()))
	}

	inputGrad, err := tensor.New(inputShape.Clone())
	if err != nil {
		panic("webgpu: MaxPool2DBackward: " + err.Error())
	}

	inputGradData := inputGrad.Data()
	gradData := grad.Data()
	for outIdx, maxPos := range maxIndices {
		inputGradData[maxPos] += gradData[outIdx]
	}
	return inputGrad
}
