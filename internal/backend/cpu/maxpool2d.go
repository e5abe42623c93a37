package cpu

import (
	"fmt"

	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [C, H, W]
// Output shape: [C, out_h, out_w] with
//
//	out_h = (H - kernelSize) / stride + 1
//	out_w = (W - kernelSize) / stride + 1
//
// Alongside the pooled tensor it returns, for every output position,
// the flat input index of the window maximum. The indices are what
// MaxPool2DBackward needs to route gradients, so recording them during
// the forward scan avoids a second pass over the windows.
func (cpu *CPUBackend) MaxPool2D(input *tensor.Tensor, kernelSize, stride int) (*tensor.Tensor, []int) {
	inputShape := input.Shape()
	if len(inputShape) != 3 {
		panic(fmt.Sprintf("maxpool2d: expected 3D input [C,H,W], got %dD", len(inputShape)))
	}

	c := inputShape[0]
	h := inputShape[1]
	w := inputShape[2]

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if kernelSize > h || kernelSize > w {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, h, w))
	}

	hOut := (h-kernelSize)/stride + 1
	wOut := (w-kernelSize)/stride + 1

	output, err := tensor.New(tensor.Shape{c, hOut, wOut})
	if err != nil {
		panic(fmt.Sprintf("maxpool2d: failed to create output: %v", err))
	}

	inputData := input.Data()
	outputData := output.Data()
	maxIndices := make([]int, c*hOut*wOut)

	outIdx := 0
	for ch := 0; ch < c; ch++ {
		channelOffset := ch * h * w
		channelData := inputData[channelOffset : channelOffset+h*w]

		for outH := 0; outH < hOut; outH++ {
			hStart := outH * stride
			for outW := 0; outW < wOut; outW++ {
				wStart := outW * stride

				maxVal := float32(-1e38)
				maxPos := 0
				for kh := 0; kh < kernelSize; kh++ {
					rowStart := (hStart + kh) * w
					rowData := channelData[rowStart+wStart : rowStart+wStart+kernelSize]
					for kw, val := range rowData {
						if val > maxVal {
							maxVal = val
							maxPos = channelOffset + rowStart + wStart + kw
						}
					}
				}

				outputData[outIdx] = maxVal
				maxIndices[outIdx] = maxPos
				outIdx++
			}
		}
	}

	return output, maxIndices
}

// MaxPool2DBackward routes gradients to the max positions recorded by
// MaxPool2D. Only the input position that won each pooling window
// receives gradient; all other positions stay zero.
func (cpu *CPUBackend) MaxPool2DBackward(inputShape tensor.Shape, grad *tensor.Tensor, maxIndices []int) *tensor.Tensor {
	if len(inputShape) != 3 {
		panic(fmt.Sprintf("maxpool2d backward: input shape must be 3D [C,H,W], got %v", inputShape))
	}
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("maxpool2d backward: maxIndices length %d != grad elements %d",
			len(maxIndices), grad.NumElements()))
	}

	inputGrad, err := tensor.New(inputShape)
	if err != nil {
		panic(fmt.Sprintf("maxpool2d backward: failed to create gradient tensor: %v", err))
	}

	inputGradData := inputGrad.Data()
	gradData := grad.Data()
	for outIdx, maxPos := range maxIndices {
		inputGradData[maxPos] += gradData[outIdx]
	}
	return inputGrad
}
