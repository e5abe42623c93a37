package cpu

import (
	"fmt"

	"github.com/xdxdVSxdxd/deep-dream/internal/parallel"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// Conv2DInputBackward computes the gradient w.r.t. the convolution
// input using transposed convolution.
//
// Algorithm: for each output gradient position, distribute
// grad[c_out, h_out, w_out] * kernel[c_out, c_in, kh, kw] to the input
// position that contributed through that kernel tap.
//
// References:
//   - "A guide to convolution arithmetic for deep learning"
//     (Dumoulin & Visin, 2016)
func (cpu *CPUBackend) Conv2DInputBackward(inputShape tensor.Shape, kernel, grad *tensor.Tensor, stride, padding int) *tensor.Tensor {
	kernelShape := kernel.Shape()
	gradShape := grad.Shape()

	if len(inputShape) != 3 {
		panic(fmt.Sprintf("conv2d input backward: input shape must be 3D [C,H,W], got %v", inputShape))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d input backward: kernel must be 4D, got %v", kernelShape))
	}
	if len(gradShape) != 3 {
		panic(fmt.Sprintf("conv2d input backward: grad must be 3D, got %v", gradShape))
	}
	if gradShape[0] != kernelShape[0] {
		panic(fmt.Sprintf("conv2d input backward: grad channels %d != kernel output channels %d",
			gradShape[0], kernelShape[0]))
	}
	if inputShape[0] != kernelShape[1] {
		panic(fmt.Sprintf("conv2d input backward: input channels %d != kernel input channels %d",
			inputShape[0], kernelShape[1]))
	}

	cIn := inputShape[0]
	h := inputShape[1]
	w := inputShape[2]
	cOut := kernelShape[0]
	kH := kernelShape[2]
	kW := kernelShape[3]
	hOut := gradShape[1]
	wOut := gradShape[2]

	inputGrad, err := tensor.New(inputShape)
	if err != nil {
		panic(fmt.Sprintf("conv2d input backward: failed to create gradient tensor: %v", err))
	}

	// Stride-1 no-padding convolutions (the 1x1 reduce layers) take the
	// specialized path without bounds checks in the inner loop.
	if stride == 1 && padding == 0 {
		conv2dInputBackwardFloat32Stride1NoPad(inputGrad, grad, kernel, cIn, w, cOut, kH, kW, hOut, wOut, cpu.par)
	} else {
		conv2dInputBackwardFloat32(inputGrad, grad, kernel, cIn, h, w, cOut, kH, kW, hOut, wOut, stride, padding, cpu.par)
	}
	return inputGrad
}

// conv2dInputBackwardFloat32 distributes output gradients through the
// kernel taps with bounds checks for stride/padding. Input channels are
// the outer loop so each goroutine accumulates into its own gradient
// plane.
func conv2dInputBackwardFloat32(
	inputGrad, grad, kernel *tensor.Tensor,
	cIn, h, w, cOut, kH, kW, hOut, wOut, stride, padding int,
	par parallel.Config,
) {
	inputGradData := inputGrad.Data()
	gradData := grad.Data()
	kernelData := kernel.Data()

	parallel.For(cIn, func(inChan int) {
		inputGradCIn := inputGradData[inChan*h*w : (inChan+1)*h*w]

		for outChan := 0; outChan < cOut; outChan++ {
			gradChan := gradData[outChan*hOut*wOut : (outChan+1)*hOut*wOut]
			kernelCIn := kernelData[(outChan*cIn+inChan)*kH*kW : (outChan*cIn+inChan+1)*kH*kW]

			for outH := 0; outH < hOut; outH++ {
				for outW := 0; outW < wOut; outW++ {
					gradVal := gradChan[outH*wOut+outW]
					if gradVal == 0 {
						continue
					}

					for kh := 0; kh < kH; kh++ {
						hPos := outH*stride - padding + kh
						if hPos < 0 || hPos >= h {
							continue
						}
						gradRow := inputGradCIn[hPos*w : (hPos+1)*w]
						kernelRow := kernelCIn[kh*kW : (kh+1)*kW]
						for kw := 0; kw < kW; kw++ {
							wPos := outW*stride - padding + kw
							if wPos >= 0 && wPos < w {
								gradRow[wPos] += gradVal * kernelRow[kw]
							}
						}
					}
				}
			}
		}
	}, par)
}

// conv2dInputBackwardFloat32Stride1NoPad is the specialization for
// stride=1, padding=0: every kernel tap lands in bounds, so the inner
// loops run without position checks.
func conv2dInputBackwardFloat32Stride1NoPad(
	inputGrad, grad, kernel *tensor.Tensor,
	cIn, w, cOut, kH, kW, hOut, wOut int,
	par parallel.Config,
) {
	inputGradData := inputGrad.Data()
	gradData := grad.Data()
	kernelData := kernel.Data()

	h := hOut + kH - 1

	parallel.For(cIn, func(inChan int) {
		inputGradCIn := inputGradData[inChan*h*w : (inChan+1)*h*w]

		for outChan := 0; outChan < cOut; outChan++ {
			gradChan := gradData[outChan*hOut*wOut : (outChan+1)*hOut*wOut]
			kernelCIn := kernelData[(outChan*cIn+inChan)*kH*kW : (outChan*cIn+inChan+1)*kH*kW]

			for outH := 0; outH < hOut; outH++ {
				for outW := 0; outW < wOut; outW++ {
					gradVal := gradChan[outH*wOut+outW]
					if gradVal == 0 {
						continue
					}

					for kh := 0; kh < kH; kh++ {
						gradRow := inputGradCIn[(outH+kh)*w+outW : (outH+kh)*w+outW+kW]
						kernelRow := kernelCIn[kh*kW : (kh+1)*kW]
						for kw, kv := range kernelRow {
							gradRow[kw] += gradVal * kv
						}
					}
				}
			}
		}
	}, par)
}
