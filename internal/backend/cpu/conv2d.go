package cpu

import (
	"fmt"

	"github.com/xdxdVSxdxd/deep-dream/internal/parallel"
	"github.com/xdxdVSxdxd/deep-dream/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [C_in, H, W]
// Kernel shape: [C_out, C_in, K_h, K_w]
// Output shape: [C_out, out_h, out_w]
//
// Where:
//
//	out_h = (H + 2*padding - K_h) / stride + 1
//	out_w = (W + 2*padding - K_w) / stride + 1
//
// Algorithm:
//  1. Transform input patches into columns (im2col)
//  2. Treat the kernel as a [C_out, C_in*K_h*K_w] matrix
//  3. Matrix-multiply; the row-major product is already the
//     [C_out, out_h, out_w] output layout
//
// Im2col converts convolution into a cache-friendly matrix product;
// see "High Performance Convolutional Neural Networks for Document
// Processing" (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.Tensor, stride, padding int) *tensor.Tensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 3 {
		panic(fmt.Sprintf("conv2d: input must be 3D [C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	cIn := inputShape[0]
	h := inputShape[1]
	w := inputShape[2]
	cOut := kernelShape[0]
	kH := kernelShape[2]
	kW := kernelShape[3]

	if cIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", cIn, kernelShape[1]))
	}

	hOut := (h+2*padding-kH)/stride + 1
	wOut := (w+2*padding-kW)/stride + 1
	if hOut <= 0 || wOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions %dx%d (kernel=%dx%d, stride=%d, padding=%d, input=%dx%d)",
			hOut, wOut, kH, kW, stride, padding, h, w))
	}

	output, err := tensor.New(tensor.Shape{cOut, hOut, wOut})
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	conv2dFloat32(output, input, kernel, cIn, h, w, cOut, kH, kW, hOut, wOut, stride, padding, cpu.par)
	return output
}

// conv2dFloat32 performs the im2col transform and the kernel-times-
// columns matrix product. With a single image the product's row-major
// layout [C_out, out_h*out_w] is exactly the output layout, so no
// rearrangement pass is needed. Output channels are independent, so the
// product loop splits across goroutines.
func conv2dFloat32(output, input, kernel *tensor.Tensor, cIn, h, w, cOut, kH, kW, hOut, wOut, stride, padding int, par parallel.Config) {
	inputData := input.Data()
	kernelData := kernel.Data()
	outputData := output.Data()

	// Im2col: [out_h*out_w, C_in*K_h*K_w]
	colWidth := cIn * kH * kW
	colHeight := hOut * wOut
	colBuf := make([]float32, colHeight*colWidth)
	im2colFloat32(colBuf, inputData, cIn, h, w, kH, kW, hOut, wOut, stride, padding)

	// result[i, j] = sum_k kernel[i, k] * colBuf[j, k]
	parallel.For(cOut, func(i int) {
		kernelRow := kernelData[i*colWidth : (i+1)*colWidth]
		outRow := outputData[i*colHeight : (i+1)*colHeight]
		for j := 0; j < colHeight; j++ {
			colRow := colBuf[j*colWidth : (j+1)*colWidth]
			var sum float32
			for k, kv := range kernelRow {
				sum += kv * colRow[k]
			}
			outRow[j] = sum
		}
	}, par)
}

// im2colFloat32 extracts one input patch per output position into the
// rows of colBuf, zero-filling positions that fall in the padding.
func im2colFloat32(colBuf, inputData []float32, c, h, w, kH, kW, hOut, wOut, stride, padding int) {
	colWidth := c * kH * kW
	colIdx := 0

	for outH := 0; outH < hOut; outH++ {
		for outW := 0; outW < wOut; outW++ {
			hStart := outH*stride - padding
			wStart := outW*stride - padding
			bufIdx := colIdx * colWidth

			for ch := 0; ch < c; ch++ {
				channel := inputData[ch*h*w : (ch+1)*h*w]
				for kh := 0; kh < kH; kh++ {
					y := hStart + kh
					if y < 0 || y >= h {
						for kw := 0; kw < kW; kw++ {
							colBuf[bufIdx] = 0
							bufIdx++
						}
						continue
					}
					row := channel[y*w : (y+1)*w]
					for kw := 0; kw < kW; kw++ {
						x := wStart + kw
						if x >= 0 && x < w {
							colBuf[bufIdx] = row[x]
						} else {
							colBuf[bufIdx] = 0
						}
						bufIdx++
					}
				}
			}
			colIdx++
		}
	}
}
