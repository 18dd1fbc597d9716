package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Conv2DInputBackward computes the gradient w.r.t. the input.
//
// With G the output gradient viewed as [C_out, N*H_out*W_out] and K the kernel
// viewed as [C_out, C_in*K_h*K_w]:
//
//	dCol = Gᵀ @ K          [N*H_out*W_out, C_in*K_h*K_w]
//	dX   = col2im(dCol)    [N, C_in, H, W]
//
// References:
//   - "A guide to convolution arithmetic for deep learning" (Dumoulin & Visin, 2016)
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := newConvGeometry("Conv2DInputBackward", input.Shape(), kernel.Shape(), stride, padding)
	gradCF := gradChannelsFirst("Conv2DInputBackward", grad, g)

	dCol := make([]float32, g.colLen*g.colWidth)
	blas32.Gemm(blas.Trans, blas.NoTrans, 1,
		blas32.General{Rows: g.COut, Cols: g.colLen, Stride: g.colLen, Data: gradCF},
		blas32.General{Rows: g.COut, Cols: g.colWidth, Stride: g.colWidth, Data: kernel.AsFloat32()},
		0,
		blas32.General{Rows: g.colLen, Cols: g.colWidth, Stride: g.colWidth, Data: dCol},
	)

	inputGrad := tensor.MustRaw(input.Shape(), cpu.device)
	col2im(inputGrad.AsFloat32(), dCol, g, cpu.parallel)
	return inputGrad
}

// Conv2DKernelBackward computes the gradient w.r.t. the kernel.
//
//	dK = G @ im2col(X)     [C_out, C_in*K_h*K_w]
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := newConvGeometry("Conv2DKernelBackward", input.Shape(), kernel.Shape(), stride, padding)
	gradCF := gradChannelsFirst("Conv2DKernelBackward", grad, g)

	col := make([]float32, g.colLen*g.colWidth)
	im2col(col, input.AsFloat32(), g, cpu.parallel)

	kernelGrad := tensor.MustRaw(kernel.Shape(), cpu.device)
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: g.COut, Cols: g.colLen, Stride: g.colLen, Data: gradCF},
		blas32.General{Rows: g.colLen, Cols: g.colWidth, Stride: g.colWidth, Data: col},
		0,
		blas32.General{Rows: g.COut, Cols: g.colWidth, Stride: g.colWidth, Data: kernelGrad.AsFloat32()},
	)
	return kernelGrad
}

// gradChannelsFirst validates the output gradient and returns it as [C_out, N*H_out*W_out].
func gradChannelsFirst(op string, grad *tensor.RawTensor, g convGeometry) []float32 {
	want := tensor.Shape{g.N, g.COut, g.HOut, g.WOut}
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: gradient shape %v, expected %v", op, grad.Shape(), want))
	}
	out := make([]float32, grad.NumElements())
	batchFirstToChannelsFirst(out, grad.AsFloat32(), g.N, g.COut, g.HOut*g.WOut)
	return out
}
