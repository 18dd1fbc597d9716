package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/cyclegan/internal/parallel"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// convGeometry holds the dimensions shared by the forward and backward passes.
type convGeometry struct {
	N, CIn, H, W     int
	COut, KH, KW     int
	HOut, WOut       int
	stride, padding  int
	colWidth, colLen int // colWidth = CIn*KH*KW, colLen = N*HOut*WOut
}

func newConvGeometry(op string, inputShape, kernelShape tensor.Shape, stride, padding int) convGeometry {
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %dD", op, len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("%s: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", op, len(kernelShape)))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("%s: invalid stride=%d padding=%d", op, stride, padding))
	}
	if inputShape[1] != kernelShape[1] {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, inputShape[1], kernelShape[1]))
	}

	g := convGeometry{
		N: inputShape[0], CIn: inputShape[1], H: inputShape[2], W: inputShape[3],
		COut: kernelShape[0], KH: kernelShape[2], KW: kernelShape[3],
		stride: stride, padding: padding,
	}
	// out = (in + 2*padding - k) / stride + 1
	g.HOut = (g.H+2*padding-g.KH)/stride + 1
	g.WOut = (g.W+2*padding-g.KW)/stride + 1
	if g.HOut <= 0 || g.WOut <= 0 {
		panic(fmt.Sprintf("%s: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", op, g.HOut, g.WOut))
	}
	g.colWidth = g.CIn * g.KH * g.KW
	g.colLen = g.N * g.HOut * g.WOut
	return g
}

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Algorithm: Im2col
//  1. Transform input patches into rows of a column matrix (im2col)
//  2. View the kernel as a [C_out, C_in*K_h*K_w] matrix
//  3. Multiply with SGEMM: kernel @ colᵀ -> [C_out, N*H_out*W_out]
//  4. Rearrange to [N, C_out, H_out, W_out]
//
// Reference: "High Performance Convolutional Neural Networks for Document Processing"
// (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	g := newConvGeometry("conv2d", input.Shape(), kernel.Shape(), stride, padding)

	col := make([]float32, g.colLen*g.colWidth)
	im2col(col, input.AsFloat32(), g, cpu.parallel)

	// [C_out, N*H_out*W_out]
	prod := make([]float32, g.COut*g.colLen)
	blas32.Gemm(blas.NoTrans, blas.Trans, 1,
		blas32.General{Rows: g.COut, Cols: g.colWidth, Stride: g.colWidth, Data: kernel.AsFloat32()},
		blas32.General{Rows: g.colLen, Cols: g.colWidth, Stride: g.colWidth, Data: col},
		0,
		blas32.General{Rows: g.COut, Cols: g.colLen, Stride: g.colLen, Data: prod},
	)

	output := tensor.MustRaw(tensor.Shape{g.N, g.COut, g.HOut, g.WOut}, cpu.device)
	channelsFirstToBatchFirst(output.AsFloat32(), prod, g.N, g.COut, g.HOut*g.WOut)
	return output
}

// im2col transforms input [N, C, H, W] into col [N*H_out*W_out, C*K_h*K_w].
//
// Each row of col corresponds to one output position, each column to one
// kernel weight. Positions that fall into the padding read as zero. Every
// (sample, channel) pair fills a disjoint block of col, so pairs run in
// parallel.
func im2col(col, input []float32, g convGeometry, cfg parallel.Config) {
	parallel.ForBatch(g.N, g.CIn, func(n, c int) {
		plane := input[(n*g.CIn+c)*g.H*g.W:]
		row := n * g.HOut * g.WOut
		for outH := 0; outH < g.HOut; outH++ {
			for outW := 0; outW < g.WOut; outW++ {
				hStart := outH*g.stride - g.padding
				wStart := outW*g.stride - g.padding
				idx := row*g.colWidth + c*g.KH*g.KW
				for kh := 0; kh < g.KH; kh++ {
					h := hStart + kh
					for kw := 0; kw < g.KW; kw++ {
						w := wStart + kw
						if h >= 0 && h < g.H && w >= 0 && w < g.W {
							col[idx] = plane[h*g.W+w]
						} else {
							col[idx] = 0
						}
						idx++
					}
				}
				row++
			}
		}
	}, cfg)
}

// col2im is the adjoint of im2col: it scatters col back into dst, summing
// entries that came from the same input position. dst must be zeroed.
// Each (sample, channel) pair owns one plane of dst.
func col2im(dst, col []float32, g convGeometry, cfg parallel.Config) {
	parallel.ForBatch(g.N, g.CIn, func(n, c int) {
		plane := dst[(n*g.CIn+c)*g.H*g.W:]
		row := n * g.HOut * g.WOut
		for outH := 0; outH < g.HOut; outH++ {
			for outW := 0; outW < g.WOut; outW++ {
				hStart := outH*g.stride - g.padding
				wStart := outW*g.stride - g.padding
				idx := row*g.colWidth + c*g.KH*g.KW
				for kh := 0; kh < g.KH; kh++ {
					h := hStart + kh
					for kw := 0; kw < g.KW; kw++ {
						w := wStart + kw
						if h >= 0 && h < g.H && w >= 0 && w < g.W {
							plane[h*g.W+w] += col[idx]
						}
						idx++
					}
				}
				row++
			}
		}
	}, cfg)
}

// channelsFirstToBatchFirst rearranges [C, N, P] into [N, C, P].
func channelsFirstToBatchFirst(dst, src []float32, n, c, p int) {
	for ci := 0; ci < c; ci++ {
		for ni := 0; ni < n; ni++ {
			copy(dst[(ni*c+ci)*p:(ni*c+ci+1)*p], src[(ci*n+ni)*p:])
		}
	}
}

// batchFirstToChannelsFirst rearranges [N, C, P] into [C, N, P].
func batchFirstToChannelsFirst(dst, src []float32, n, c, p int) {
	for ni := 0; ni < n; ni++ {
		for ci := 0; ci < c; ci++ {
			copy(dst[(ci*n+ni)*p:(ci*n+ni+1)*p], src[(ni*c+ci)*p:])
		}
	}
}
