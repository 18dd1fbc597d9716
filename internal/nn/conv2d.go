package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/cyclegan/internal/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Performs convolution: output = Conv2D(input, weight) + bias
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// Example:
//
//	// 1 channel -> 32 channels, 3x3 kernel, "same" padding
//	conv := nn.NewConv2D(1, 32, 3, 3, 1, 1, true, rng, backend)
//	output := conv.Forward(input) // [N, 32, 28, 28] for [N, 1, 28, 28]
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [out_channels] or nil

	backend tensor.Backend
}

// NewConv2D creates a new 2D convolutional layer.
//
// Initialization:
//   - Weights: Xavier/Glorot uniform initialization drawn from rng
//   - Bias: Zeros
func NewConv2D(
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	rng *rand.Rand,
	backend tensor.Backend,
) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	// For Conv2D:
	//   fan_in = in_channels * kernel_h * kernel_w
	//   fan_out = out_channels * kernel_h * kernel_w
	fanIn := inChannels * kernelH * kernelW
	fanOut := outChannels * kernelH * kernelW
	weight := Xavier(fanIn, fanOut, tensor.Shape{outChannels, inChannels, kernelH, kernelW}, rng, backend)

	var bias *Parameter
	if useBias {
		bias = NewParameter("bias", Zeros(tensor.Shape{outChannels}, backend))
	}

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("weight", weight),
		bias:        bias,
		backend:     backend,
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", inputShape[1], c.inChannels))
	}

	output := input.Conv2D(c.weight.Tensor(), c.stride, c.padding)

	if c.bias != nil {
		// Reshape through the Tensor API so the gradient reaches the bias.
		output = output.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1))
	}

	return output
}

// Parameters returns the weight and, if present, the bias.
func (c *Conv2D) Parameters() []*Parameter {
	if c.bias == nil {
		return []*Parameter{c.weight}
	}
	return []*Parameter{c.weight, c.bias}
}

// StateDict returns {"weight", "bias"}.
func (c *Conv2D) StateDict() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor, 2)
	for _, p := range c.Parameters() {
		out[p.Name()] = p.Tensor().Raw()
	}
	return out
}

// LoadStateDict loads weight and bias.
func (c *Conv2D) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	known := make(map[string]bool, 2)
	for _, p := range c.Parameters() {
		if err := p.Load(stateDict[p.Name()]); err != nil {
			return err
		}
		known[p.Name()] = true
	}
	return unexpectedKeys(stateDict, known)
}

// SetTraining is a no-op for convolutions.
func (c *Conv2D) SetTraining(bool) {}

// Weight returns the kernel parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

// OutputSize returns the spatial output size for an input of height h and width w.
func (c *Conv2D) OutputSize(h, w int) (int, int) {
	return (h+2*c.padding-c.kernelSize[0])/c.stride + 1,
		(w+2*c.padding-c.kernelSize[1])/c.stride + 1
}
