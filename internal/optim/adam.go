package optim

import (
	"math"

	"github.com/born-ml/cyclegan/internal/nn"
	"github.com/born-ml/cyclegan/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient       // First moment
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²      // Second moment
//	m_hat = m_t / (1 - beta1^t)                        // Bias correction
//	v_hat = v_t / (1 - beta2^t)                        // Bias correction
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)  // Parameter update
//
// Moments are kept per parameter, so one Adam can serve several networks.
// The timestep t advances on every ApplyGradients call.
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	t     int                                 // Timestep for bias correction
	m     map[*nn.Parameter]*tensor.RawTensor // First moment estimates
	v     map[*nn.Parameter]*tensor.RawTensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-7)
}

// NewAdam creates a new Adam optimizer.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-7
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}

	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		m:     make(map[*nn.Parameter]*tensor.RawTensor),
		v:     make(map[*nn.Parameter]*tensor.RawTensor),
	}
}

// ApplyGradients performs a single optimization step over params.
//
// Applies Adam update to every parameter:
//  1. Update biased first moment estimate
//  2. Update biased second moment estimate
//  3. Compute bias-corrected moment estimates
//  4. Update parameters
func (a *Adam) ApplyGradients(params []*nn.Parameter, grads []*tensor.RawTensor) error {
	if err := checkGradients(params, grads); err != nil {
		return err
	}

	a.t++

	// bias_correction1 = 1 - beta1^t
	// bias_correction2 = 1 - beta2^t
	biasCorrection1 := float32(1.0 - math.Pow(float64(a.beta1), float64(a.t)))
	biasCorrection2 := float32(1.0 - math.Pow(float64(a.beta2), float64(a.t)))

	for i, param := range params {
		m, ok := a.m[param]
		if !ok {
			m = tensor.MustRaw(param.Tensor().Shape(), param.Tensor().Device())
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = tensor.MustRaw(param.Tensor().Shape(), param.Tensor().Device())
			a.v[param] = v
		}

		a.updateParameter(param, grads[i], m, v, biasCorrection1, biasCorrection2)
	}
	return nil
}

// updateParameter performs Adam update for a single parameter.
func (a *Adam) updateParameter(
	param *nn.Parameter,
	grad, m, v *tensor.RawTensor,
	biasCorrection1, biasCorrection2 float32,
) {
	gradData := grad.AsFloat32()
	mData := m.AsFloat32()
	vData := v.AsFloat32()
	paramData := param.Tensor().Raw().AsFloat32()

	for i := range paramData {
		g := gradData[i]

		mData[i] = a.beta1*mData[i] + (1.0-a.beta1)*g
		vData[i] = a.beta2*vData[i] + (1.0-a.beta2)*g*g

		mHat := mData[i] / biasCorrection1
		vHat := vData[i] / biasCorrection2

		paramData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}

// GetTimestep returns the current timestep.
func (a *Adam) GetTimestep() int {
	return a.t
}
