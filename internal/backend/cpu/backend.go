// Package cpu implements the pure Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/born-ml/tenalg/internal/backends"
	"github.com/born-ml/tenalg/internal/parallel"
	"github.com/born-ml/tenalg/internal/tensor"
)

// BackendName is the name the CPU backend is registered under.
const BackendName = "cpu"

func init() {
	backends.Register(BackendName, func(config string) (tensor.Backend, error) {
		par, err := parallel.ParseConfig(config)
		if err != nil {
			return nil, errors.Wrap(err, "cpu backend")
		}
		return NewWithConfig(par), nil
	})
}

// Verify that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

// CPUBackend implements tensor operations on CPU with plain Go loops.
// Matrix products are split by rows across goroutines.
// It holds no mutable state and is safe for concurrent use.
type CPUBackend struct {
	device tensor.Device
	par    parallel.Config
}

// New creates a new CPU backend using one worker per CPU.
func New() *CPUBackend {
	return NewWithConfig(parallel.DefaultConfig())
}

// NewWithConfig creates a new CPU backend with the given parallelism.
//
// As a registered backend the configuration string is parsed by
// parallel.ParseConfig, e.g. TENALG_BACKEND=cpu:workers=4.
func NewWithConfig(par parallel.Config) *CPUBackend {
	return &CPUBackend{
		device: tensor.CPU,
		par:    par,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// Mul performs element-wise multiplication of two tensors with the same shape.
// The inputs are left untouched.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("mul: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("mul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	result, err := tensor.NewRaw(a.Shape(), a.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("mul: failed to create result tensor: %v", err))
	}

	switch a.DType() {
	case tensor.Float32:
		mulVectorized(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		mulVectorized(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	case tensor.Int32:
		mulVectorized(result.AsInt32(), a.AsInt32(), b.AsInt32())
	case tensor.Int64:
		mulVectorized(result.AsInt64(), a.AsInt64(), b.AsInt64())
	default:
		panic(fmt.Sprintf("mul: unsupported dtype %s", a.DType()))
	}

	return result
}

// Reshape returns a copy of the tensor laid out with a different shape.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}
