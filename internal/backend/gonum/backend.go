// Package gonum implements a backend on top of gonum's BLAS and floats packages.
//
// Float64 matrix products go through mat.Dense, float32 through blas32.Gemm.
// Integer dtypes and float32 reductions are delegated to the CPU backend.
package gonum

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"k8s.io/klog/v2"

	"github.com/born-ml/tenalg/internal/backend/cpu"
	"github.com/born-ml/tenalg/internal/backends"
	"github.com/born-ml/tenalg/internal/tensor"
)

// BackendName is the name the gonum backend is registered under.
const BackendName = "gonum"

func init() {
	backends.Register(BackendName, func(config string) (tensor.Backend, error) {
		if config != "" {
			klog.Warningf("gonum backend: ignoring configuration %q", config)
		}
		return New(), nil
	})
}

// Verify that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// Backend runs matrix products through gonum. Operations gonum does not cover
// fall through to the embedded CPU backend.
type Backend struct {
	*cpu.CPUBackend
}

// New creates a new gonum backend.
func New() *Backend {
	return &Backend{CPUBackend: cpu.New()}
}

// Name returns the backend name.
func (g *Backend) Name() string {
	return "gonum"
}

// Mul performs element-wise multiplication with floats.MulTo for float64.
func (g *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != tensor.Float64 || b.DType() != tensor.Float64 {
		return g.CPUBackend.Mul(a, b)
	}
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("mul: shape mismatch %v vs %v", a.Shape(), b.Shape()))
	}

	result := g.alloc("mul", a.Shape(), tensor.Float64)
	floats.MulTo(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	return result
}

// Sum computes the total sum with floats.Sum for float64.
func (g *Backend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float64 {
		return g.CPUBackend.Sum(x)
	}
	result := g.alloc("sum", tensor.Shape{}, tensor.Float64)
	result.AsFloat64()[0] = floats.Sum(x.AsFloat64())
	return result
}

// MatMul performs (M, K) @ (K, N) -> (M, N) through BLAS.
func (g *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: only 2D tensors supported, got %dD and %dD", len(aShape), len(bShape)))
	}
	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		panic(fmt.Sprintf("matmul: shape mismatch [%d,%d] @ [%d,%d]", m, k, kAlt, n))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	// gonum refuses zero-length matrices.
	if m == 0 || k == 0 || n == 0 {
		return g.CPUBackend.MatMul(a, b)
	}

	switch a.DType() {
	case tensor.Float64:
		return g.matmulFloat64(a, b, m, k, n)
	case tensor.Float32:
		return g.matmulFloat32(a, b, m, k, n)
	default:
		return g.CPUBackend.MatMul(a, b)
	}
}

func (g *Backend) matmulFloat64(a, b *tensor.RawTensor, m, k, n int) *tensor.RawTensor {
	result := g.alloc("matmul", tensor.Shape{m, n}, tensor.Float64)

	// mat.Dense wraps the slices without copying; Mul only reads a and b.
	lhs := mat.NewDense(m, k, a.AsFloat64())
	rhs := mat.NewDense(k, n, b.AsFloat64())
	out := mat.NewDense(m, n, result.AsFloat64())
	out.Mul(lhs, rhs)
	return result
}

func (g *Backend) matmulFloat32(a, b *tensor.RawTensor, m, k, n int) *tensor.RawTensor {
	result := g.alloc("matmul", tensor.Shape{m, n}, tensor.Float32)

	lhs := blas32.General{Rows: m, Cols: k, Stride: k, Data: a.AsFloat32()}
	rhs := blas32.General{Rows: k, Cols: n, Stride: n, Data: b.AsFloat32()}
	out := blas32.General{Rows: m, Cols: n, Stride: n, Data: result.AsFloat32()}
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, lhs, rhs, 0, out)
	return result
}

func (g *Backend) alloc(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, g.Device())
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
