package tensor

// Backend defines the numeric capabilities the inner product is built on.
// Backends handle the actual computation for tensor operations.
//
// Implementations:
//   - cpu: Pure Go loops over contiguous buffers.
//   - gonum: BLAS-backed matrix products via gonum.
//
// Backends never modify their inputs. Programmer errors (mismatched shapes,
// unsupported dtypes) panic.
type Backend interface {
	// Mul performs element-wise multiplication of two tensors of the same shape.
	Mul(a, b *RawTensor) *RawTensor

	// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) -> (M, N).
	MatMul(a, b *RawTensor) *RawTensor

	// Reshape returns a tensor with the same data laid out with newShape.
	Reshape(t *RawTensor, newShape Shape) *RawTensor

	// Sum returns the total sum as a rank-0 tensor.
	Sum(x *RawTensor) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
