package cpu

import "github.com/born-ml/tenalg/internal/tensor"

// mulVectorized computes dst = a * b element-wise.
// Requires: len(dst) == len(a) == len(b).
func mulVectorized[T tensor.DType](dst, a, b []T) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// sum returns the total of src, accumulated in the element type.
func sum[T tensor.DType](src []T) T {
	var total T
	for _, v := range src {
		total += v
	}
	return total
}
