// Package tensor provides the dense CPU tensor substrate used by the
// symbolic graph executor.
//
// Tensors are row-major multi-dimensional arrays of float32 or int32.
// The package carries exactly the numeric kernels the encoder graphs
// need: broadcast arithmetic, matrix multiplication (plain and batched),
// axis permutation, concatenation, softmax, layer normalization,
// embedding lookup and length-aware sequence reversal.
package tensor
