// Package util holds small generic helpers shared across packages.
package util

// CloneSlice clones src into a new slice of length cloneSize.
// A cloneSize of 0 uses len(src).
func CloneSlice[T any](src []T, cloneSize int) []T {
	if cloneSize == 0 {
		cloneSize = len(src)
	}
	clone := make([]T, cloneSize)
	copy(clone, src)

	return clone
}
