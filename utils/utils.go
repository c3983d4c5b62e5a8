// Package utils holds small helpers shared across packages.
package utils

// ToPtr returns a pointer to v. Useful for optional model fields.
func ToPtr[T any](v T) *T {
	return &v
}

// IsTrue reports whether a nullable bool is present and true.
func IsTrue(b *bool) bool {
	return b != nil && *b
}
