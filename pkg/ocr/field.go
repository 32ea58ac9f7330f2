package ocr

// Field carries a parsed value and whether it came from the text or is the
// default used when extraction failed.
type Field[T any] struct {
	Value     T
	Extracted bool
}

// Found wraps an extracted value.
func Found[T any](v T) Field[T] {
	return Field[T]{Value: v, Extracted: true}
}

// Missing returns the zero value flagged as defaulted.
func Missing[T any]() Field[T] {
	return Field[T]{}
}
