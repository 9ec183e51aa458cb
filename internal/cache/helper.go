package cache

// UnmarshalCacheValue converts a cached value to the requested type. The
// in-memory cache stores live objects, so this is a typed assertion.
func UnmarshalCacheValue[T any](value interface{}) (T, bool) {
	var zero T
	if value == nil {
		return zero, false
	}
	if typed, ok := value.(T); ok {
		return typed, true
	}
	return zero, false
}
