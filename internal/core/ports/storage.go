package ports

// KVStore is the durable local key-value store backing the currency cache.
// Values are JSON-serializable. The store is a side-channel cache, never a
// source of truth: a corrupt or unparseable stored value is treated as
// absent, not an error.
type KVStore interface {
	// Get unmarshals the stored value for key into dest and reports whether a
	// usable value was found. dest is left untouched on a miss.
	Get(key string, dest any) bool
	Set(key string, value any) error
	Remove(key string) error
}
