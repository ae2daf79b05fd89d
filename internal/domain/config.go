package domain

// KeyPrefix namespaces every key the service writes to the document store.
// Overridden once at startup from storage.key_prefix.
var KeyPrefix = "bazaarmkt:"

// SetKeyPrefix replaces the store key prefix. Must be called before any repository is used.
func SetKeyPrefix(p string) {
	if p != "" {
		KeyPrefix = p
	}
}
