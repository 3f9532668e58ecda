package unit

// Binary byte sizes.
const (
	Byte     = 1
	Kibibyte = 1024 * Byte
	Mebibyte = 1024 * Kibibyte
	Gibibyte = 1024 * Mebibyte
)
