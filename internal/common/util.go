package common

// WipeByteArray overwrites the contents of b with zeros. It is used to drop
// plaintext passwords read from the terminal once they have been sent.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
