package common

// WipeByteArray zeroes b in place. Used for plaintext passwords read from
// the terminal. Nil is a no-op.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
