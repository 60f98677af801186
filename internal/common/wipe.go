package common

// WipeBytes overwrites b with zeros. Use it on buffers that held secrets,
// such as session tokens read from the terminal.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
