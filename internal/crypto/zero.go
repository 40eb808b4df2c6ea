package crypto

// Zero overwrites a byte slice in memory with zeros. Used on every
// secret buffer — master keys, subkeys, plaintext vault bytes — once
// they are no longer needed.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
