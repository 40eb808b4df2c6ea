// Package generator produces passwords and passphrases with uniform
// sampling over a cryptographic RNG. It never touches the vault; the UI
// calls it directly and the result flows into a VaultItem only if the
// user saves it.
package generator

import "errors"

// ErrInvalidPolicy is returned when the requested options cannot
// produce any output, e.g. every character category is disabled or the
// exclusion set empties the charset.
var ErrInvalidPolicy = errors.New("generator: invalid policy")
