package generator

import (
	"io"
	"strings"
)

// PassphraseOptions configures GeneratePassphrase.
type PassphraseOptions struct {
	WordCount  int
	Separator  string
	RandReader io.Reader
}

// DefaultPassphraseOptions returns the recommended defaults.
func DefaultPassphraseOptions() PassphraseOptions {
	return PassphraseOptions{WordCount: 4, Separator: "-"}
}

// GeneratePassphrase draws WordCount words, uniformly and with
// replacement, from the fixed word list and joins them with Separator.
func GeneratePassphrase(opts PassphraseOptions) (string, error) {
	if opts.WordCount < 3 || opts.WordCount > 32 {
		return "", ErrInvalidPolicy
	}
	rng := opts.RandReader
	if rng == nil {
		rng = defaultRNG()
	}

	words := make([]string, opts.WordCount)
	for i := range words {
		idx, err := randIndex(rng, len(wordlist))
		if err != nil {
			return "", err
		}
		words[i] = wordlist[idx]
	}
	return strings.Join(words, opts.Separator), nil
}
