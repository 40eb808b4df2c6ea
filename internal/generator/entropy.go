package generator

import "math"

// PasswordEntropyBits returns length × log2(|charset|) for the given
// password options, or 0 if no category is enabled.
func PasswordEntropyBits(opts PasswordOptions) float64 {
	cats := opts.categories()
	if len(cats) == 0 {
		return 0
	}
	poolSize := 0
	for _, c := range cats {
		poolSize += len(c.chars)
	}
	return float64(opts.Length) * math.Log2(float64(poolSize))
}

// PassphraseEntropyBits returns word_count × log2(|wordlist|).
func PassphraseEntropyBits(opts PassphraseOptions) float64 {
	if opts.WordCount <= 0 {
		return 0
	}
	return float64(opts.WordCount) * math.Log2(float64(len(wordlist)))
}
