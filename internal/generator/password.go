package generator

import "io"

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars     = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"
	ambiguousChars = "0OlI1"
)

// PasswordOptions configures GeneratePassword. Zero value plus the
// default is length 20 with every category
// enabled.
type PasswordOptions struct {
	Length           int
	Lowercase        bool
	Uppercase        bool
	Digits           bool
	Symbols          bool
	ExcludeAmbiguous bool
	ExcludeChars     string

	// RandReader overrides the RNG; nil uses crypto/rand. Tests supply a
	// seeded deterministic reader here to assert reproducibility.
	RandReader io.Reader
}

// DefaultPasswordOptions returns the recommended defaults.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		Length:    20,
		Lowercase: true,
		Uppercase: true,
		Digits:    true,
		Symbols:   true,
	}
}

// category is one enabled character class and its filtered members.
type category struct {
	chars []byte
}

func (o PasswordOptions) categories() []category {
	exclude := make(map[byte]bool, len(o.ExcludeChars)+len(ambiguousChars))
	for i := 0; i < len(o.ExcludeChars); i++ {
		exclude[o.ExcludeChars[i]] = true
	}
	if o.ExcludeAmbiguous {
		for i := 0; i < len(ambiguousChars); i++ {
			exclude[ambiguousChars[i]] = true
		}
	}

	filter := func(s string) []byte {
		out := make([]byte, 0, len(s))
		for i := 0; i < len(s); i++ {
			if !exclude[s[i]] {
				out = append(out, s[i])
			}
		}
		return out
	}

	var cats []category
	if o.Lowercase {
		if c := filter(lowercaseChars); len(c) > 0 {
			cats = append(cats, category{chars: c})
		}
	}
	if o.Uppercase {
		if c := filter(uppercaseChars); len(c) > 0 {
			cats = append(cats, category{chars: c})
		}
	}
	if o.Digits {
		if c := filter(digitChars); len(c) > 0 {
			cats = append(cats, category{chars: c})
		}
	}
	if o.Symbols {
		if c := filter(symbolChars); len(c) > 0 {
			cats = append(cats, category{chars: c})
		}
	}
	return cats
}

// GeneratePassword samples Length characters uniformly from the union
// of the enabled, filtered categories, then guarantees at least one
// character from every enabled category is present (when Length allows
// it) by overwriting, for each missing category, the first position
// whose character is not the only one of its own category, then
// reshuffling with the same RNG.
func GeneratePassword(opts PasswordOptions) (string, error) {
	if opts.Length < 8 || opts.Length > 256 {
		return "", ErrInvalidPolicy
	}
	cats := opts.categories()
	if len(cats) == 0 {
		return "", ErrInvalidPolicy
	}

	var pool []byte
	for _, c := range cats {
		pool = append(pool, c.chars...)
	}

	rng := opts.RandReader
	if rng == nil {
		rng = defaultRNG()
	}

	out := make([]byte, opts.Length)
	for i := range out {
		idx, err := randIndex(rng, len(pool))
		if err != nil {
			return "", err
		}
		out[i] = pool[idx]
	}

	if opts.Length >= len(cats) {
		missing := make([]category, 0, len(cats))
		for _, c := range cats {
			present := false
			for _, b := range out {
				if containsByte(c.chars, b) {
					present = true
					break
				}
			}
			if !present {
				missing = append(missing, c)
			}
		}
		for _, c := range missing {
			idx, err := randIndex(rng, len(c.chars))
			if err != nil {
				return "", err
			}
			for i, b := range out {
				n := 0
				for _, oc := range cats {
					if containsByte(oc.chars, b) {
						for _, o := range out {
							if containsByte(oc.chars, o) {
								n++
							}
						}
						break
					}
				}
				if n > 1 {
					out[i] = c.chars[idx]
					break
				}
			}
		}
		if err := shuffle(rng, out); err != nil {
			return "", err
		}
	}

	return string(out), nil
}

func containsByte(set []byte, b byte) bool {
	for _, c := range set {
		if c == b {
			return true
		}
	}
	return false
}
