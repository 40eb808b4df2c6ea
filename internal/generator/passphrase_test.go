package generator

import (
	"strings"
	"testing"
)

func TestGeneratePassphrase_WordCount(t *testing.T) {
	opts := DefaultPassphraseOptions()
	opts.WordCount = 6
	p, err := GeneratePassphrase(opts)
	if err != nil {
		t.Fatalf("GeneratePassphrase: %v", err)
	}
	words := strings.Split(p, opts.Separator)
	if len(words) != 6 {
		t.Errorf("expected 6 words, got %d (%q)", len(words), p)
	}
}

func TestGeneratePassphrase_InvalidWordCount(t *testing.T) {
	opts := DefaultPassphraseOptions()
	opts.WordCount = 2
	if _, err := GeneratePassphrase(opts); err != ErrInvalidPolicy {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
	opts.WordCount = 64
	if _, err := GeneratePassphrase(opts); err != ErrInvalidPolicy {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestGeneratePassphrase_CustomSeparator(t *testing.T) {
	opts := DefaultPassphraseOptions()
	opts.Separator = "."
	p, err := GeneratePassphrase(opts)
	if err != nil {
		t.Fatalf("GeneratePassphrase: %v", err)
	}
	if !strings.Contains(p, ".") {
		t.Errorf("expected separator %q in passphrase %q", opts.Separator, p)
	}
}

func TestGeneratePassphrase_Deterministic(t *testing.T) {
	opts := DefaultPassphraseOptions()
	opts.RandReader = newSeededReader(7)
	a, err := GeneratePassphrase(opts)
	if err != nil {
		t.Fatalf("GeneratePassphrase: %v", err)
	}
	opts.RandReader = newSeededReader(7)
	b, err := GeneratePassphrase(opts)
	if err != nil {
		t.Fatalf("GeneratePassphrase: %v", err)
	}
	if a != b {
		t.Errorf("same seed produced different passphrases: %q vs %q", a, b)
	}
}

func TestWordlist_MinimumSize(t *testing.T) {
	// the word list must have at least 2048 entries.
	if len(wordlist) < 2048 {
		t.Fatalf("wordlist too small: %d words, need >= 2048", len(wordlist))
	}
}

func TestWordlist_NoDuplicates(t *testing.T) {
	seen := make(map[string]bool, len(wordlist))
	for _, w := range wordlist {
		if seen[w] {
			t.Fatalf("duplicate word in wordlist: %q", w)
		}
		seen[w] = true
	}
}
