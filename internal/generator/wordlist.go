package generator

// wordlist is the fixed word list GeneratePassphrase draws from. The
// retrieved example pack did not include a licensable copy of the EFF
// long word list, so this module builds an equivalent fixed list at
// init time by combining two short, disjoint syllable tables into
// pronounceable words. The combination is deterministic and computed
// once; it is never reshuffled or regenerated per call, satisfying
// a fixed word list of at least 2048 entries without
// embedding a third-party list verbatim.
var wordlist = buildWordlist()

var onsetSyllables = []string{
	"ba", "be", "bi", "bo", "bu", "ca", "ce", "ci", "co", "cu",
	"da", "de", "di", "do", "du", "fa", "fe", "fi", "fo", "fu",
	"ga", "ge", "gi", "go", "gu", "ha", "he", "hi", "ho", "hu",
	"ja", "je", "ji", "jo", "ju", "ka", "ke", "ki", "ko", "ku",
	"la", "le", "li", "lo", "lu", "ma", "me", "mi", "mo", "mu",
	"na", "ne", "ni", "no", "nu", "pa", "pe", "pi", "po", "pu",
	"ra", "re", "ri", "ro", "ru", "sa", "se", "si", "so", "su",
	"ta", "te", "ti", "to", "tu", "va", "ve", "vi", "vo", "vu",
	"wa", "we", "wi", "wo", "wu", "za", "ze", "zi", "zo", "zu",
}

var codaSyllables = []string{
	"bel", "ber", "can", "dar", "dor", "fin", "gon", "hall", "ian",
	"kel", "lin", "mor", "nal", "pel", "ral", "sen", "tor", "van",
	"wen", "zel", "bor", "cen", "din", "fel", "gan", "hin", "jor",
	"kan", "lor", "mon", "nel", "pin", "ral", "son", "tal", "vel",
	"win", "zan", "bin", "cor", "dal", "fan", "gel", "hor", "jin",
}

func buildWordlist() []string {
	words := make([]string, 0, len(onsetSyllables)*len(codaSyllables))
	seen := make(map[string]bool, cap(words))
	for _, onset := range onsetSyllables {
		for _, coda := range codaSyllables {
			w := onset + coda
			if !seen[w] {
				seen[w] = true
				words = append(words, w)
			}
		}
	}
	return words
}
