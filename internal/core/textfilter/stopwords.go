package textfilter

// Curated stopword sets per language. Words here never count toward the
// real-word minimum; callers extend per language via WithStopwords

func defaultStopwords() map[string]map[string]struct{} {
	return map[string]map[string]struct{}{
		"en": toSet([]string{
			"the", "and", "but", "for", "are", "was", "were", "has", "had",
			"have", "this", "that", "with", "you", "yeah", "yes", "okay",
			"like", "just", "umm", "uhh", "hmm",
		}),
		"es": toSet([]string{
			"que", "los", "las", "una", "uno", "por", "para", "con", "del",
			"este", "esta", "pero", "como",
		}),
		"de": toSet([]string{
			"der", "die", "das", "und", "ist", "ein", "eine", "mit", "den",
			"nicht", "auch", "aber", "sie",
		}),
		"fr": toSet([]string{
			"les", "des", "une", "est", "que", "qui", "pour", "avec", "dans",
			"pas", "mais", "oui",
		}),
	}
}

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
