package criteria

// Built-in criteria presets. The preset names what a topic starts with; each
// entry resolves to a prompt from perturbPrompts plus a flip flag.
var defaultPresets = map[string][]string{
	"AIBAT":       {"spelling", "negation", "synonyms", "paraphrase", "acronyms", "antonyms", "spanish"},
	"Mini-AIBAT":  {"spelling", "synonyms", "paraphrase", "acronyms", "spanish"},
	"M-AIBAT":     {"spanish", "spanglish", "english", "nouns", "spelling", "cognates", "dialect", "loan_word"},
	"Large-AIBAT": {"spelling", "negation", "synonyms", "paraphrase", "acronyms", "antonyms", "spanish", "spanglish", "english", "nouns", "cognates", "dialect", "loan_word", "colloquial"},
}

// DefaultPreset is the preset applied when a topic has no pinned criteria.
const DefaultPreset = "AIBAT"

var perturbPrompts = map[string]string{
	"spelling":   "Introduce minor spelling errors or typos in this text while keeping the meaning clear",
	"negation":   "Add negation words (like 'not', 'never', 'no') to change the meaning of this text",
	"synonyms":   "Replace key words with synonyms in this text while maintaining the same meaning",
	"paraphrase": "Rephrase this text using different words while maintaining the same meaning",
	"acronyms":   "Replace words with their acronyms or expand acronyms to full words in this text",
	"antonyms":   "Replace key words with their antonyms to change the meaning of this text",
	"spanish":    "Translate key words or phrases in this text to Spanish while keeping the rest in English",
	"spanglish":  "Mix English and Spanish words naturally in this text",
	"english":    "Translate this text to clear English while maintaining the meaning",
	"nouns":      "Replace the nouns in this text with similar nouns while keeping the structure",
	"cognates":   "Replace words with cognates (similar-sounding words from other languages) in this text",
	"dialect":    "Rewrite this text using a different dialect or regional variation",
	"loan_word":  "Incorporate loanwords (words borrowed from other languages) into this text",
	"colloquial": "Rewrite this text using colloquial or informal language",
}

var generationPrompts = map[string]string{
	"base":       "Generate new test statements similar to the examples provided. Create variations that test the same concept but with different wording or context.",
	"paraphrase": "Generate paraphrased versions of the example statements using different words but maintaining the same meaning.",
	"synonyms":   "Generate new statements by replacing key words with synonyms in the example statements.",
	"antonyms":   "Generate new statements by replacing key words with antonyms to create opposite meanings from the examples.",
	"negation":   "Generate new statements by adding negation (like 'not') to make the statements express the opposite of the examples.",
	"spanish":    "Generate Spanish translations or Spanish versions of similar statements to the examples.",
	"english":    "Generate English versions or translations of similar statements to the examples.",
	"spanglish":  "Generate Spanglish (mixed English-Spanish) versions of similar statements to the examples.",
	"nouns":      "Generate new statements by changing only the nouns in the example statements while keeping the structure.",
	"cognates":   "Generate new statements using cognates (words that sound similar in different languages) based on the examples.",
	"colloquial": "Generate new statements using colloquial or informal language based on the examples.",
	"loan_word":  "Generate new statements incorporating loanwords (words borrowed from other languages) based on the examples.",
	"dialect":    "Generate new statements using different dialects or regional variations based on the examples.",
}

// Criteria whose application inverts the expected acceptability label.
var labelFlipping = map[string]bool{
	"negation": true,
	"antonyms": true,
}

// PerturbPrompt returns the built-in transformation prompt for a criterion
// name, with a generic fallback for unknown names.
func PerturbPrompt(name string) string {
	if p, ok := perturbPrompts[name]; ok {
		return p
	}
	return "Apply " + name + " perturbation to this text"
}

// GenerationPrompt returns the statement-generation prompt for a criterion
// name, falling back to the base prompt.
func GenerationPrompt(name string) string {
	if p, ok := generationPrompts[name]; ok {
		return p
	}
	return generationPrompts["base"]
}

// FlipsLabel reports whether the named built-in criterion inverts labels.
func FlipsLabel(name string) bool {
	return labelFlipping[name]
}

// Presets returns the names of the built-in presets.
func Presets() []string {
	names := make([]string, 0, len(defaultPresets))
	for name := range defaultPresets {
		names = append(names, name)
	}
	return names
}
