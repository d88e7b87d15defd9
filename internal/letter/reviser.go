package letter

import "strings"

// giftKeywords make an instruction a wishlist refresh rather than a text
// edit; the message stays untouched and only the re-render picks up the
// current products.
var giftKeywords = []string{"gift", "product", "regalo", "wishlist", "item"}

// boilerplate suffixes users tack onto "add ..." instructions.
var addSuffixes = []string{
	", make it warm and heartfelt",
	", make it heartfelt",
	", make it warm",
}

// KeywordReviser is the best-effort string-matching edit strategy. It is an
// external behavior contract: keep the rules exactly as documented rather
// than improving them in place.
type KeywordReviser struct{}

// Revise applies the first matching rule, in precedence order:
// gift keywords leave the message alone; "add" appends extracted text as a
// new paragraph; "change"/"modify"/"update" appends the text after "to".
// Anything else leaves the message unchanged.
func (KeywordReviser) Revise(current, instructions string) string {
	lower := strings.ToLower(instructions)

	for _, keyword := range giftKeywords {
		if strings.Contains(lower, keyword) {
			return current
		}
	}

	if strings.Contains(lower, "add") {
		addition := extractAddition(instructions, lower)
		if addition == "" {
			return current
		}
		if current == "" {
			return addition
		}
		return current + "\n\n" + addition
	}

	if strings.Contains(lower, "change") || strings.Contains(lower, "modify") || strings.Contains(lower, "update") {
		if current == "" {
			return current
		}
		_, after, found := strings.Cut(instructions, "to")
		if !found {
			return current
		}
		return current + "\n\n" + strings.TrimSpace(after)
	}

	return current
}

func extractAddition(instructions, lower string) string {
	var addition string
	switch {
	case strings.Contains(lower, "that"):
		// Prefer the text after the first literal "that".
		if _, after, found := strings.Cut(instructions, "that"); found {
			addition = strings.TrimSpace(after)
			for _, suffix := range addSuffixes {
				addition = strings.TrimSpace(strings.Replace(addition, suffix, "", 1))
			}
		}
	case strings.Contains(instructions, ":"):
		_, after, _ := strings.Cut(instructions, ":")
		addition = strings.TrimSpace(after)
	default:
		addition = instructions
		if strings.HasPrefix(lower, "add") {
			addition = strings.TrimSpace(addition[3:])
		}
		addition = strings.ReplaceAll(addition, "in the letter", "")
		addition = strings.ReplaceAll(addition, "to the letter", "")
		addition = strings.TrimSpace(strings.ReplaceAll(addition, "that", ""))
	}

	addition = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(addition), ","))
	return addition
}
