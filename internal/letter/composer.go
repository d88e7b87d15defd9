// Package letter renders and incrementally edits the session letter.
//
// The stored content embeds a literal [PRODUCTS] marker; substituting the
// live wishlist for the marker is the client's presentation concern. Edits
// never track the message separately: the editable portion is re-derived
// from the current content each time, so the rendered text is the single
// source of truth.
package letter

import "strings"

// ProductsMarker is the placeholder the client replaces with the rendered
// wishlist.
const ProductsMarker = "[PRODUCTS]"

const (
	salutationPrefix = "Dear"
	productsIntro    = "I'm bringing you these wonderful gifts:"
	closingLine      = "I hope you have a magical Christmas filled with joy, love, and happiness!"
	signOff          = "With lots of love and Christmas cheer,"
	signature        = "Santa Claus"
	emojiLine        = "🎅🎄🎁"
)

// Reviser rewrites the editable message portion according to free-text
// instructions. The keyword implementation below is deliberately crude; the
// interface is the swap point for a language-model rewrite.
type Reviser interface {
	Revise(current, instructions string) string
}

// Composer builds letter content from a recipient, a message and the
// presence of wishlist items.
type Composer struct {
	reviser Reviser
}

func NewComposer(reviser Reviser) *Composer {
	return &Composer{reviser: reviser}
}

// Compose renders a fresh letter.
func (c *Composer) Compose(recipient, message string, hasGifts bool) string {
	return render(recipient, message, hasGifts)
}

// Edit re-derives the message from the current content, applies the revision
// heuristic and re-renders against the live wishlist state.
func (c *Composer) Edit(recipient, currentContent, instructions string, hasGifts bool) string {
	message := ExtractMessage(currentContent)
	revised := c.reviser.Revise(message, instructions)
	return render(recipient, revised, hasGifts)
}

func render(recipient, message string, hasGifts bool) string {
	var b strings.Builder
	b.WriteString(salutationPrefix + " " + recipient + ",\n\n")
	b.WriteString(message + "\n\n")
	if hasGifts {
		b.WriteString(productsIntro + "\n\n")
		b.WriteString(ProductsMarker + "\n\n")
	}
	b.WriteString(closingLine + "\n\n")
	b.WriteString(signOff + "\n")
	b.WriteString(signature + "\n")
	b.WriteString(emojiLine)
	return b.String()
}

// ExtractMessage recovers the editable message from rendered content: the
// salutation line is dropped and everything from the products intro, closing,
// sign-off, signature, marker or emoji line onward is cut.
func ExtractMessage(content string) string {
	var parts []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, salutationPrefix):
			continue
		case strings.HasPrefix(trimmed, "I'm bringing"),
			strings.HasPrefix(trimmed, "I hope you have"),
			strings.HasPrefix(trimmed, "With lots"),
			strings.HasPrefix(trimmed, signature),
			strings.Contains(trimmed, "🎅"),
			strings.Contains(trimmed, ProductsMarker):
			return strings.TrimSpace(strings.Join(parts, "\n"))
		case trimmed != "":
			parts = append(parts, trimmed)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
