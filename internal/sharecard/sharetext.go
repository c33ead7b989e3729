package sharecard

import (
	"fmt"
	"net/url"

	"philomind/internal/analysis"
)

// ShareText builds the caption used across every delivery tier.
func ShareText(result *analysis.Result, appURL string) string {
	text := fmt.Sprintf("I explored my mind with PhiloMind. Maturity Score: %d/100. Persona: %s.",
		result.ClampedScore(), result.PhilosophicalPersona)
	if appURL != "" {
		text += " " + appURL
	}
	return text
}

// TwitterIntentURL returns the X/Twitter web intent for the caption.
func TwitterIntentURL(text string) string {
	return "https://twitter.com/intent/tweet?text=" + url.QueryEscape(text)
}

// WhatsAppURL returns the WhatsApp deep link for the caption.
func WhatsAppURL(text string) string {
	return "https://wa.me/?text=" + url.QueryEscape(text)
}

// instagramURL is where the clipboard-then-open flow lands. Instagram has
// no text intent, so the caption rides the clipboard.
const instagramURL = "https://www.instagram.com/"
