package chat

import (
	"strings"
	"unicode/utf8"
)

// discordMessageLimit leaves headroom under Discord's 2000-char cap.
const discordMessageLimit = 1900

// splitMessage chops text into chunks that fit a Discord message, preferring
// newline boundaries, then spaces, then a hard cut.
func splitMessage(text string, limit int) []string {
	if limit < 1 {
		limit = 1
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for len(text) > limit {
		cut := strings.LastIndex(text[:limit], "\n")
		if cut <= 0 {
			cut = strings.LastIndex(text[:limit], " ")
		}
		if cut <= 0 {
			// Hard cut: back up to a rune boundary.
			cut = limit
			for cut > 0 && !utf8.RuneStart(text[cut]) {
				cut--
			}
			if cut == 0 {
				cut = limit
			}
		}
		chunk := strings.TrimSpace(text[:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		text = strings.TrimSpace(text[cut:])
	}
	if text != "" {
		chunks = append(chunks, text)
	}
	return chunks
}
