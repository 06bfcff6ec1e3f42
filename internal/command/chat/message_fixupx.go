package chat

import (
	"regexp"
	"strings"

	"superintendent/internal/core"
)

var xPostLink = regexp.MustCompile(`https?://(?:www\.)?(?:x|twitter)\.com/\w+/status/\d+\S*`)

// FixupXCommand reposts x.com/twitter.com status links through fixupx.com so
// they embed properly.
type FixupXCommand struct{}

func (c *FixupXCommand) Name() string        { return "fixupx" }
func (c *FixupXCommand) Description() string { return "Repost x.com links through fixupx.com" }
func (c *FixupXCommand) Aliases() []string   { return []string{} }
func (c *FixupXCommand) Group() string       { return "chat" }
func (c *FixupXCommand) Category() string    { return "💬 Chat" }
func (c *FixupXCommand) RequireAdmin() bool  { return false }

func (c *FixupXCommand) Run(ctx interface{}) error { return nil }

func (c *FixupXCommand) Message(v *core.MessageContext) error {
	m := v.Event
	if m.Author == nil || m.Author.Bot {
		return nil
	}
	if strings.Contains(m.Content, "fixupx.com") {
		return nil
	}

	links := RewriteXLinks(m.Content)
	if len(links) == 0 {
		return nil
	}

	_, err := v.Session.ChannelMessageSendReply(m.ChannelID, strings.Join(links, "\n"), m.Reference())
	return err
}

// RewriteXLinks extracts x.com/twitter.com status links and returns their
// fixupx.com equivalents, deduplicated in order of first appearance.
func RewriteXLinks(content string) []string {
	matches := xPostLink.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	for _, link := range matches {
		link = strings.TrimRight(link, ".,;:!?)")
		fixed := xPostLink.ReplaceAllStringFunc(link, func(s string) string {
			s = strings.Replace(s, "//www.", "//", 1)
			s = strings.Replace(s, "//x.com/", "//fixupx.com/", 1)
			s = strings.Replace(s, "//twitter.com/", "//fixupx.com/", 1)
			return s
		})
		if seen[fixed] {
			continue
		}
		seen[fixed] = true
		out = append(out, fixed)
	}
	return out
}

func init() {
	core.RegisterCommand(&FixupXCommand{})
}
