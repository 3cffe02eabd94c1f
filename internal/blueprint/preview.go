package blueprint

import (
	"fmt"
	"strings"
)

// Preview renders a short code-fenced outline of the blueprint for chat replies.
func Preview(bp *Blueprint) string {
	if bp == nil {
		return "```\n(empty blueprint)\n```"
	}

	var b strings.Builder
	b.WriteString("```\n")

	theme, prefix := "", bp.EmojiPrefix()
	if bp.Style != nil {
		theme = bp.Style.Theme
	}
	if theme == "" {
		theme = "default"
	}
	fmt.Fprintf(&b, "Theme: %s\n", theme)
	if prefix != "" {
		fmt.Fprintf(&b, "Emoji Prefix: %s\n", prefix)
	}
	if bp.Community {
		b.WriteString("Community: enabled\n")
	}

	b.WriteString("Roles:\n")
	for _, r := range bp.Roles {
		if len(r.Permissions) > 0 {
			fmt.Fprintf(&b, "  - %s [%s]\n", r.Name, strings.Join(r.Permissions, ","))
		} else {
			fmt.Fprintf(&b, "  - %s\n", r.Name)
		}
	}

	b.WriteString("Categories & Channels:\n")
	for _, cat := range bp.Categories {
		if preset := bp.CategoryPrivacy[cat.Name]; preset != "" {
			fmt.Fprintf(&b, "  * %s (%s)\n", cat.Name, preset)
		} else {
			fmt.Fprintf(&b, "  * %s\n", cat.Name)
		}
		for _, ch := range cat.Channels {
			var tags []string
			if t := ch.EffectiveType(); t != ChannelText {
				tags = append(tags, string(t))
			}
			if ch.Private {
				tags = append(tags, "private")
			}
			if ch.ReadOnly {
				tags = append(tags, "read-only")
			}
			if p := ch.PresetName(); p != "" {
				tags = append(tags, p)
			}
			if len(tags) > 0 {
				fmt.Fprintf(&b, "     - %s (%s)\n", ch.Name, strings.Join(tags, ", "))
			} else {
				fmt.Fprintf(&b, "     - %s\n", ch.Name)
			}
		}
	}

	b.WriteString("```")
	return b.String()
}
