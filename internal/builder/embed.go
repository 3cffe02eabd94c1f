package builder

import (
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/pkg/util"
)

const (
	DefaultColor = 0x23272A
	zeroWidth    = "\u200b"
)

// ThemeColors maps style themes to embed colours.
var ThemeColors = map[string]int{
	"neon-gold":     0xFFD700,
	"cyberpunk":     0x00FFFF,
	"cozy-pastel":   0xFFB6C1,
	"minimal-clean": 0xFFFFFF,
	"streamer-dark": 0x9146FF,
	"degen-casino":  0x2ECC71,
}

var titleEmojis = map[string]string{
	"rules":   "💡",
	"faq":     "📘",
	"about":   "🧩",
	"welcome": "👋",
}

const defaultTitleEmoji = "💬"

var blankLines = regexp.MustCompile(`\n{3,}`)

// EmbedColor resolves the colour for a message: branding colour first,
// then the theme, then the default.
func EmbedColor(style *blueprint.Style, branding *blueprint.Branding) int {
	if branding != nil && branding.Color != "" {
		if c, err := util.ParseHexColor(branding.Color); err == nil {
			return c
		}
	}
	if style != nil {
		if c, ok := ThemeColors[style.Theme]; ok {
			return c
		}
	}
	return DefaultColor
}

// BuildEmbed renders a channel message as a styled embed.
func BuildEmbed(msg *blueprint.Message, style *blueprint.Style, branding *blueprint.Branding) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{Color: EmbedColor(style, branding)}
	if msg == nil {
		return embed
	}

	if msg.Title != "" {
		emoji := defaultTitleEmoji
		if e, ok := titleEmojis[strings.ToLower(msg.Title)]; ok {
			emoji = e
		}
		if branding != nil && branding.Emoji != "" {
			emoji = branding.Emoji
		}
		embed.Title = emoji + " " + msg.Title
	}

	if msg.Body != "" {
		embed.Description = blankLines.ReplaceAllString(msg.Body, "\n\n")
	}

	for _, section := range msg.Sections {
		name := zeroWidth
		if section.Header != "" {
			name = "➤ " + section.Header
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  name,
			Value: sectionValue(section),
		})
	}
	return embed
}

func sectionValue(s blueprint.Section) string {
	var lines []string
	if s.Content != "" {
		lines = append(lines, s.Content)
	}
	for _, b := range s.Bullets {
		lines = append(lines, "• "+b)
	}
	if len(lines) == 0 {
		return zeroWidth
	}
	return strings.Join(lines, "\n")
}
