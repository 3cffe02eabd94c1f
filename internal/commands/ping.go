package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
)

// handlePing shows gateway and REST latency
func handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	// Measure time before responding
	startTime := time.Now()

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		return err
	}

	// REST round trip
	apiStart := time.Now()
	_, err = s.Channel(i.ChannelID)
	apiLatency := time.Since(apiStart)

	responseLatency := time.Since(startTime)
	wsLatency := s.HeartbeatLatency()

	embed := &discordgo.MessageEmbed{
		Title: "🚀 Pong!",
		Color: latencyColor((wsLatency + apiLatency) / 2),
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "⚡ WebSocket",
				Value:  fmt.Sprintf("`%dms`", wsLatency.Milliseconds()),
				Inline: true,
			},
			{
				Name:   "📡 API",
				Value:  fmt.Sprintf("`%dms`", apiLatency.Milliseconds()),
				Inline: true,
			},
			{
				Name:   "🔄 Response",
				Value:  fmt.Sprintf("`%dms`", responseLatency.Milliseconds()),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Guild Builder",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	_, err = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Embeds: &[]*discordgo.MessageEmbed{embed},
	})

	return err
}

func latencyColor(avg time.Duration) int {
	switch {
	case avg < 30*time.Millisecond:
		return 0x00FF00 // Green
	case avg < 60*time.Millisecond:
		return 0xFFFF00 // Yellow
	case avg < 120*time.Millisecond:
		return 0xFFA500 // Orange
	default:
		return 0xFF0000 // Red
	}
}
