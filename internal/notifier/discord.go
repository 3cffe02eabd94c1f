// Package notifier delivers build progress and bot notices to Discord users.
package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Sender is the part of discordgo.Session the notifiers use.
type Sender interface {
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	FollowupMessageCreate(interaction *discordgo.Interaction, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DM sends each progress line as a direct message. The DM channel is opened
// lazily and reused.
type DM struct {
	sender Sender
	userID string

	mu        sync.Mutex
	channelID string
}

func NewDM(sender Sender, userID string) *DM {
	return &DM{sender: sender, userID: userID}
}

func (d *DM) channel(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.channelID != "" {
		return d.channelID, nil
	}
	ch, err := d.sender.UserChannelCreate(d.userID, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("open dm with %s: %w", d.userID, err)
	}
	d.channelID = ch.ID
	return d.channelID, nil
}

func (d *DM) Notify(ctx context.Context, text string) error {
	id, err := d.channel(ctx)
	if err != nil {
		return err
	}
	_, err = d.sender.ChannelMessageSend(id, text, discordgo.WithContext(ctx))
	return err
}

// SendFile DMs a file with a short caption.
func (d *DM) SendFile(ctx context.Context, caption string, file *discordgo.File) error {
	id, err := d.channel(ctx)
	if err != nil {
		return err
	}
	_, err = d.sender.ChannelMessageSendComplex(id, &discordgo.MessageSend{
		Content: caption,
		Files:   []*discordgo.File{file},
	}, discordgo.WithContext(ctx))
	return err
}

// Followup posts progress as ephemeral followups to a deferred interaction.
type Followup struct {
	sender      Sender
	interaction *discordgo.Interaction
}

func NewFollowup(sender Sender, interaction *discordgo.Interaction) *Followup {
	return &Followup{sender: sender, interaction: interaction}
}

func (f *Followup) Notify(ctx context.Context, text string) error {
	_, err := f.sender.FollowupMessageCreate(f.interaction, false, &discordgo.WebhookParams{
		Content: text,
		Flags:   discordgo.MessageFlagsEphemeral,
	}, discordgo.WithContext(ctx))
	return err
}

// Fallback tries each notifier in turn until one accepts the line.
type Fallback []interface {
	Notify(ctx context.Context, text string) error
}

func (f Fallback) Notify(ctx context.Context, text string) error {
	var last error
	for _, n := range f {
		if last = n.Notify(ctx, text); last == nil {
			return nil
		}
	}
	return last
}

// BuildEmbed is the summary card posted when a build finishes.
func BuildEmbed(title, summary string, ok bool) *discordgo.MessageEmbed {
	color := 0x57F287
	if !ok {
		color = 0xED4245
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Color:       color,
		Description: summary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Guild Builder",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
