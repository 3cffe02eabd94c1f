package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/notifier"
	"go-guildbuilder/internal/storage"
)

const (
	welcomeTimeout = 15 * time.Second

	dmFailedNotice = "⚠️ I couldn't DM the server owner. Please enable DMs and re-add me."
)

func welcomeText(guildName string) string {
	return fmt.Sprintf("👋 Hey! I'm **Guild Builder**, your AI-powered server setup assistant.\n"+
		"I can build your entire server in **%s** from scratch in under 30 seconds.\n"+
		"Run `/setup build` with a short description of your community to get started, "+
		"or `/setup import` to load a blueprint file.", guildName)
}

type textSender interface {
	Notify(ctx context.Context, text string) error
}

// welcomeOwner DMs the owner once per guild. When the DM fails the notice
// goes to fallback instead. Either way the guild is marked as welcomed.
func welcomeOwner(ctx context.Context, cache *storage.ConfigCache, guildID, guildName string, dm, fallback textSender) error {
	if _, sent, err := cache.Get(ctx, guildID, storage.KeyWelcomeSent); err != nil {
		return fmt.Errorf("read welcome flag: %w", err)
	} else if sent {
		return nil
	}

	if err := dm.Notify(ctx, welcomeText(guildName)); err != nil {
		logging.Warn("[BOT] Welcome DM for guild %s failed: %v", guildID, err)
		if fallback != nil {
			if ferr := fallback.Notify(ctx, dmFailedNotice); ferr != nil {
				logging.Warn("[BOT] System channel notice for guild %s failed: %v", guildID, ferr)
			}
		}
	}

	return cache.Set(ctx, guildID, storage.KeyWelcomeSent, time.Now().UTC().Format(time.RFC3339))
}

type channelText struct {
	sender    notifier.Sender
	channelID string
}

func (c channelText) Notify(ctx context.Context, text string) error {
	_, err := c.sender.ChannelMessageSend(c.channelID, text, discordgo.WithContext(ctx))
	return err
}

// SetupEventHandlers wires the gateway events the builder reacts to. The
// owner welcome DM is only sent when welcomeDM is set.
func (s *Session) SetupEventHandlers(cache *storage.ConfigCache, welcomeDM bool) {
	logging.Info("Setting up Discord event handlers...")

	s.discord.AddHandler(func(sess *discordgo.Session, r *discordgo.Ready) {
		logging.Info("Bot ready! Connected as %s in %d guilds", r.User.Username, len(r.Guilds))
	})

	s.discord.AddHandler(onGuildCreate(cache, welcomeDM))

	s.discord.AddHandler(func(sess *discordgo.Session, g *discordgo.GuildDelete) {
		if g.Unavailable {
			return
		}
		logging.Info("Bot removed from guild %s", g.ID)
	})
}

func onGuildCreate(cache *storage.ConfigCache, welcomeDM bool) func(*discordgo.Session, *discordgo.GuildCreate) {
	return func(sess *discordgo.Session, g *discordgo.GuildCreate) {
		if g.Guild == nil || g.Unavailable {
			return
		}
		logging.Info("Bot joined/loaded guild: %s (ID: %s)", g.Name, g.ID)
		if !welcomeDM || cache == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), welcomeTimeout)
		defer cancel()

		var fallback textSender
		if g.SystemChannelID != "" {
			fallback = channelText{sender: sess, channelID: g.SystemChannelID}
		}
		dm := notifier.NewDM(sess, g.OwnerID)
		if err := welcomeOwner(ctx, cache, g.ID, g.Name, dm, fallback); err != nil {
			logging.Error("[BOT] Welcome for guild %s failed: %v", g.ID, err)
		}
	}
}
