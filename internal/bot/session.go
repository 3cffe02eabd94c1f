package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/logging"
)

type Session struct {
	discord *discordgo.Session
	token   string
	BotID   string
}

var globalSession *Session

// Initialize creates the Discord session. The builder only needs guild,
// DM and guild message events.
func Initialize(token string) error {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages

	globalSession = &Session{
		discord: dg,
		token:   token,
	}

	return nil
}

// GetSession returns the global Discord session
func GetSession() *Session {
	return globalSession
}

// GetDiscord returns the underlying discordgo session
func (s *Session) GetDiscord() *discordgo.Session {
	return s.discord
}

// Connect opens the Discord websocket connection
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if s.discord.State.User != nil {
		s.BotID = s.discord.State.User.ID
		logging.Info("Bot ID: %s", s.BotID)
	}

	logging.Info("Discord bot connected successfully")
	return nil
}

// Close closes the Discord connection
func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// RegisterCommands overwrites the bot's slash commands. With a guild ID the
// commands are scoped to that guild and show up immediately, which is what
// a development server wants.
func (s *Session) RegisterCommands(appID, guildID string, commands []*discordgo.ApplicationCommand) error {
	if appID == "" && s.discord.State.User != nil {
		appID = s.discord.State.User.ID
	}
	if appID == "" {
		return fmt.Errorf("register commands: no application id")
	}

	logging.Info("Registering %d slash commands...", len(commands))

	created, err := s.discord.ApplicationCommandBulkOverwrite(appID, guildID, commands)
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	for _, cmd := range created {
		logging.Info("Registered command: /%s", cmd.Name)
	}

	return nil
}

// AddHandler adds an event handler to the Discord session
func (s *Session) AddHandler(handler interface{}) {
	s.discord.AddHandler(handler)
}

// GuildCount is the number of guilds in the session state.
func (s *Session) GuildCount() int {
	if s.discord == nil || s.discord.State == nil {
		return 0
	}
	s.discord.State.RLock()
	defer s.discord.State.RUnlock()
	return len(s.discord.State.Guilds)
}
