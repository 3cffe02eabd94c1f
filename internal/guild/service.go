// Package guild abstracts the Discord guild operations the builder needs.
package guild

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/permissions"
)

type RoleSpec struct {
	Name        string
	Color       int
	Permissions permissions.Set
}

type Role struct {
	ID          string
	Name        string
	Color       int
	Permissions permissions.Set
	Position    int
	Managed     bool
}

type ChannelSpec struct {
	Name     string
	Type     discordgo.ChannelType
	Topic    string
	ParentID string
	// DefaultAutoArchiveDuration is only sent for forum channels.
	DefaultAutoArchiveDuration int
}

type Channel struct {
	ID                         string
	Name                       string
	Type                       discordgo.ChannelType
	Topic                      string
	ParentID                   string
	Position                   int
	DefaultAutoArchiveDuration int
	Overwrites                 []permissions.Grant
}

type Webhook struct {
	ID        string
	ChannelID string
	Name      string
}

// Service is the slice of the Discord API used to build and export a guild.
// Every call that can block takes a context.
type Service interface {
	GuildID() string
	// DefaultRoleID is the @everyone role, which shares the guild ID.
	DefaultRoleID() string

	CreateRole(ctx context.Context, spec RoleSpec) (*Role, error)
	CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error)
	SetChannelPosition(ctx context.Context, channelID string, position int) error
	// SetPermissionOverwrites replaces the channel's overwrites with one
	// overwrite per grant target.
	SetPermissionOverwrites(ctx context.Context, channelID string, grants []permissions.Grant) error
	CreateWebhook(ctx context.Context, channelID, name, avatar string) (*Webhook, error)
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
	SendText(ctx context.Context, channelID, text string) error

	FetchChannel(ctx context.Context, channelID string) (*Channel, error)
	CachedChannel(channelID string) (*Channel, bool)
	Channels(ctx context.Context) ([]*Channel, error)
	Roles(ctx context.Context) ([]*Role, error)
	Webhooks(ctx context.Context, channelID string) ([]*Webhook, error)
	DeleteChannel(ctx context.Context, channelID string) error
}

// IsTextLike reports whether messages can be posted to the channel type.
func IsTextLike(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildText || t == discordgo.ChannelTypeGuildNews
}
