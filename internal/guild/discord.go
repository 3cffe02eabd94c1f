package guild

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/permissions"
)

// Discord implements Service over a live discordgo session. Every REST call
// waits on a shared limiter and is retried once when the failure looks
// transient.
type Discord struct {
	session *discordgo.Session
	guildID string
	limiter *rate.Limiter
}

// NewDiscord binds a session to one guild. A nil limiter disables pacing.
func NewDiscord(session *discordgo.Session, guildID string, limiter *rate.Limiter) *Discord {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Discord{session: session, guildID: guildID, limiter: limiter}
}

// NewLimiter builds the shared REST pacing limiter.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (d *Discord) GuildID() string       { return d.guildID }
func (d *Discord) DefaultRoleID() string { return d.guildID }

func (d *Discord) call(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		if werr := d.limiter.Wait(ctx); werr != nil {
			return fmt.Errorf("%s: %w", op, werr)
		}
		if err = fn(); err == nil {
			return nil
		}
		if attempt == 1 && retryable(err) {
			logging.Warn("[GUILD] %s failed, retrying: %v", op, err)
			continue
		}
		break
	}
	return fmt.Errorf("%s: %w", op, err)
}

// retryable treats rate limits, server errors and transport failures as
// transient. Other 4xx responses are final.
func retryable(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		code := restErr.Response.StatusCode
		return code == http.StatusTooManyRequests || code >= 500
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func (d *Discord) CreateRole(ctx context.Context, spec RoleSpec) (*Role, error) {
	perms := int64(spec.Permissions)
	params := &discordgo.RoleParams{Name: spec.Name, Permissions: &perms}
	if spec.Color != 0 {
		color := spec.Color
		params.Color = &color
	}

	var created *discordgo.Role
	err := d.call(ctx, "create role "+spec.Name, func() error {
		var err error
		created, err = d.session.GuildRoleCreate(d.guildID, params, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromRole(created), nil
}

// forumCreate carries default_auto_archive_duration, which the typed
// create payload does not expose.
type forumCreate struct {
	Name                       string                `json:"name"`
	Type                       discordgo.ChannelType `json:"type"`
	Topic                      string                `json:"topic,omitempty"`
	ParentID                   string                `json:"parent_id,omitempty"`
	DefaultAutoArchiveDuration int                   `json:"default_auto_archive_duration,omitempty"`
}

func (d *Discord) CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error) {
	var created *discordgo.Channel
	err := d.call(ctx, "create channel "+spec.Name, func() error {
		if spec.Type == discordgo.ChannelTypeGuildForum && spec.DefaultAutoArchiveDuration > 0 {
			endpoint := discordgo.EndpointGuildChannels(d.guildID)
			body, err := d.session.RequestWithBucketID(http.MethodPost, endpoint, forumCreate{
				Name:                       spec.Name,
				Type:                       spec.Type,
				Topic:                      spec.Topic,
				ParentID:                   spec.ParentID,
				DefaultAutoArchiveDuration: spec.DefaultAutoArchiveDuration,
			}, endpoint, discordgo.WithContext(ctx))
			if err != nil {
				return err
			}
			created = &discordgo.Channel{}
			return json.Unmarshal(body, created)
		}

		var err error
		created, err = d.session.GuildChannelCreateComplex(d.guildID, discordgo.GuildChannelCreateData{
			Name:     spec.Name,
			Type:     spec.Type,
			Topic:    spec.Topic,
			ParentID: spec.ParentID,
		}, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}

	ch := fromChannel(created)
	if spec.Type == discordgo.ChannelTypeGuildForum {
		ch.DefaultAutoArchiveDuration = spec.DefaultAutoArchiveDuration
	}
	return ch, nil
}

func (d *Discord) SetChannelPosition(ctx context.Context, channelID string, position int) error {
	return d.call(ctx, "reorder channel "+channelID, func() error {
		return d.session.GuildChannelsReorder(d.guildID, []*discordgo.Channel{
			{ID: channelID, Position: position},
		}, discordgo.WithContext(ctx))
	})
}

func (d *Discord) SetPermissionOverwrites(ctx context.Context, channelID string, grants []permissions.Grant) error {
	merged := permissions.Merge(grants)
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(merged))
	for _, g := range merged {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    g.TargetID,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: int64(g.Allow),
			Deny:  int64(g.Deny),
		})
	}

	return d.call(ctx, "set overwrites "+channelID, func() error {
		_, err := d.session.ChannelEditComplex(channelID, &discordgo.ChannelEdit{
			PermissionOverwrites: overwrites,
		}, discordgo.WithContext(ctx))
		return err
	})
}

func (d *Discord) CreateWebhook(ctx context.Context, channelID, name, avatar string) (*Webhook, error) {
	var wh *discordgo.Webhook
	err := d.call(ctx, "create webhook "+channelID, func() error {
		var err error
		wh, err = d.session.WebhookCreate(channelID, name, avatar, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return &Webhook{ID: wh.ID, ChannelID: wh.ChannelID, Name: wh.Name}, nil
}

func (d *Discord) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	return d.call(ctx, "send embed "+channelID, func() error {
		_, err := d.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
		return err
	})
}

func (d *Discord) SendText(ctx context.Context, channelID, text string) error {
	return d.call(ctx, "send message "+channelID, func() error {
		_, err := d.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
		return err
	})
}

func (d *Discord) FetchChannel(ctx context.Context, channelID string) (*Channel, error) {
	var ch *discordgo.Channel
	err := d.call(ctx, "fetch channel "+channelID, func() error {
		var err error
		ch, err = d.session.Channel(channelID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	return fromChannel(ch), nil
}

func (d *Discord) CachedChannel(channelID string) (*Channel, bool) {
	if d.session.State == nil {
		return nil, false
	}
	ch, err := d.session.State.Channel(channelID)
	if err != nil || ch == nil {
		return nil, false
	}
	return fromChannel(ch), true
}

func (d *Discord) Channels(ctx context.Context) ([]*Channel, error) {
	var list []*discordgo.Channel
	err := d.call(ctx, "list channels", func() error {
		var err error
		list, err = d.session.GuildChannels(d.guildID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]*Channel, 0, len(list))
	for _, ch := range list {
		out = append(out, fromChannel(ch))
	}
	return out, nil
}

func (d *Discord) Roles(ctx context.Context) ([]*Role, error) {
	var list []*discordgo.Role
	err := d.call(ctx, "list roles", func() error {
		var err error
		list, err = d.session.GuildRoles(d.guildID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]*Role, 0, len(list))
	for _, r := range list {
		out = append(out, fromRole(r))
	}
	return out, nil
}

func (d *Discord) Webhooks(ctx context.Context, channelID string) ([]*Webhook, error) {
	var list []*discordgo.Webhook
	err := d.call(ctx, "list webhooks "+channelID, func() error {
		var err error
		list, err = d.session.ChannelWebhooks(channelID, discordgo.WithContext(ctx))
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]*Webhook, 0, len(list))
	for _, wh := range list {
		out = append(out, &Webhook{ID: wh.ID, ChannelID: wh.ChannelID, Name: wh.Name})
	}
	return out, nil
}

func (d *Discord) DeleteChannel(ctx context.Context, channelID string) error {
	return d.call(ctx, "delete channel "+channelID, func() error {
		_, err := d.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
		return err
	})
}

func fromRole(r *discordgo.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Color:       r.Color,
		Permissions: permissions.Set(r.Permissions),
		Position:    r.Position,
		Managed:     r.Managed,
	}
}

func fromChannel(c *discordgo.Channel) *Channel {
	ch := &Channel{
		ID:       c.ID,
		Name:     c.Name,
		Type:     c.Type,
		Topic:    c.Topic,
		ParentID: c.ParentID,
		Position: c.Position,
	}
	for _, po := range c.PermissionOverwrites {
		ch.Overwrites = append(ch.Overwrites, permissions.Grant{
			TargetID: po.ID,
			Allow:    permissions.Set(po.Allow),
			Deny:     permissions.Set(po.Deny),
		})
	}
	return ch
}
