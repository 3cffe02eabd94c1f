package guild

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/permissions"
)

var ErrUnknownChannel = errors.New("unknown channel")

// Memory is an in-process guild used by tests and the simulate command.
type Memory struct {
	mu       sync.Mutex
	guildID  string
	nextID   int
	roles    []*Role
	channels []*Channel
	webhooks map[string][]*Webhook
	embeds   map[string][]*discordgo.MessageEmbed
	texts    map[string][]string
	uncached map[string]bool

	// FailRole and FailChannel make creation of the named role or channel
	// return the mapped error.
	FailRole    map[string]error
	FailChannel map[string]error
	// FailOverwrites makes SetPermissionOverwrites fail for a channel name.
	FailOverwrites map[string]error
}

func NewMemory(guildID string) *Memory {
	return &Memory{
		guildID: guildID,
		nextID:  1000,
		roles: []*Role{
			{ID: guildID, Name: "@everyone", Position: 0},
		},
		webhooks:       make(map[string][]*Webhook),
		embeds:         make(map[string][]*discordgo.MessageEmbed),
		texts:          make(map[string][]string),
		uncached:       make(map[string]bool),
		FailRole:       make(map[string]error),
		FailChannel:    make(map[string]error),
		FailOverwrites: make(map[string]error),
	}
}

func (m *Memory) id() string {
	m.nextID++
	return strconv.Itoa(m.nextID)
}

func (m *Memory) GuildID() string       { return m.guildID }
func (m *Memory) DefaultRoleID() string { return m.guildID }

func (m *Memory) CreateRole(ctx context.Context, spec RoleSpec) (*Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailRole[spec.Name]; err != nil {
		return nil, err
	}
	for _, r := range m.roles {
		if r.ID != m.guildID {
			r.Position++
		}
	}
	role := &Role{ID: m.id(), Name: spec.Name, Color: spec.Color, Permissions: spec.Permissions, Position: 1}
	m.roles = append(m.roles, role)
	cp := *role
	return &cp, nil
}

// AddManagedRole registers an integration-owned role.
func (m *Memory) AddManagedRole(name string) *Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	role := &Role{ID: m.id(), Name: name, Managed: true, Position: len(m.roles)}
	m.roles = append(m.roles, role)
	return role
}

func (m *Memory) CreateChannel(ctx context.Context, spec ChannelSpec) (*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.FailChannel[spec.Name]; err != nil {
		return nil, err
	}
	siblings := 0
	for _, c := range m.channels {
		if c.ParentID == spec.ParentID && (c.Type == discordgo.ChannelTypeGuildCategory) == (spec.Type == discordgo.ChannelTypeGuildCategory) {
			siblings++
		}
	}
	ch := &Channel{
		ID:       m.id(),
		Name:     spec.Name,
		Type:     spec.Type,
		Topic:    spec.Topic,
		ParentID: spec.ParentID,
		Position: siblings,
	}
	if spec.Type == discordgo.ChannelTypeGuildForum {
		ch.DefaultAutoArchiveDuration = spec.DefaultAutoArchiveDuration
	}
	m.channels = append(m.channels, ch)
	cp := *ch
	return &cp, nil
}

func (m *Memory) find(channelID string) *Channel {
	for _, c := range m.channels {
		if c.ID == channelID {
			return c
		}
	}
	return nil
}

func (m *Memory) SetChannelPosition(ctx context.Context, channelID string, position int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.find(channelID)
	if ch == nil {
		return fmt.Errorf("set position %s: %w", channelID, ErrUnknownChannel)
	}
	ch.Position = position
	return nil
}

func (m *Memory) SetPermissionOverwrites(ctx context.Context, channelID string, grants []permissions.Grant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.find(channelID)
	if ch == nil {
		return fmt.Errorf("set overwrites %s: %w", channelID, ErrUnknownChannel)
	}
	if err := m.FailOverwrites[ch.Name]; err != nil {
		return err
	}
	ch.Overwrites = permissions.Merge(grants)
	return nil
}

func (m *Memory) CreateWebhook(ctx context.Context, channelID, name, avatar string) (*Webhook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(channelID) == nil {
		return nil, fmt.Errorf("create webhook %s: %w", channelID, ErrUnknownChannel)
	}
	wh := &Webhook{ID: m.id(), ChannelID: channelID, Name: name}
	m.webhooks[channelID] = append(m.webhooks[channelID], wh)
	return wh, nil
}

func (m *Memory) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(channelID) == nil {
		return fmt.Errorf("send embed %s: %w", channelID, ErrUnknownChannel)
	}
	m.embeds[channelID] = append(m.embeds[channelID], embed)
	return nil
}

func (m *Memory) SendText(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.find(channelID) == nil {
		return fmt.Errorf("send text %s: %w", channelID, ErrUnknownChannel)
	}
	m.texts[channelID] = append(m.texts[channelID], text)
	return nil
}

func (m *Memory) FetchChannel(ctx context.Context, channelID string) (*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := m.find(channelID)
	if ch == nil {
		return nil, fmt.Errorf("fetch channel %s: %w", channelID, ErrUnknownChannel)
	}
	cp := *ch
	return &cp, nil
}

// Evict hides a channel from CachedChannel so callers must fetch it.
func (m *Memory) Evict(channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uncached[channelID] = true
}

func (m *Memory) CachedChannel(channelID string) (*Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uncached[channelID] {
		return nil, false
	}
	ch := m.find(channelID)
	if ch == nil {
		return nil, false
	}
	cp := *ch
	return &cp, true
}

func (m *Memory) Channels(ctx context.Context) ([]*Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Channel, 0, len(m.channels))
	for _, c := range m.channels {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) Roles(ctx context.Context) ([]*Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Role, 0, len(m.roles))
	for _, r := range m.roles {
		cp := *r
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *Memory) Webhooks(ctx context.Context, channelID string) ([]*Webhook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Webhook(nil), m.webhooks[channelID]...), nil
}

func (m *Memory) DeleteChannel(ctx context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.channels {
		if c.ID == channelID {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			delete(m.webhooks, channelID)
			return nil
		}
	}
	return fmt.Errorf("delete channel %s: %w", channelID, ErrUnknownChannel)
}

// Embeds returns the embeds posted to a channel.
func (m *Memory) Embeds(channelID string) []*discordgo.MessageEmbed {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*discordgo.MessageEmbed(nil), m.embeds[channelID]...)
}

// Texts returns the plain messages posted to a channel.
func (m *Memory) Texts(channelID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts[channelID]...)
}

// ChannelByName returns the first channel with the given (formatted) name.
func (m *Memory) ChannelByName(name string) (*Channel, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.channels {
		if c.Name == name {
			cp := *c
			return &cp, true
		}
	}
	return nil, false
}
