package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/permissions"
	"go-guildbuilder/internal/storage"
)

const testGuild = "900"

const sampleBlueprint = `{
  "style": { "theme": "cyberpunk", "emojiPrefix": "✨" },
  "roles": [
    { "name": "Admin", "color": "#FF0000" },
    { "name": "Moderator" },
    { "name": "Member" }
  ],
  "categories": {
    "Info": [
      { "name": "rules", "readOnly": true, "message": { "title": "Rules", "body": "Be kind\n\n\n\nNo spam", "sections": [ { "header": "Basics", "bullets": ["one", "two"] } ] } },
      { "name": "announcements", "type": "announcement", "permissionsPreset": "announcement-lock" }
    ],
    "Community": [
      { "name": "general", "order": 1 },
      { "name": "memes", "order": 0, "threadsLocked": true },
      { "name": "ideas", "type": "forum", "defaultAutoArchiveDuration": 1440 }
    ],
    "Staff": [
      { "name": "staff-chat", "permissionsPreset": "staff-private" }
    ]
  },
  "categoryPrivacy": { "Staff": "staff-private" },
  "webhooks": { "announcements": {}, "nowhere": { "name": "ignored" } }
}`

func mustParse(t *testing.T, doc string) *blueprint.Blueprint {
	t.Helper()
	bp, err := blueprint.Parse([]byte(doc))
	require.NoError(t, err)
	require.True(t, blueprint.Validate(bp).Valid)
	return bp
}

func grantFor(grants []permissions.Grant, target string) (permissions.Grant, bool) {
	for _, g := range grants {
		if g.TargetID == target {
			return g, true
		}
	}
	return permissions.Grant{}, false
}

func TestApplyBuildsGuild(t *testing.T) {
	ctx := context.Background()
	mem := guild.NewMemory(testGuild)
	store := storage.NewMemory()
	rec := &Recorder{}

	res, err := New(store).Apply(ctx, mem, mustParse(t, sampleBlueprint), Options{Notifier: rec})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Roles.Len())
	assert.Equal(t, 6, res.Channels.Len())
	assert.Equal(t, 3, res.Metrics.CategoryCount)
	assert.Equal(t, 6, res.Metrics.ChannelCount)
	assert.Equal(t, 3, res.Metrics.RoleCount)
	assert.GreaterOrEqual(t, res.Metrics.BuildSeconds, 0.0)

	all, err := mem.Channels(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 9, "channels plus categories")

	roles, err := mem.Roles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 4, "created roles plus @everyone")

	adminID, ok := res.Roles.Get("Admin")
	require.True(t, ok)
	for _, r := range roles {
		if r.ID == adminID {
			assert.Equal(t, 0xFF0000, r.Color)
			assert.True(t, r.Permissions.Has(permissions.Administrator))
		}
	}

	_, err = store.LoadBlueprint(ctx, testGuild)
	require.NoError(t, err)
	last, err := store.LastBuild(ctx, testGuild)
	require.NoError(t, err)
	assert.Equal(t, res.Record.ID, last.ID)
	assert.Equal(t, "build", last.Source)
	usage, err := store.Usage(ctx, testGuild, 10)
	require.NoError(t, err)
	assert.Len(t, usage, 1)
}

func TestApplyProgressOrder(t *testing.T) {
	rec := &Recorder{}
	_, err := New(nil).Apply(context.Background(), guild.NewMemory(testGuild), mustParse(t, sampleBlueprint), Options{Notifier: rec})
	require.NoError(t, err)

	indexOf := func(line string) int {
		for i, l := range rec.Lines {
			if l == line {
				return i
			}
		}
		return -1
	}

	stages := []string{StageRoles, StageCategories, StageChannels, StageMessages, StageCommunity, StageFinalize}
	prev := -1
	for _, stage := range stages {
		i := indexOf(stage)
		require.NotEqual(t, -1, i, stage)
		assert.Greater(t, i, prev, stage)
		prev = i
	}

	created := indexOf("✅ Created ✨│general")
	assert.Greater(t, created, indexOf(StageChannels))
	assert.Less(t, created, indexOf(StageMessages))
	assert.NotEqual(t, -1, indexOf("🔗 Webhook created for ✨│announcements"))

	summary := rec.Lines[len(rec.Lines)-1]
	assert.True(t, strings.HasPrefix(summary, "🎉 Your server is ready!"))
	assert.Contains(t, summary, "📄 Channels: 6")
	assert.Contains(t, summary, "🧩 Roles: 3")
}

func TestApplyPermissions(t *testing.T) {
	ctx := context.Background()
	mem := guild.NewMemory(testGuild)
	res, err := New(nil).Apply(ctx, mem, mustParse(t, sampleBlueprint), Options{})
	require.NoError(t, err)

	adminID, _ := res.Roles.Get("Admin")
	modID, _ := res.Roles.Get("Moderator")
	memberID, _ := res.Roles.Get("Member")

	staff, ok := mem.ChannelByName("✨│staff-chat")
	require.True(t, ok)
	everyone, ok := grantFor(staff.Overwrites, testGuild)
	require.True(t, ok)
	assert.True(t, everyone.Deny.Has(permissions.View))
	admin, _ := grantFor(staff.Overwrites, adminID)
	assert.True(t, admin.Allow.Has(permissions.View|permissions.Send|permissions.Administrator))
	mod, _ := grantFor(staff.Overwrites, modID)
	assert.True(t, mod.Allow.Has(permissions.View|permissions.Send|permissions.ManageMessages))
	_, ok = grantFor(staff.Overwrites, memberID)
	assert.False(t, ok)

	rules, _ := mem.ChannelByName("✨│rules")
	everyone, _ = grantFor(rules.Overwrites, testGuild)
	assert.True(t, everyone.Allow.Has(permissions.View|permissions.History))
	assert.True(t, everyone.Deny.Has(permissions.Send))

	memes, _ := mem.ChannelByName("✨│memes")
	everyone, _ = grantFor(memes.Overwrites, testGuild)
	assert.True(t, everyone.Deny.Has(permissions.ThreadLock))

	category, ok := mem.ChannelByName("staff")
	require.True(t, ok)
	assert.Equal(t, discordgo.ChannelTypeGuildCategory, category.Type)
	everyone, _ = grantFor(category.Overwrites, testGuild)
	assert.True(t, everyone.Deny.Has(permissions.View))
}

func TestApplyChannelDetails(t *testing.T) {
	ctx := context.Background()
	mem := guild.NewMemory(testGuild)
	_, err := New(nil).Apply(ctx, mem, mustParse(t, sampleBlueprint), Options{})
	require.NoError(t, err)

	ideas, ok := mem.ChannelByName("✨│ideas")
	require.True(t, ok)
	assert.Equal(t, discordgo.ChannelTypeGuildForum, ideas.Type)
	assert.Equal(t, 1440, ideas.DefaultAutoArchiveDuration)

	news, ok := mem.ChannelByName("✨│announcements")
	require.True(t, ok)
	assert.Equal(t, discordgo.ChannelTypeGuildNews, news.Type)
	hooks, err := mem.Webhooks(ctx, news.ID)
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.Equal(t, "announcements", hooks[0].Name)

	rules, _ := mem.ChannelByName("✨│rules")
	embeds := mem.Embeds(rules.ID)
	require.Len(t, embeds, 1)
	assert.Equal(t, "💡 Rules", embeds[0].Title)
	assert.Equal(t, "Be kind\n\nNo spam", embeds[0].Description)
	assert.Equal(t, 0x00FFFF, embeds[0].Color)
	require.Len(t, embeds[0].Fields, 1)
	assert.Equal(t, "➤ Basics", embeds[0].Fields[0].Name)
	assert.Equal(t, "• one\n• two", embeds[0].Fields[0].Value)

	general, _ := mem.ChannelByName("✨│general")
	assert.Equal(t, []string{builtByNote}, mem.Texts(general.ID))
}

func TestApplyOrdering(t *testing.T) {
	bp := mustParse(t, `{
	  "roles": [{ "name": "Member" }],
	  "categories": {
	    "A": [
	      { "name": "b", "order": 2 },
	      { "name": "a", "order": 0 },
	      { "name": "c", "order": 1 }
	    ]
	  }
	}`)
	mem := guild.NewMemory(testGuild)
	_, err := New(nil).Apply(context.Background(), mem, bp, Options{})
	require.NoError(t, err)

	for name, want := range map[string]int{"a": 0, "c": 1, "b": 2} {
		ch, ok := mem.ChannelByName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, ch.Position, name)
	}
}

func TestApplyPartialFailure(t *testing.T) {
	ctx := context.Background()
	mem := guild.NewMemory(testGuild)
	boom := errors.New("boom")
	mem.FailRole["Member"] = boom
	mem.FailChannel["✨│memes"] = boom
	mem.FailChannel["info"] = boom
	mem.FailOverwrites["✨│staff-chat"] = boom

	res, err := New(nil).Apply(ctx, mem, mustParse(t, sampleBlueprint), Options{})
	require.NoError(t, err)

	_, ok := res.Roles.Get("Member")
	assert.False(t, ok)
	assert.Equal(t, 2, res.Roles.Len())

	_, ok = res.Channels.Get("memes")
	assert.False(t, ok)
	_, ok = res.Channels.Get("rules")
	assert.False(t, ok, "channels of a failed category are skipped")

	for _, name := range []string{"general", "ideas", "staff-chat"} {
		_, ok := res.Channels.Get(name)
		assert.True(t, ok, name)
	}
	staff, ok := mem.ChannelByName("✨│staff-chat")
	require.True(t, ok)
	assert.Empty(t, staff.Overwrites)

	// metrics count definitions, not what was created
	assert.Equal(t, 6, res.Metrics.ChannelCount)
	assert.Equal(t, 3, res.Metrics.RoleCount)
}

func TestApplyFetchesUncachedChannels(t *testing.T) {
	ctx := context.Background()
	mem := guild.NewMemory(testGuild)
	bp := mustParse(t, `{"roles":[{"name":"A"}],"categories":{"C":[{"name":"faq","message":{"title":"FAQ"}}]}}`)

	roles := CreateRoles(ctx, mem, bp.Roles)
	channels := CreateChannels(ctx, mem, bp, roles, nil)
	id, ok := channels.Get("faq")
	require.True(t, ok)
	mem.Evict(id)

	assert.Equal(t, 1, PostMessages(ctx, mem, channels, bp))
	embeds := mem.Embeds(id)
	require.Len(t, embeds, 1)
	assert.Equal(t, "📘 FAQ", embeds[0].Title)
}

func TestApplyNilArguments(t *testing.T) {
	b := New(nil)
	_, err := b.Apply(context.Background(), nil, &blueprint.Blueprint{}, Options{})
	assert.ErrorIs(t, err, ErrNilArgument)
	_, err = b.Apply(context.Background(), guild.NewMemory(testGuild), nil, Options{})
	assert.ErrorIs(t, err, ErrNilArgument)
}

func TestDuplicateRolesLastWins(t *testing.T) {
	ctx := context.Background()
	mem := guild.NewMemory(testGuild)
	roles := CreateRoles(ctx, mem, []blueprint.Role{{Name: "Helper"}, {Name: "Other"}, {Name: "Helper"}})

	assert.Equal(t, 2, roles.Len())
	all, err := mem.Roles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	id, ok := roles.Get("Helper")
	require.True(t, ok)
	first, _ := roles.Get("Other")
	assert.Greater(t, id, first)
}

func TestFormatName(t *testing.T) {
	tests := []struct {
		raw, prefix, want string
	}{
		{"General Chat", "", "general-chat"},
		{"General Chat", "✨", "✨│general-chat"},
		{"  Rules & Info!! ", "", "rules-info"},
		{"!!!", "", "channel"},
		{"✨│general", "✨", "✨│general"},
		{"memes", "🔥", "🔥│memes"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatName(tt.raw, tt.prefix))
		})
	}
}

func TestStripPrefix(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"✨│general", "general"},
		{"🔥│memes", "memes"},
		{"general", "general"},
		{"q│a", "q│a"},
		{"voice-1│lobby", "voice-1│lobby"},
		{"│a", "│a"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StripPrefix(tt.name), tt.name)
	}
}

func TestChannelEmojiOverridesPrefix(t *testing.T) {
	mem := guild.NewMemory(testGuild)
	bp := mustParse(t, `{"style":{"emojiPrefix":"✨"},"branding":{"emoji":"🔥"},"roles":[{"name":"A"}],
		"categories":{"C":[{"name":"one"},{"name":"two","emoji":"🎮"}]}}`)
	_, err := New(nil).Apply(context.Background(), mem, bp, Options{})
	require.NoError(t, err)

	_, ok := mem.ChannelByName("🔥│one")
	assert.True(t, ok)
	_, ok = mem.ChannelByName("🎮│two")
	assert.True(t, ok)
}

func TestBuildEmbed(t *testing.T) {
	tests := []struct {
		name      string
		msg       *blueprint.Message
		style     *blueprint.Style
		branding  *blueprint.Branding
		wantTitle string
		wantColor int
	}{
		{"default", &blueprint.Message{Title: "Hello"}, nil, nil, "💬 Hello", DefaultColor},
		{"themed", &blueprint.Message{Title: "About"}, &blueprint.Style{Theme: "neon-gold"}, nil, "🧩 About", 0xFFD700},
		{"branding wins", &blueprint.Message{Title: "Welcome"}, &blueprint.Style{Theme: "neon-gold"}, &blueprint.Branding{Color: "#010203", Emoji: "🔥"}, "🔥 Welcome", 0x010203},
		{"unknown theme", &blueprint.Message{Title: "faq"}, &blueprint.Style{Theme: "nope"}, nil, "📘 faq", DefaultColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := BuildEmbed(tt.msg, tt.style, tt.branding)
			assert.Equal(t, tt.wantTitle, embed.Title)
			assert.Equal(t, tt.wantColor, embed.Color)
		})
	}

	embed := BuildEmbed(&blueprint.Message{Sections: []blueprint.Section{{}}}, nil, nil)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, zeroWidth, embed.Fields[0].Name)
	assert.Equal(t, zeroWidth, embed.Fields[0].Value)
}
