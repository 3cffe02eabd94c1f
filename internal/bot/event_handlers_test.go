package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-guildbuilder/internal/storage"
)

type recordingSender struct {
	err   error
	lines []string
}

func (r *recordingSender) Notify(ctx context.Context, text string) error {
	if r.err != nil {
		return r.err
	}
	r.lines = append(r.lines, text)
	return nil
}

func TestWelcomeOwnerOncePerGuild(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewConfigCache(storage.NewMemory())
	dm := &recordingSender{}

	require.NoError(t, welcomeOwner(ctx, cache, "1", "Test Server", dm, nil))
	require.NoError(t, welcomeOwner(ctx, cache, "1", "Test Server", dm, nil))

	require.Len(t, dm.lines, 1)
	assert.Contains(t, dm.lines[0], "**Test Server**")
	assert.Contains(t, dm.lines[0], "/setup build")

	_, sent, err := cache.Get(ctx, "1", storage.KeyWelcomeSent)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestWelcomeOwnerFallsBackToSystemChannel(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewConfigCache(storage.NewMemory())
	dm := &recordingSender{err: errors.New("cannot send messages to this user")}
	system := &recordingSender{}

	require.NoError(t, welcomeOwner(ctx, cache, "2", "Quiet", dm, system))
	assert.Equal(t, []string{dmFailedNotice}, system.lines)

	// no system channel
	require.NoError(t, welcomeOwner(ctx, cache, "3", "NoSystem", dm, nil))
	_, sent, err := cache.Get(ctx, "3", storage.KeyWelcomeSent)
	require.NoError(t, err)
	assert.True(t, sent)
}

func TestGuildCreateWelcomeDisabled(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewConfigCache(storage.NewMemory())

	// the session is never touched when the welcome is off
	handler := onGuildCreate(cache, false)
	handler(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "5", Name: "Quiet", OwnerID: "9"}})

	_, sent, err := cache.Get(ctx, "5", storage.KeyWelcomeSent)
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestGuildCreateSkipsUnavailable(t *testing.T) {
	ctx := context.Background()
	cache := storage.NewConfigCache(storage.NewMemory())

	handler := onGuildCreate(cache, true)
	handler(nil, &discordgo.GuildCreate{Guild: &discordgo.Guild{ID: "6", Unavailable: true}})
	handler(nil, &discordgo.GuildCreate{})

	_, sent, err := cache.Get(ctx, "6", storage.KeyWelcomeSent)
	require.NoError(t, err)
	assert.False(t, sent)
}
