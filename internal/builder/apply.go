package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/permissions"
	"go-guildbuilder/internal/storage"
	"go-guildbuilder/pkg/util"
)

// Progress lines sent before each stage.
const (
	StageRoles      = "Creating roles…"
	StageCategories = "Creating categories…"
	StageChannels   = "Building channels…"
	StageMessages   = "Posting about/rules/FAQ…"
	StageCommunity  = "Applying community features…"
	StageFinalize   = "Finalizing setup…"
)

const builtByNote = "✨ Your server was built by Guild Builder. Use /setup build to customize or /setup reapply to rerun."

var ErrNilArgument = errors.New("builder: nil blueprint or guild service")

type Options struct {
	Notifier Notifier
	// Source labels the build record (build, reapply, import, cli).
	Source string
}

type Result struct {
	Roles    *permissions.RoleMap
	Channels *ChannelMap
	Metrics  storage.BuildMetrics
	Record   storage.BuildRecord
}

// Builder applies blueprints and records what it built.
type Builder struct {
	store storage.Store
}

// New returns a Builder. A nil store skips persistence.
func New(store storage.Store) *Builder {
	return &Builder{store: store}
}

// Apply builds bp into the guild behind svc. The blueprint is expected to
// be valid already. Stages run in order and are not rolled back: partial
// failures are logged and the build carries on, so the only error is a nil
// argument.
func (b *Builder) Apply(ctx context.Context, svc guild.Service, bp *blueprint.Blueprint, opts Options) (*Result, error) {
	if svc == nil || bp == nil {
		return nil, ErrNilArgument
	}
	if opts.Source == "" {
		opts.Source = "build"
	}

	guildID := svc.GuildID()
	sw := util.NewStopwatch()
	logging.Info("[BUILDER] applying blueprint to guild %s (%s)", guildID, opts.Source)

	notify(ctx, opts.Notifier, StageRoles)
	roles := CreateRoles(ctx, svc, bp.Roles)

	notify(ctx, opts.Notifier, StageCategories)
	notify(ctx, opts.Notifier, StageChannels)
	channels := CreateChannels(ctx, svc, bp, roles, opts.Notifier)

	notify(ctx, opts.Notifier, StageMessages)
	PostMessages(ctx, svc, channels, bp)

	notify(ctx, opts.Notifier, StageCommunity)
	ApplyCommunityFeatures(ctx, svc, bp, channels)

	notify(ctx, opts.Notifier, StageFinalize)

	metrics := storage.BuildMetrics{
		BuildSeconds:  sw.Seconds(),
		CategoryCount: len(bp.Categories),
		ChannelCount:  bp.Categories.ChannelCount(),
		RoleCount:     len(bp.Roles),
	}
	record := storage.NewBuildRecord(guildID, opts.Source, metrics)
	b.persist(ctx, guildID, bp, record)

	notify(ctx, opts.Notifier, Summary(metrics))
	postBuiltBy(ctx, svc)

	logging.Info("[BUILDER] guild %s built in %.2fs: %d roles, %d channels",
		guildID, metrics.BuildSeconds, roles.Len(), channels.Len())

	return &Result{Roles: roles, Channels: channels, Metrics: metrics, Record: record}, nil
}

func (b *Builder) persist(ctx context.Context, guildID string, bp *blueprint.Blueprint, record storage.BuildRecord) {
	if b.store == nil {
		return
	}
	nonFatalErr("persist blueprint", func() error { return b.store.SaveBlueprint(ctx, guildID, bp) })
	nonFatalErr("persist build record", func() error { return b.store.SaveBuild(ctx, record) })
	nonFatalErr("append usage log", func() error { return b.store.AppendUsage(ctx, record) })
}

// Summary is the final progress note of a build.
func Summary(m storage.BuildMetrics) string {
	return fmt.Sprintf("🎉 Your server is ready!\n⏱️ Build time: %.2f seconds\n📁 Categories: %d\n📄 Channels: %d\n🧩 Roles: %d\n\nRerun: /setup reapply\nSave as template: /setup save-template <name>",
		m.BuildSeconds, m.CategoryCount, m.ChannelCount, m.RoleCount)
}

// postBuiltBy drops a short note in a text channel named like "general",
// falling back to the first text channel.
func postBuiltBy(ctx context.Context, svc guild.Service) {
	channels, ok := nonFatal("list channels", func() ([]*guild.Channel, error) {
		return svc.Channels(ctx)
	})
	if !ok {
		return
	}

	var target *guild.Channel
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText {
			continue
		}
		if strings.Contains(ch.Name, "general") {
			target = ch
			break
		}
		if target == nil {
			target = ch
		}
	}
	if target == nil {
		return
	}
	nonFatalErr("post build note", func() error {
		return svc.SendText(ctx, target.ID, builtByNote)
	})
}
