package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/ai"
	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/cooldown"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/metrics"
	"go-guildbuilder/internal/storage"
)

// ResetConfirmation must be typed into the confirm option of /setup reset.
const ResetConfirmation = "CONFIRM"

var (
	ErrResetNotConfirmed = errors.New("reset not confirmed")
	ErrTemplateName      = errors.New("template name must be 2-32 chars (alphanumeric, dash, underscore)")
	ErrNoFetcher         = errors.New("imports are not configured")

	templateName = regexp.MustCompile(`(?i)^[a-z0-9_-]{2,32}$`)
)

// InvalidError wraps the schema errors of an imported or exported blueprint.
type InvalidError struct {
	Errors []blueprint.ValidationError
}

func (e *InvalidError) Error() string {
	return "validation errors: " + blueprint.FormatErrors(e.Errors)
}

// Designer turns an owner's brief into a validated blueprint.
type Designer interface {
	Design(ctx context.Context, brief ai.Brief, serverName string, n builder.Notifier) (*blueprint.Blueprint, error)
}

// Fetcher downloads an attachment with a size cap.
type Fetcher interface {
	Get(ctx context.Context, url string, maxBytes int) ([]byte, error)
}

// Setup implements the /setup subcommands on top of a guild.Service so the
// same code runs against Discord and the in-memory guild.
type Setup struct {
	Store          storage.Store
	Config         *storage.ConfigCache
	Cooldowns      *cooldown.Guard
	Designer       Designer
	Builder        *builder.Builder
	Fetcher        Fetcher
	MaxImportBytes int
	Metrics        *metrics.Registry
}

func (s *Setup) guard(ctx context.Context, guildID, userID string) error {
	if s.Cooldowns == nil {
		return nil
	}
	if err := s.Cooldowns.Check(ctx, guildID, userID); err != nil {
		return err
	}
	return s.Cooldowns.Record(ctx, guildID, userID)
}

func (s *Setup) setFlag(ctx context.Context, guildID, key string) {
	if s.Config == nil {
		return
	}
	if err := s.Config.Set(ctx, guildID, key, strconv.FormatInt(time.Now().Unix(), 10)); err != nil {
		logging.Warn("[SETUP] Failed to store %s for guild %s: %v", key, guildID, err)
	}
}

// Build designs a blueprint from the brief and applies it.
func (s *Setup) Build(ctx context.Context, svc guild.Service, userID, serverName string, brief ai.Brief, n builder.Notifier) (*builder.Result, error) {
	if err := s.guard(ctx, svc.GuildID(), userID); err != nil {
		return nil, err
	}

	started := time.Now()
	bp, err := s.Designer.Design(ctx, brief, serverName, n)
	s.Metrics.RecordDesign(time.Since(started), err)
	if err != nil {
		return nil, err
	}
	if brief.Community {
		bp.Community = true
	}

	res, err := s.Builder.Apply(ctx, svc, bp, builder.Options{Notifier: n, Source: "build"})
	if err != nil {
		return nil, err
	}
	s.Metrics.RecordBuild(secondsToDuration(res.Metrics.BuildSeconds), false)
	return res, nil
}

func secondsToDuration(sec float64) time.Duration {
	return time.Duration(sec * float64(time.Second))
}

// Reapply rebuilds the guild from its stored blueprint.
func (s *Setup) Reapply(ctx context.Context, svc guild.Service, userID string, n builder.Notifier) (*builder.Result, error) {
	bp, err := s.Store.LoadBlueprint(ctx, svc.GuildID())
	if err != nil {
		return nil, err
	}
	if err := s.guard(ctx, svc.GuildID(), userID); err != nil {
		return nil, err
	}

	res, err := s.Builder.Apply(ctx, svc, bp, builder.Options{Notifier: n, Source: "reapply"})
	if err != nil {
		return nil, err
	}
	s.setFlag(ctx, svc.GuildID(), storage.KeyLastReapply)
	s.Metrics.RecordBuild(secondsToDuration(res.Metrics.BuildSeconds), true)
	return res, nil
}

// Preview returns the outline and the JSON document of the stored blueprint.
func (s *Setup) Preview(ctx context.Context, guildID string) (string, []byte, error) {
	bp, err := s.Store.LoadBlueprint(ctx, guildID)
	if err != nil {
		return "", nil, err
	}
	doc, err := blueprint.Marshal(bp)
	if err != nil {
		return "", nil, fmt.Errorf("encode blueprint: %w", err)
	}
	return blueprint.Preview(bp), doc, nil
}

// Export snapshots the live guild, stores it as the guild's blueprint and
// returns the document.
func (s *Setup) Export(ctx context.Context, svc guild.Service) (*blueprint.Blueprint, []byte, error) {
	last, err := s.Store.LoadBlueprint(ctx, svc.GuildID())
	if err != nil && !errors.Is(err, storage.ErrNoBlueprint) {
		return nil, nil, err
	}

	bp, err := builder.Export(ctx, svc, last)
	if err != nil {
		return nil, nil, err
	}
	if res := blueprint.Validate(bp); !res.Valid {
		return bp, nil, &InvalidError{Errors: res.Errors}
	}

	doc, err := blueprint.Marshal(bp)
	if err != nil {
		return nil, nil, fmt.Errorf("encode export: %w", err)
	}
	if err := s.Store.SaveBlueprint(ctx, svc.GuildID(), bp); err != nil {
		return nil, nil, err
	}
	s.setFlag(ctx, svc.GuildID(), storage.KeyLastExport)
	s.Metrics.RecordExport()
	return bp, doc, nil
}

// Import downloads a JSON or YAML blueprint and stores it.
func (s *Setup) Import(ctx context.Context, guildID, url string) (*blueprint.Blueprint, error) {
	if s.Fetcher == nil {
		return nil, ErrNoFetcher
	}
	data, err := s.Fetcher.Get(ctx, url, s.MaxImportBytes)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	return s.ImportBytes(ctx, guildID, data)
}

// ImportBytes validates a JSON or YAML blueprint and stores it. Nothing is
// built until the owner runs reapply.
func (s *Setup) ImportBytes(ctx context.Context, guildID string, data []byte) (*blueprint.Blueprint, error) {
	doc, err := blueprint.ParseAny(data)
	if err != nil {
		return nil, err
	}
	res, err := blueprint.ValidateJSON(doc)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, &InvalidError{Errors: res.Errors}
	}

	bp, err := blueprint.Parse(doc)
	if err != nil {
		return nil, err
	}
	if err := s.Store.SaveBlueprint(ctx, guildID, bp); err != nil {
		return nil, err
	}
	s.setFlag(ctx, guildID, storage.KeyImportedAt)
	s.Metrics.RecordImport()
	return bp, nil
}

// SaveTemplate stores the guild's blueprint under a global name.
func (s *Setup) SaveTemplate(ctx context.Context, guildID, name string) error {
	if !templateName.MatchString(name) {
		return ErrTemplateName
	}
	bp, err := s.Store.LoadBlueprint(ctx, guildID)
	if err != nil {
		return err
	}
	doc, err := blueprint.Marshal(bp)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	return s.Store.SaveTemplate(ctx, storage.Template{
		Name:      name,
		GuildID:   guildID,
		Blueprint: doc,
		CreatedAt: time.Now().Unix(),
	})
}

// UseTemplate makes a saved template the guild's blueprint.
func (s *Setup) UseTemplate(ctx context.Context, guildID, name string) (*blueprint.Blueprint, error) {
	tpl, err := s.Store.LoadTemplate(ctx, name)
	if err != nil {
		return nil, err
	}
	bp, err := blueprint.Parse(tpl.Blueprint)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	if err := s.Store.SaveBlueprint(ctx, guildID, bp); err != nil {
		return nil, err
	}
	return bp, nil
}

func (s *Setup) Templates(ctx context.Context) ([]string, error) {
	return s.Store.ListTemplates(ctx)
}

// Reset deletes every channel in the guild. Roles stay so the owner keeps
// access. Channels go before categories. It returns how many were deleted.
func (s *Setup) Reset(ctx context.Context, svc guild.Service, confirm string) (int, error) {
	if confirm != ResetConfirmation {
		return 0, ErrResetNotConfirmed
	}

	channels, err := svc.Channels(ctx)
	if err != nil {
		return 0, err
	}
	sort.SliceStable(channels, func(i, j int) bool {
		ci := channels[i].Type == discordgo.ChannelTypeGuildCategory
		cj := channels[j].Type == discordgo.ChannelTypeGuildCategory
		return !ci && cj
	})

	deleted := 0
	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if err := svc.DeleteChannel(ctx, ch.ID); err != nil {
			logging.Warn("[SETUP] Failed to delete channel %s (%s): %v", ch.Name, ch.ID, err)
			continue
		}
		deleted++
	}

	if s.Cooldowns != nil {
		if err := s.Cooldowns.Reset(ctx, svc.GuildID()); err != nil {
			logging.Warn("[SETUP] Failed to clear cooldown for guild %s: %v", svc.GuildID(), err)
		}
	}
	s.Metrics.RecordReset()
	logging.Info("[SETUP] Reset guild %s: deleted %d/%d channels", svc.GuildID(), deleted, len(channels))
	return deleted, nil
}

// describeError turns a subcommand error into the owner-facing reply.
func describeError(err error) string {
	var cd *cooldown.Error
	var invalid *InvalidError
	var design *ai.DesignError
	switch {
	case errors.As(err, &cd):
		return fmt.Sprintf("⏳ %s cooldown active. Try again in %ds.", capitalize(cd.Scope), int(cd.Remaining.Round(time.Second).Seconds()))
	case errors.Is(err, storage.ErrNoBlueprint):
		return "No stored blueprint. Run /setup build first or import/export."
	case errors.Is(err, storage.ErrNotFound):
		return "Template not found. Use /setup templates to list them."
	case errors.Is(err, ErrResetNotConfirmed):
		return "Reset cancelled. Type CONFIRM in the confirm option to wipe channels."
	case errors.Is(err, ErrTemplateName):
		return "Template name must be 2-32 chars (alphanumeric, dash, underscore)."
	case errors.As(err, &invalid):
		return "Validation errors: " + blueprint.FormatErrors(invalid.Errors)
	case errors.As(err, &design):
		return "❌ Couldn't produce a valid blueprint. Try a more specific description.\n" + blueprint.FormatErrors(design.Errors)
	default:
		return "Something went wrong: " + err.Error()
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
