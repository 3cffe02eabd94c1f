package commands

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"

	"go-guildbuilder/internal/ai"
	"go-guildbuilder/internal/bot"
	"go-guildbuilder/internal/builder"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/notifier"
)

// commandTimeout bounds one subcommand, including a full build.
const commandTimeout = 10 * time.Minute

// Handler manages all command interactions
type Handler struct {
	session *bot.Session
	setup   *Setup
	limiter *rate.Limiter
}

var globalHandler *Handler

// Initialize creates the command handler, hooks it to the session and
// registers the slash commands. devGuildID scopes registration to one guild
// when set.
func Initialize(session *bot.Session, setup *Setup, limiter *rate.Limiter, appID, devGuildID string) error {
	globalHandler = &Handler{
		session: session,
		setup:   setup,
		limiter: limiter,
	}

	session.AddHandler(globalHandler.handleInteraction)

	commands := GetAllCommands()
	if err := session.RegisterCommands(appID, devGuildID, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	logging.Info("Command handler initialized with %d commands", len(commands))
	return nil
}

// GetHandler returns the global command handler
func GetHandler() *Handler {
	return globalHandler
}

func (h *Handler) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	h.handleCommand(s, i)
}

// handleCommand routes slash commands to their handlers
func (h *Handler) handleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	r := &reply{s: s, i: i}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	name := data.Name
	switch data.Name {
	case "setup":
		if len(data.Options) == 0 {
			err = fmt.Errorf("missing subcommand")
			break
		}
		sub := data.Options[0]
		name += " " + sub.Name
		err = h.handleSetup(ctx, r, sub)
	case "ping":
		err = handlePing(s, i)
	default:
		err = fmt.Errorf("unknown command: %s", data.Name)
	}

	if err != nil {
		logging.Error("Command error [%s]: %v", name, err)
		r.send(describeError(err))
	}
}

func (h *Handler) handleSetup(ctx context.Context, r *reply, sub *discordgo.ApplicationCommandInteractionDataOption) error {
	if r.i.GuildID == "" {
		return r.send("This command only works in a server.")
	}
	g, ok := checkOwnerOnly(r.s, r.i)
	if !ok {
		return r.send("Owner only.")
	}

	svc := guild.NewDiscord(r.s, r.i.GuildID, h.limiter)
	opts := optionMap(sub.Options)
	userID := interactionUserID(r.i)

	switch sub.Name {
	case "build":
		return h.handleBuild(ctx, r, svc, g, userID, opts)
	case "preview":
		return h.handlePreview(ctx, r)
	case "export":
		return h.handleExport(ctx, r, svc)
	case "reapply":
		return h.handleReapply(ctx, r, svc, userID)
	case "import":
		return h.handleImport(ctx, r, opts)
	case "save-template":
		name := opts.str("name")
		if err := h.setup.SaveTemplate(ctx, r.i.GuildID, name); err != nil {
			return err
		}
		return r.send(fmt.Sprintf("Template saved as `%s`.", name))
	case "use-template":
		name := opts.str("name")
		if _, err := h.setup.UseTemplate(ctx, r.i.GuildID, name); err != nil {
			return err
		}
		return r.send(fmt.Sprintf("Template `%s` loaded. Use /setup reapply to build.", name))
	case "templates":
		names, err := h.setup.Templates(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return r.send("No templates saved yet. Use /setup save-template <name>.")
		}
		return r.send("📚 Templates:\n• " + strings.Join(names, "\n• "))
	case "reset":
		return h.handleReset(ctx, r, svc, opts.str("confirm"))
	case "stats":
		return handleStats(ctx, r, h.session, h.setup.Store, h.setup.Metrics)
	default:
		return fmt.Errorf("unknown subcommand: %s", sub.Name)
	}
}

func (h *Handler) progress(r *reply, userID string) builder.Notifier {
	return notifier.Fallback{
		notifier.NewDM(r.s, userID),
		notifier.NewFollowup(r.s, r.i.Interaction),
	}
}

func (h *Handler) handleBuild(ctx context.Context, r *reply, svc guild.Service, g *discordgo.Guild, userID string, opts options) error {
	brief := ai.Brief{
		Description:  opts.str("description"),
		Style:        opts.str("style"),
		Categories:   opts.str("sections"),
		Roles:        opts.str("roles"),
		PrivateAreas: opts.str("private"),
		WantsInfo:    opts.boolOr("info", true),
		Community:    opts.boolOr("community", false),
	}
	if choice := opts.str("template"); choice != "" && choice != "auto" {
		brief.RuleTemplate = ai.TemplateKey(choice)
	}

	if err := r.deferReply(); err != nil {
		return err
	}
	res, err := h.setup.Build(ctx, svc, userID, g.Name, brief, h.progress(r, userID))
	if err != nil {
		return err
	}
	return r.sendEmbed(notifier.BuildEmbed("✅ Build complete", builder.Summary(res.Metrics), true))
}

func (h *Handler) handlePreview(ctx context.Context, r *reply) error {
	text, doc, err := h.setup.Preview(ctx, r.i.GuildID)
	if err != nil {
		return err
	}
	return r.send("Here's what I'll build 👇\n"+text, jsonFile("blueprint.json", doc))
}

func (h *Handler) handleExport(ctx context.Context, r *reply, svc guild.Service) error {
	if err := r.deferReply(); err != nil {
		return err
	}
	_, doc, err := h.setup.Export(ctx, svc)
	if err != nil {
		return err
	}
	return r.send("Export complete. Use /setup save-template to keep it.", jsonFile(r.i.GuildID+"-export.json", doc))
}

func (h *Handler) handleReapply(ctx context.Context, r *reply, svc guild.Service, userID string) error {
	if err := r.deferReply(); err != nil {
		return err
	}
	res, err := h.setup.Reapply(ctx, svc, userID, h.progress(r, userID))
	if err != nil {
		return err
	}
	return r.send(fmt.Sprintf("Reapply complete. Channels: %d, Roles: %d", res.Metrics.ChannelCount, res.Metrics.RoleCount))
}

func (h *Handler) handleImport(ctx context.Context, r *reply, opts options) error {
	data := r.i.ApplicationCommandData()
	var att *discordgo.MessageAttachment
	if data.Resolved != nil {
		att = data.Resolved.Attachments[opts.str("file")]
	}
	if att == nil {
		return r.send("Attach a blueprint JSON file.")
	}
	if limit := h.setup.MaxImportBytes; limit > 0 && att.Size > limit {
		return r.send(fmt.Sprintf("File too large (%d bytes, limit %d).", att.Size, limit))
	}

	if err := r.deferReply(); err != nil {
		return err
	}
	bp, err := h.setup.Import(ctx, r.i.GuildID, att.URL)
	if err != nil {
		return err
	}
	return r.send(fmt.Sprintf("Blueprint imported (%d categories, %d channels). Use /setup reapply to build.",
		len(bp.Categories), bp.Categories.ChannelCount()))
}

func (h *Handler) handleReset(ctx context.Context, r *reply, svc guild.Service, confirm string) error {
	if confirm != ResetConfirmation {
		return ErrResetNotConfirmed
	}
	if err := r.deferReply(); err != nil {
		return err
	}
	r.send("Resetting server channels...")
	n, err := h.setup.Reset(ctx, svc, confirm)
	if err != nil {
		return err
	}
	return r.send(fmt.Sprintf("Server channels wiped (%d deleted).", n))
}

// checkOwnerOnly reports whether the invoking user owns the guild.
func checkOwnerOnly(s *discordgo.Session, i *discordgo.InteractionCreate) (*discordgo.Guild, bool) {
	g, err := s.State.Guild(i.GuildID)
	if err != nil {
		g, err = s.Guild(i.GuildID)
		if err != nil {
			logging.Warn("[COMMANDS] Failed to load guild %s: %v", i.GuildID, err)
			return nil, false
		}
	}
	return g, g.OwnerID == interactionUserID(i)
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func jsonFile(name string, doc []byte) *discordgo.File {
	return &discordgo.File{
		Name:        name,
		ContentType: "application/json",
		Reader:      bytes.NewReader(doc),
	}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	if s, ok := opt.Value.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func (o options) boolOr(name string, def bool) bool {
	if opt, ok := o[name]; ok && opt.Type == discordgo.ApplicationCommandOptionBoolean {
		return opt.BoolValue()
	}
	return def
}

// reply answers an interaction ephemerally, switching to followups once the
// response has been deferred.
type reply struct {
	s        *discordgo.Session
	i        *discordgo.InteractionCreate
	deferred bool
}

func (r *reply) deferReply() error {
	err := r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err == nil {
		r.deferred = true
	}
	return err
}

func (r *reply) send(content string, files ...*discordgo.File) error {
	if r.deferred {
		_, err := r.s.FollowupMessageCreate(r.i.Interaction, true, &discordgo.WebhookParams{
			Content: content,
			Files:   files,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return err
	}
	return r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Files:   files,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}

func (r *reply) sendEmbed(embeds ...*discordgo.MessageEmbed) error {
	if !r.deferred {
		return r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Embeds: embeds,
				Flags:  discordgo.MessageFlagsEphemeral,
			},
		})
	}
	_, err := r.s.FollowupMessageCreate(r.i.Interaction, true, &discordgo.WebhookParams{
		Embeds: embeds,
		Flags:  discordgo.MessageFlagsEphemeral,
	})
	return err
}
