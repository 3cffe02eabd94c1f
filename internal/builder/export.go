package builder

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/permissions"
	"go-guildbuilder/pkg/util"
)

// UncategorizedName holds channels that sit outside any category on export.
const UncategorizedName = "uncategorized"

// Export snapshots the guild into a blueprint. Managed roles and @everyone
// are skipped; branding and style are carried over from last when present
// so a reapply keeps the same look. Channel names lose their emoji prefix.
func Export(ctx context.Context, svc guild.Service, last *blueprint.Blueprint) (*blueprint.Blueprint, error) {
	everyone := svc.DefaultRoleID()

	roles, err := svc.Roles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	channels, err := svc.Channels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	bp := &blueprint.Blueprint{Categories: blueprint.Categories{}}
	if last != nil {
		bp.Branding = last.Branding
		bp.Style = last.Style
	}

	// highest role first, matching the order CreateRoles would recreate them in
	sorted := append([]*guild.Role(nil), roles...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Position > sorted[j].Position })
	for _, r := range sorted {
		if r.Managed || r.ID == everyone || r.Name == "@everyone" {
			continue
		}
		bp.Roles = append(bp.Roles, blueprint.Role{
			Name:        r.Name,
			Color:       util.FormatHexColor(r.Color),
			Permissions: r.Permissions.Names(),
		})
	}

	byPosition := append([]*guild.Channel(nil), channels...)
	sort.SliceStable(byPosition, func(i, j int) bool { return byPosition[i].Position < byPosition[j].Position })

	categoryName := make(map[string]string)
	for _, ch := range byPosition {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			categoryName[ch.ID] = ch.Name
			if _, exists := bp.Categories.Get(ch.Name); !exists {
				bp.Categories.Set(ch.Name, []blueprint.Channel{})
			}
			if preset := InferPreset(ch.Overwrites, everyone); preset != "" {
				if bp.CategoryPrivacy == nil {
					bp.CategoryPrivacy = make(map[string]string)
				}
				bp.CategoryPrivacy[ch.Name] = string(preset)
			}
		}
	}

	for _, ch := range byPosition {
		if ch.Type == discordgo.ChannelTypeGuildCategory {
			continue
		}
		catName, ok := categoryName[ch.ParentID]
		if !ok {
			catName = UncategorizedName
		}

		def := exportChannel(ch, everyone)
		existing, _ := bp.Categories.Get(catName)
		bp.Categories.Set(catName, append(existing, def))

		if !guild.IsTextLike(ch.Type) {
			continue
		}
		hooks, ok := nonFatal("list webhooks for "+ch.Name, func() ([]*guild.Webhook, error) {
			return svc.Webhooks(ctx, ch.ID)
		})
		if ok && len(hooks) > 0 {
			if bp.Webhooks == nil {
				bp.Webhooks = make(map[string]blueprint.WebhookDef)
			}
			if _, dup := bp.Webhooks[def.Name]; !dup {
				bp.Webhooks[def.Name] = blueprint.WebhookDef{Name: hooks[0].Name}
			}
		}
	}

	return bp, nil
}

func exportChannel(ch *guild.Channel, everyoneID string) blueprint.Channel {
	def := blueprint.Channel{
		Name: StripPrefix(ch.Name),
		Type: exportType(ch.Type),
	}
	if def.Type == blueprint.ChannelText {
		def.Type = ""
	}
	if guild.IsTextLike(ch.Type) || ch.Type == discordgo.ChannelTypeGuildForum {
		def.Topic = ch.Topic
	}
	if ch.Type == discordgo.ChannelTypeGuildForum && validArchive(ch.DefaultAutoArchiveDuration) {
		def.DefaultAutoArchiveDuration = ch.DefaultAutoArchiveDuration
	}

	if preset := InferPreset(ch.Overwrites, everyoneID); preset != "" {
		def.PermissionsPreset = string(preset)
	} else if g, ok := findGrant(ch.Overwrites, everyoneID); ok && g.Deny.Has(permissions.View) {
		def.Private = true
	}
	if g, ok := findGrant(ch.Overwrites, everyoneID); ok && g.Deny.Has(permissions.ThreadLock) {
		def.ThreadsLocked = true
	}
	return def
}

func exportType(t discordgo.ChannelType) blueprint.ChannelType {
	switch t {
	case discordgo.ChannelTypeGuildVoice:
		return blueprint.ChannelVoice
	case discordgo.ChannelTypeGuildNews:
		return blueprint.ChannelAnnouncement
	case discordgo.ChannelTypeGuildStageVoice:
		return blueprint.ChannelStage
	case discordgo.ChannelTypeGuildForum:
		return blueprint.ChannelForum
	default:
		return blueprint.ChannelText
	}
}

func validArchive(minutes int) bool {
	for _, v := range blueprint.AutoArchiveDurations {
		if v == minutes {
			return true
		}
	}
	return false
}

func findGrant(grants []permissions.Grant, target string) (permissions.Grant, bool) {
	for _, g := range grants {
		if g.TargetID == target {
			return g, true
		}
	}
	return permissions.Grant{}, false
}

// InferPreset maps a channel's overwrites back to the preset that would
// produce them. announcement-lock is checked before public-readonly since
// its @everyone overwrite is the same; a staff role allowed to send is what
// tells them apart. Returns "" when nothing matches.
func InferPreset(overwrites []permissions.Grant, everyoneID string) permissions.Preset {
	everyone, ok := findGrant(overwrites, everyoneID)
	if !ok {
		return ""
	}

	othersAllow := func(bit permissions.Set) bool {
		for _, g := range overwrites {
			if g.TargetID != everyoneID && g.Allow.Has(bit) {
				return true
			}
		}
		return false
	}

	switch {
	case everyone.Deny.Has(permissions.Send) && everyone.Allow.Has(permissions.View) && othersAllow(permissions.Send):
		return permissions.AnnouncementLock
	case everyone.Deny.Has(permissions.Send) && everyone.Allow.Has(permissions.View):
		return permissions.PublicReadonly
	case everyone.Deny.Has(permissions.View) && othersAllow(permissions.View):
		return permissions.StaffPrivate
	}
	return ""
}
