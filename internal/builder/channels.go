package builder

import (
	"context"
	"sort"

	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/permissions"
)

// ChannelType maps a blueprint channel type to Discord's. Media channels are
// created as text channels.
func ChannelType(t blueprint.ChannelType) discordgo.ChannelType {
	switch t {
	case blueprint.ChannelVoice:
		return discordgo.ChannelTypeGuildVoice
	case blueprint.ChannelAnnouncement:
		return discordgo.ChannelTypeGuildNews
	case blueprint.ChannelStage:
		return discordgo.ChannelTypeGuildStageVoice
	case blueprint.ChannelForum:
		return discordgo.ChannelTypeGuildForum
	default:
		return discordgo.ChannelTypeGuildText
	}
}

type orderedChannel struct {
	id    string
	order int
}

// CreateChannels creates each category in document order and its channels
// beneath it. A failed category skips its channels; a failed channel never
// stops its siblings. Channels that declare an order are repositioned
// within their category once everything exists.
func CreateChannels(ctx context.Context, svc guild.Service, bp *blueprint.Blueprint, roles *permissions.RoleMap, n Notifier) *ChannelMap {
	channels := NewChannelMap()
	everyone := svc.DefaultRoleID()
	prefix := bp.EmojiPrefix()
	buckets := make(map[string][]orderedChannel)
	var bucketOrder []string

	for _, cat := range bp.Categories {
		category, ok := nonFatal("create category "+cat.Name, func() (*guild.Channel, error) {
			return svc.CreateChannel(ctx, guild.ChannelSpec{
				Name: FormatName(cat.Name, ""),
				Type: discordgo.ChannelTypeGuildCategory,
			})
		})
		if !ok {
			continue
		}

		if preset := bp.CategoryPrivacy[cat.Name]; preset != "" {
			if grants := permissions.ResolveCategory(permissions.Preset(preset), roles, everyone); len(grants) > 0 {
				nonFatalErr("category preset "+cat.Name, func() error {
					return svc.SetPermissionOverwrites(ctx, category.ID, grants)
				})
			}
		}

		for _, def := range cat.Channels {
			channelPrefix := prefix
			if def.Emoji != "" {
				channelPrefix = def.Emoji
			}
			name := FormatName(def.Name, channelPrefix)

			spec := guild.ChannelSpec{
				Name:     name,
				Type:     ChannelType(def.EffectiveType()),
				Topic:    def.Topic,
				ParentID: category.ID,
			}
			if spec.Type == discordgo.ChannelTypeGuildForum {
				spec.DefaultAutoArchiveDuration = def.DefaultAutoArchiveDuration
			}

			created, ok := nonFatal("create channel "+name, func() (*guild.Channel, error) {
				return svc.CreateChannel(ctx, spec)
			})
			if !ok {
				continue
			}
			channels.Set(def.Name, created.ID)

			grants := permissions.ChannelOverwrites(def, roles, everyone)
			if def.ThreadsLocked {
				grants = append(grants, permissions.ThreadLockGrant(everyone))
			}
			if len(grants) > 0 {
				nonFatalErr("overwrites for "+name, func() error {
					return svc.SetPermissionOverwrites(ctx, created.ID, permissions.Merge(grants))
				})
			}

			notify(ctx, n, "✅ Created "+name)

			if def.Order != nil {
				if _, seen := buckets[cat.Name]; !seen {
					bucketOrder = append(bucketOrder, cat.Name)
				}
				buckets[cat.Name] = append(buckets[cat.Name], orderedChannel{id: created.ID, order: *def.Order})
			}

			if hook, ok := bp.Webhooks[def.Name]; ok {
				hookName := hook.Name
				if hookName == "" {
					hookName = def.Name
				}
				if _, ok := nonFatal("webhook for "+name, func() (*guild.Webhook, error) {
					return svc.CreateWebhook(ctx, created.ID, hookName, hook.Avatar)
				}); ok {
					notify(ctx, n, "🔗 Webhook created for "+name)
				}
			}
		}
	}

	for _, catName := range bucketOrder {
		items := buckets[catName]
		sort.SliceStable(items, func(i, j int) bool { return items[i].order < items[j].order })
		for pos, item := range items {
			nonFatalErr("position for "+item.id, func() error {
				return svc.SetChannelPosition(ctx, item.id, pos)
			})
		}
	}

	return channels
}
