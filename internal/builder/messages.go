package builder

import (
	"context"
	"fmt"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
)

// PostMessages sends the embed of every channel that declares a message.
// Channels missing from the map were never created and are skipped.
func PostMessages(ctx context.Context, svc guild.Service, channels *ChannelMap, bp *blueprint.Blueprint) int {
	posted := 0
	for _, cat := range bp.Categories {
		for _, def := range cat.Channels {
			if def.Message == nil {
				continue
			}
			id, ok := channels.Get(def.Name)
			if !ok {
				continue
			}
			sent := nonFatalErr("post message in "+def.Name, func() error {
				ch, cached := svc.CachedChannel(id)
				if !cached {
					var err error
					if ch, err = svc.FetchChannel(ctx, id); err != nil {
						return fmt.Errorf("resolve channel: %w", err)
					}
				}
				return svc.SendEmbed(ctx, ch.ID, BuildEmbed(def.Message, bp.Style, bp.Branding))
			})
			if sent {
				posted++
			}
		}
	}
	return posted
}
