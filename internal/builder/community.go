package builder

import (
	"context"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/logging"
)

// ApplyCommunityFeatures is a no-op unless the blueprint enables community
// mode. Welcome screen setup is only logged; Discord gates it behind the
// community feature, which a bot cannot turn on.
func ApplyCommunityFeatures(ctx context.Context, svc guild.Service, bp *blueprint.Blueprint, channels *ChannelMap) {
	if !bp.Community {
		return
	}
	logging.Info("[BUILDER] applying community features for guild %s", svc.GuildID())

	if bp.WelcomeScreen != nil {
		resolved := 0
		for _, p := range bp.WelcomeScreen.Prompts {
			if _, ok := channels.Get(p.Channel); ok {
				resolved++
			}
		}
		logging.Info("[BUILDER] welcome screen deferred for guild %s (%d/%d prompts resolved)",
			svc.GuildID(), resolved, len(bp.WelcomeScreen.Prompts))
	}
}
