package commands

import (
	"github.com/bwmarrin/discordgo"

	"go-guildbuilder/internal/ai"
)

var setupDefaultPermissions int64 = discordgo.PermissionAdministrator

var styleChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Neon Gold (💸)", Value: "neon-gold"},
	{Name: "Cyberpunk", Value: "cyberpunk"},
	{Name: "Cozy Pastel", Value: "cozy-pastel"},
	{Name: "Minimal Clean", Value: "minimal-clean"},
	{Name: "Streamer Dark Mode", Value: "streamer-dark"},
	{Name: "Degen / Casino", Value: "degen-casino"},
}

var templateChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Auto-detect", Value: "auto"},
	{Name: "Default community", Value: ai.TemplateDefault},
	{Name: "Gaming", Value: ai.TemplateGaming},
	{Name: "Crypto / Web3", Value: ai.TemplateCrypto},
	{Name: "Support", Value: ai.TemplateSupport},
	{Name: "Content creator", Value: ai.TemplateContent},
	{Name: "Professional", Value: ai.TemplateProfessional},
}

// GetAllCommands returns all application commands
func GetAllCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "setup",
			Description:              "Run or reset the automated server builder.",
			DefaultMemberPermissions: &setupDefaultPermissions,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "build",
					Description: "Describe your server and let AI build it",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "description",
							Description: "What kind of server is this?",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
						{
							Name:        "style",
							Description: "Style/theme",
							Type:        discordgo.ApplicationCommandOptionString,
							Choices:     styleChoices,
						},
						{
							Name:        "sections",
							Description: "Core sections, comma separated (Info, Community, Support, Staff...)",
							Type:        discordgo.ApplicationCommandOptionString,
						},
						{
							Name:        "roles",
							Description: "Roles you need, comma separated",
							Type:        discordgo.ApplicationCommandOptionString,
						},
						{
							Name:        "private",
							Description: "Private areas (e.g. staff only)",
							Type:        discordgo.ApplicationCommandOptionString,
						},
						{
							Name:        "info",
							Description: "Auto-generate rules/about/FAQ (default yes)",
							Type:        discordgo.ApplicationCommandOptionBoolean,
						},
						{
							Name:        "template",
							Description: "Rules/FAQ template",
							Type:        discordgo.ApplicationCommandOptionString,
							Choices:     templateChoices,
						},
						{
							Name:        "community",
							Description: "Enable community features",
							Type:        discordgo.ApplicationCommandOptionBoolean,
						},
					},
				},
				{
					Name:        "preview",
					Description: "Preview the stored blueprint",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "export",
					Description: "Export current server into a blueprint",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "reapply",
					Description: "Reapply the stored blueprint",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "import",
					Description: "Import a blueprint JSON or YAML file",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "file",
							Description: "Blueprint file",
							Type:        discordgo.ApplicationCommandOptionAttachment,
							Required:    true,
						},
					},
				},
				{
					Name:        "save-template",
					Description: "Save the stored blueprint as a named template",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "Template name",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
					},
				},
				{
					Name:        "use-template",
					Description: "Load a saved template as this server's blueprint",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "name",
							Description: "Template name",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
					},
				},
				{
					Name:        "templates",
					Description: "List saved templates",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "reset",
					Description: "Delete every channel (DANGEROUS, roles are kept)",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "confirm",
							Description: "Type CONFIRM to proceed",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
					},
				},
				{
					Name:        "stats",
					Description: "Show builder and host statistics",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        "ping",
			Description: "Check Discord API latency and connection quality",
		},
	}
}
