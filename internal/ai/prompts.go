package ai

import (
	"encoding/json"
	"strings"

	"go-guildbuilder/internal/blueprint"
)

const systemPrompt = "You convert a server description into a STRICT JSON blueprint. \n" +
	"Return ONLY JSON (no prose, no backticks). \n" +
	"If unsure, make conservative choices."

var fewShotValid = []string{
	`{"style":{"emojiPrefix":"💸","theme":"neon-gold"},"roles":[{"name":"Admin","permissions":["Administrator"],"color":"#FFD700"},{"name":"Moderator","permissions":["ManageMessages","EmbedLinks"],"color":"#DAA520"},{"name":"Member","color":"#5865F2"}],"categories":{"SERVER INFO":[{"name":"welcome","type":"text","message":{"title":"Welcome","body":"Welcome to the server!"}},{"name":"rules","type":"text","permissionsPreset":"public-readonly","message":{"title":"Rules","body":"1. Be kind\n2. No spam"}}],"COMMUNITY":[{"name":"chat","type":"text"},{"name":"clips","type":"media"}]}}`,
	`{"style":{"theme":"streamer-dark","emojiPrefix":"🎥"},"roles":[{"name":"Admin","permissions":["Administrator"],"color":"#E91E63"},{"name":"Mod","permissions":["ManageMessages"],"color":"#9C27B0"},{"name":"Subscriber"}],"categories":{"INFO":[{"name":"welcome","type":"text"}],"LIVE":[{"name":"live-chat","type":"text"},{"name":"voice-lounge","type":"voice"}]}}`,
	`{"style":{"theme":"minimal-clean"},"roles":[{"name":"Admin","permissions":["Administrator"]},{"name":"Moderator","permissions":["ManageMessages"]},{"name":"Verified"}],"categories":{"SERVER INFO":[{"name":"welcome","type":"text"}],"COMMUNITY":[{"name":"chat","type":"text"},{"name":"forum-topics","type":"forum","defaultAutoArchiveDuration":1440}]}}`,
}

const (
	invalidExample   = `{ roles: [ { name: Admin } ], categories: { INFO: [ "welcome" ] } }`
	correctedExample = `{"roles":[{"name":"Admin","permissions":["Administrator"]}],"categories":{"INFO":[{"name":"welcome","type":"text"}]}}`
)

func examplesPrompt() string {
	return "Valid examples:\n" + strings.Join(fewShotValid, "\n\n") +
		"\n\nInvalid example (do NOT emulate):\n" + invalidExample +
		"\n\nCorrected form:\n" + correctedExample
}

// Brief is what the owner told us about the server.
type Brief struct {
	Description  string
	Style        string
	Categories   string
	Roles        string
	PrivateAreas string
	WantsInfo    bool
	Community    bool
	// RuleTemplate is a TemplateKey value; "" infers it from Description.
	RuleTemplate string
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Answers renders the brief in the order the owner would be asked.
func (b Brief) Answers() []string {
	return []string{
		b.Description,
		b.Style,
		b.Categories,
		yesNo(b.WantsInfo),
		b.Roles,
		b.PrivateAreas,
		yesNo(b.Community),
	}
}

func generationMessages(b Brief) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "system", Content: examplesPrompt()},
		{Role: "user", Content: strings.Join(b.Answers(), "\n")},
	}
}

func repairMessages(errs []blueprint.ValidationError, candidate any) []Message {
	doc, err := json.Marshal(candidate)
	if err != nil {
		doc = []byte("{}")
	}
	return []Message{
		{Role: "system", Content: blueprint.RepairPrompt(errs)},
		{Role: "user", Content: string(doc)},
	}
}
