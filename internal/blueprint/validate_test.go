package blueprint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBlueprint = `{
  "style": { "theme": "neon-gold", "emojiPrefix": "✨" },
  "roles": [
    { "name": "Admin", "color": "#FFD700" },
    { "name": "Moderator", "color": "00ff00", "isModerator": true },
    { "name": "Member" }
  ],
  "categories": {
    "Info": [
      { "name": "rules", "readOnly": true, "message": { "title": "Rules", "body": "Be kind" } },
      { "name": "announcements", "type": "announcement", "permissionsPreset": "announcement-lock" }
    ],
    "Community": [
      { "name": "general", "order": 0 },
      { "name": "ideas", "type": "forum", "defaultAutoArchiveDuration": 1440 }
    ],
    "Staff": [
      { "name": "staff-chat", "permissionsPreset": "staff-private" }
    ]
  },
  "categoryPrivacy": { "Staff": "staff-private" }
}`

func errorMentions(errs []ValidationError, field string) bool {
	for _, e := range errs {
		if strings.Contains(e.Path, field) || strings.Contains(e.Message, field) {
			return true
		}
	}
	return false
}

func TestValidateJSONAcceptsSample(t *testing.T) {
	res, err := ValidateJSON([]byte(sampleBlueprint))
	require.NoError(t, err)
	assert.True(t, res.Valid, FormatErrors(res.Errors))
	assert.Empty(t, res.Errors)
}

func TestValidateJSONRejects(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "missing roles",
			doc:   `{"categories": {"A": [{"name": "x"}]}}`,
			field: "roles",
		},
		{
			name:  "missing categories",
			doc:   `{"roles": [{"name": "Admin"}]}`,
			field: "categories",
		},
		{
			name:  "empty roles",
			doc:   `{"roles": [], "categories": {"A": [{"name": "x"}]}}`,
			field: "roles",
		},
		{
			name:  "empty categories",
			doc:   `{"roles": [{"name": "Admin"}], "categories": {}}`,
			field: "categories",
		},
		{
			name:  "bad role colour",
			doc:   `{"roles": [{"name": "Admin", "color": "#GGGGGG"}], "categories": {"A": [{"name": "x"}]}}`,
			field: "color",
		},
		{
			name:  "unknown channel type",
			doc:   `{"roles": [{"name": "Admin"}], "categories": {"A": [{"name": "x", "type": "thread"}]}}`,
			field: "type",
		},
		{
			name:  "bad auto archive duration",
			doc:   `{"roles": [{"name": "Admin"}], "categories": {"A": [{"name": "x", "defaultAutoArchiveDuration": 30}]}}`,
			field: "defaultAutoArchiveDuration",
		},
		{
			name:  "unknown top-level key",
			doc:   `{"roles": [{"name": "Admin"}], "categories": {"A": [{"name": "x"}]}, "emojis": []}`,
			field: "emojis",
		},
		{
			name:  "empty role name",
			doc:   `{"roles": [{"name": ""}], "categories": {"A": [{"name": "x"}]}}`,
			field: "name",
		},
		{
			name:  "negative order",
			doc:   `{"roles": [{"name": "Admin"}], "categories": {"A": [{"name": "x", "order": -1}]}}`,
			field: "order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ValidateJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.False(t, res.Valid)
			require.NotEmpty(t, res.Errors)
			assert.True(t, errorMentions(res.Errors, tt.field), FormatErrors(res.Errors))
		})
	}
}

func TestValidateJSONCollectsAllErrors(t *testing.T) {
	doc := `{"roles": [{"name": "A", "color": "nope"}], "categories": {"X": [{"name": "c", "type": "bogus"}]}}`
	res, err := ValidateJSON([]byte(doc))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.True(t, errorMentions(res.Errors, "color"))
	assert.True(t, errorMentions(res.Errors, "type"))
}

func TestValidateJSONNotJSON(t *testing.T) {
	_, err := ValidateJSON([]byte("{not json"))
	assert.Error(t, err)
}

func TestValidateTyped(t *testing.T) {
	bp, err := Parse([]byte(sampleBlueprint))
	require.NoError(t, err)
	assert.True(t, Validate(bp).Valid)

	bp.Roles = nil
	res := Validate(bp)
	assert.False(t, res.Valid)
	assert.True(t, errorMentions(res.Errors, "roles"))

	assert.False(t, Validate(nil).Valid)
}

func TestFormatErrors(t *testing.T) {
	assert.Equal(t, "No errors", FormatErrors(nil))
	assert.Equal(t, "/ missing roles; /roles/0/color bad pattern", FormatErrors([]ValidationError{
		{Path: "", Message: "missing roles"},
		{Path: "/roles/0/color", Message: "bad pattern"},
	}))
}

func TestRepairPromptEmbedsErrors(t *testing.T) {
	prompt := RepairPrompt([]ValidationError{{Path: "/roles", Message: "is required"}})
	assert.True(t, strings.HasPrefix(prompt, "The JSON you produced did not match the required schema."))
	assert.Contains(t, prompt, "ONLY return a corrected JSON object")
	assert.True(t, strings.HasSuffix(prompt, "Errors: /roles is required"))
}

func TestCategoriesKeepDocumentOrder(t *testing.T) {
	bp, err := Parse([]byte(`{"roles":[{"name":"A"}],"categories":{"Zeta":[{"name":"z"}],"Alpha":[{"name":"a"}],"Mid":[]}}`))
	require.NoError(t, err)
	require.Len(t, bp.Categories, 3)
	assert.Equal(t, "Zeta", bp.Categories[0].Name)
	assert.Equal(t, "Alpha", bp.Categories[1].Name)
	assert.Equal(t, "Mid", bp.Categories[2].Name)

	out, err := Marshal(bp)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(out), "Zeta"), strings.Index(string(out), "Alpha"))
	assert.Contains(t, string(out), `"Mid": []`)
}

func TestPermissionSpecForms(t *testing.T) {
	bp, err := Parse([]byte(`{"roles":[{"name":"A"}],"categories":{"C":[
		{"name":"one","permissions":"mods-only"},
		{"name":"two","permissions":["ViewChannel","SendMessages"]},
		{"name":"three","permissions":"public-readonly","permissionsPreset":"staff-private"}
	]}}`))
	require.NoError(t, err)

	channels, ok := bp.Categories.Get("C")
	require.True(t, ok)
	assert.Equal(t, "mods-only", channels[0].PresetName())
	assert.Equal(t, "", channels[1].PresetName())
	assert.Equal(t, []string{"ViewChannel", "SendMessages"}, channels[1].Permissions.Names)
	assert.Equal(t, "staff-private", channels[2].PresetName())

	assert.True(t, Validate(bp).Valid)
}

func TestEmojiPrefixBrandingWins(t *testing.T) {
	bp := &Blueprint{Style: &Style{EmojiPrefix: "⭐"}}
	assert.Equal(t, "⭐", bp.EmojiPrefix())
	bp.Branding = &Branding{Emoji: "🔥"}
	assert.Equal(t, "🔥", bp.EmojiPrefix())
}
