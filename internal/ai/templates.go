package ai

import (
	"fmt"
	"strings"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/permissions"
)

// RuleTemplate is a canned rules channel body.
type RuleTemplate struct {
	Title  string
	Rules  []string
	Footer string
}

// Body numbers the rules and appends the footer.
func (t RuleTemplate) Body() string {
	lines := make([]string, len(t.Rules))
	for i, r := range t.Rules {
		lines[i] = fmt.Sprintf("%d. %s", i+1, r)
	}
	return strings.Join(lines, "\n") + "\n\n" + t.Footer
}

type FAQEntry struct {
	Q, A string
}

// Template keys, one per supported server type.
const (
	TemplateDefault      = "default"
	TemplateGaming       = "gaming"
	TemplateCrypto       = "crypto"
	TemplateSupport      = "support"
	TemplateContent      = "content"
	TemplateProfessional = "professional"
)

var RuleTemplates = map[string]RuleTemplate{
	TemplateDefault: {
		Title: "📜 Server Rules",
		Rules: []string{
			"Be respectful and kind to all members",
			"No spam, advertising, or self-promotion",
			"Keep content appropriate and SFW",
			"Follow Discord Terms of Service",
			"Listen to staff and moderators",
			"Use channels for their intended purpose",
		},
		Footer: "Violations may result in warnings, mutes, or bans.",
	},
	TemplateGaming: {
		Title: "🎮 Community Rules",
		Rules: []string{
			"Be respectful to all players and staff",
			"No cheating, hacking, or exploiting",
			"Keep voice channels clear during gameplay",
			"No excessive toxicity or rage",
			"Report bugs/issues through proper channels",
			"Follow game-specific rules in dedicated channels",
		},
		Footer: "Fair play keeps the community fun for everyone!",
	},
	TemplateCrypto: {
		Title: "💎 Server Guidelines",
		Rules: []string{
			"DYOR - Do Your Own Research",
			"No financial advice or guaranteed returns",
			"Verify all links before clicking",
			"No impersonation of team members or influencers",
			"Keep FUD and price discussion in designated channels",
			"Respect others' investment decisions",
		},
		Footer: "Stay safe, stay informed. NFA.",
	},
	TemplateSupport: {
		Title: "🛟 Support Server Rules",
		Rules: []string{
			"Search existing threads before posting",
			"Provide clear details when asking for help",
			"Be patient with support staff and volunteers",
			"No spam or duplicate tickets",
			"Mark your issue as solved when resolved",
			"Help others when you can",
		},
		Footer: "Quality support requires quality questions.",
	},
	TemplateContent: {
		Title: "🎥 Creator Community Rules",
		Rules: []string{
			"Support and uplift fellow creators",
			"No self-promotion outside designated channels",
			"Respect copyright and intellectual property",
			"Keep feedback constructive and helpful",
			"No drama or gossip about other creators",
			"Celebrate wins together!",
		},
		Footer: "We rise by lifting others.",
	},
	TemplateProfessional: {
		Title: "💼 Professional Guidelines",
		Rules: []string{
			"Maintain professional conduct at all times",
			"Respect confidentiality and privacy",
			"No solicitation without permission",
			"Keep discussions on-topic and productive",
			"Use appropriate channels for networking",
			"Report violations to moderators privately",
		},
		Footer: "Professional behavior builds professional networks.",
	},
}

var FAQTemplates = map[string][]FAQEntry{
	TemplateDefault: {
		{"How do I get started?", "Check out the rules and introduce yourself in chat!"},
		{"How do I contact staff?", "Ping a moderator or admin, or open a support ticket."},
		{"Can I suggest features?", "Absolutely! Share your ideas in the community channels."},
	},
	TemplateGaming: {
		{"How do I join games?", "Check the LFG channels or create your own party!"},
		{"Where do I report bugs?", "Use the bug-reports channel with detailed info."},
		{"Can I stream gameplay here?", "Yes! Use our designated streaming channels."},
	},
	TemplateCrypto: {
		{"Is this financial advice?", "No. Always DYOR and never invest more than you can lose."},
		{"How do I verify team members?", "Check roles and verify in our official channels."},
		{"Where can I discuss price?", "Use the trading or price-talk channels only."},
	},
	TemplateSupport: {
		{"How do I get help?", "Create a support ticket or ask in the help channel."},
		{"How long until I get a response?", "Usually within 24 hours, often much faster!"},
		{"Can I help others?", "Yes! Helpful community members often get recognized."},
	},
	TemplateContent: {
		{"Can I promote my content?", "Yes, in the self-promo channel following the posting schedule."},
		{"How do I collaborate?", "Check the collab channel or reach out to creators directly!"},
		{"Where do I share feedback?", "Use the feedback channel - constructive criticism only!"},
	},
	TemplateProfessional: {
		{"How do I network here?", "Introduce yourself and engage in relevant channels."},
		{"Can I hire from this community?", "Use the opportunities channel with proper job posts."},
		{"How do I report issues?", "Contact moderators via DM or the modmail system."},
	},
}

type keywordRule struct {
	key      string
	keywords []string
}

// The FAQ table matches fewer keywords than the rules table, so a "player"
// server gets gaming rules with the default FAQ.
var (
	ruleKeywords = []keywordRule{
		{TemplateGaming, []string{"gaming", "game", "player"}},
		{TemplateCrypto, []string{"crypto", "nft", "token", "defi"}},
		{TemplateSupport, []string{"support", "help", "bot"}},
		{TemplateContent, []string{"content", "creator", "stream", "youtube"}},
		{TemplateProfessional, []string{"professional", "business", "network"}},
	}
	faqKeywords = []keywordRule{
		{TemplateGaming, []string{"gaming", "game"}},
		{TemplateCrypto, []string{"crypto", "nft", "token"}},
		{TemplateSupport, []string{"support", "help", "bot"}},
		{TemplateContent, []string{"content", "creator", "stream"}},
		{TemplateProfessional, []string{"professional", "business"}},
	}
	choiceKeywords = []keywordRule{
		{TemplateGaming, []string{"gaming"}},
		{TemplateCrypto, []string{"crypto", "defi"}},
		{TemplateSupport, []string{"support"}},
		{TemplateContent, []string{"content"}},
		{TemplateProfessional, []string{"professional", "business"}},
	}
)

func match(rules []keywordRule, text string) string {
	lower := strings.ToLower(text)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.key
			}
		}
	}
	return TemplateDefault
}

// InferRuleTemplate picks a rules template from a server description.
func InferRuleTemplate(description string) RuleTemplate {
	return RuleTemplates[match(ruleKeywords, description)]
}

// InferFAQTemplate picks FAQ entries from a server description.
func InferFAQTemplate(description string) []FAQEntry {
	return FAQTemplates[match(faqKeywords, description)]
}

// TemplateKey maps a free-form template choice ("Gaming community rules")
// to a key. Anything unrecognised returns "" so the caller auto-detects.
func TemplateKey(choice string) string {
	if _, ok := RuleTemplates[strings.ToLower(choice)]; ok {
		return strings.ToLower(choice)
	}
	if key := match(choiceKeywords, choice); key != TemplateDefault {
		return key
	}
	return ""
}

const (
	aboutTitle  = "🧩 About This Server"
	faqTitle    = "❓ Frequently Asked Questions"
	aboutFooter = "We're building a vibrant community - join the conversation and have fun!"
)

// InjectInfoChannels adds rules, about and FAQ channels to the first
// category unless a channel with a matching name already exists there.
// templateKey selects the templates; "" infers them from description.
// It returns the names it added.
func InjectInfoChannels(bp *blueprint.Blueprint, description, serverName, templateKey string) []string {
	if bp == nil || len(bp.Categories) == 0 {
		return nil
	}

	rules, faq := InferRuleTemplate(description), InferFAQTemplate(description)
	if t, ok := RuleTemplates[templateKey]; ok {
		rules, faq = t, FAQTemplates[templateKey]
	}

	first := &bp.Categories[0]
	has := func(fragment string) bool {
		for _, ch := range first.Channels {
			if strings.Contains(strings.ToLower(ch.Name), fragment) {
				return true
			}
		}
		return false
	}
	hasRules, hasAbout, hasFAQ := has("rule"), has("about"), has("faq")

	var added []string
	if !hasRules {
		ch := blueprint.Channel{
			Name:              "rules",
			Type:              blueprint.ChannelText,
			PermissionsPreset: string(permissions.PublicReadonly),
			Message:           &blueprint.Message{Title: rules.Title, Body: rules.Body()},
		}
		first.Channels = append([]blueprint.Channel{ch}, first.Channels...)
		added = append(added, ch.Name)
	}
	if !hasAbout {
		if description == "" {
			description = "A community server."
		}
		first.Channels = append(first.Channels, blueprint.Channel{
			Name: "about",
			Type: blueprint.ChannelText,
			Message: &blueprint.Message{
				Title: aboutTitle,
				Body:  fmt.Sprintf("Welcome to %s!\n\n%s\n\n%s", serverName, description, aboutFooter),
			},
		})
		added = append(added, "about")
	}
	if !hasFAQ {
		entries := make([]string, len(faq))
		for i, qa := range faq {
			entries[i] = fmt.Sprintf("**Q: %s**\nA: %s", qa.Q, qa.A)
		}
		first.Channels = append(first.Channels, blueprint.Channel{
			Name:    "faq",
			Type:    blueprint.ChannelText,
			Message: &blueprint.Message{Title: faqTitle, Body: strings.Join(entries, "\n\n")},
		})
		added = append(added, "faq")
	}
	return added
}

// ContentPreview renders the injected rules and FAQ for a DM preview.
func ContentPreview(description, templateKey string) string {
	rules, faq := InferRuleTemplate(description), InferFAQTemplate(description)
	if t, ok := RuleTemplates[templateKey]; ok {
		rules, faq = t, FAQTemplates[templateKey]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n%s\n\n**❓ FAQ Preview**\n", rules.Title, rules.Body())
	for i, qa := range faq {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s", qa.Q, qa.A)
	}
	return b.String()
}
