package permissions

import "regexp"

// Preset names a fixed overwrite recipe.
type Preset string

const (
	PublicReadonly   Preset = "public-readonly"
	ModsOnly         Preset = "mods-only"
	VerifiedOnly     Preset = "verified-only"
	StaffPrivate     Preset = "staff-private"
	AnnouncementLock Preset = "announcement-lock"
)

// Presets lists the channel presets in declaration order.
var Presets = []Preset{PublicReadonly, ModsOnly, VerifiedOnly, StaffPrivate, AnnouncementLock}

// Known reports whether p is a channel preset.
func (p Preset) Known() bool {
	for _, known := range Presets {
		if p == known {
			return true
		}
	}
	return false
}

// Grant is an allow/deny pair for one role (or @everyone) on one channel.
type Grant struct {
	TargetID string
	Allow    Set
	Deny     Set
}

// Resolve returns the grants for a channel preset. Unknown presets resolve
// to nil.
func Resolve(preset Preset, roles *RoleMap, everyoneID string) []Grant {
	switch preset {
	case PublicReadonly:
		return []Grant{{TargetID: everyoneID, Allow: View | History, Deny: Send}}
	case ModsOnly:
		return hiddenExcept(ModeratorPattern, View|Send, roles, everyoneID)
	case VerifiedOnly:
		return hiddenExcept(VerifiedPattern, View|Send, roles, everyoneID)
	case StaffPrivate:
		return hiddenExcept(StaffPattern, View|Send, roles, everyoneID)
	case AnnouncementLock:
		grants := []Grant{{TargetID: everyoneID, Allow: View | History, Deny: Send}}
		return append(grants, matching(AnnouncerPattern, Send, roles)...)
	}
	return nil
}

// ResolveCategory returns the grants for a category-level preset. Only
// staff-private, mods-only and public-readonly have a category form.
func ResolveCategory(preset Preset, roles *RoleMap, everyoneID string) []Grant {
	switch preset {
	case StaffPrivate:
		return hiddenExcept(StaffPattern, View, roles, everyoneID)
	case ModsOnly:
		return hiddenExcept(ModeratorPattern, View, roles, everyoneID)
	case PublicReadonly:
		return []Grant{{TargetID: everyoneID, Allow: View | History, Deny: Send}}
	}
	return nil
}

func hiddenExcept(pattern *regexp.Regexp, allow Set, roles *RoleMap, everyoneID string) []Grant {
	grants := []Grant{{TargetID: everyoneID, Deny: View}}
	return append(grants, matching(pattern, allow, roles)...)
}

func matching(pattern *regexp.Regexp, allow Set, roles *RoleMap) []Grant {
	var grants []Grant
	roles.Each(func(name, id string) {
		if pattern.MatchString(name) {
			grants = append(grants, Grant{TargetID: id, Allow: allow})
		}
	})
	return grants
}
