package permissions

import "regexp"

// Role-name patterns shared by presets, convenience grants and role inference.
var (
	ModeratorPattern     = regexp.MustCompile(`(?i)mod|moderator`)
	VerifiedPattern      = regexp.MustCompile(`(?i)verified`)
	StaffPattern         = regexp.MustCompile(`(?i)admin|mod|staff|moderator`)
	AnnouncerPattern     = regexp.MustCompile(`(?i)admin|mod|moderator`)
	AdminPattern         = regexp.MustCompile(`(?i)admin`)
	AdminNamePattern     = regexp.MustCompile(`(?i)^admin$`)
	ModeratorNamePattern = regexp.MustCompile(`(?i)^(moderator|mod)$`)
)
