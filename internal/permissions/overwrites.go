package permissions

import "go-guildbuilder/internal/blueprint"

// ChannelOverwrites concatenates every grant a channel definition implies:
// the private/readOnly base, the preset, allowedRoles and the moderator and
// admin convenience grants. Use Merge to fold the result per target.
func ChannelOverwrites(def blueprint.Channel, roles *RoleMap, everyoneID string) []Grant {
	var grants []Grant

	if def.Private {
		grants = append(grants, Grant{TargetID: everyoneID, Deny: View})
	} else if def.ReadOnly {
		grants = append(grants, Grant{TargetID: everyoneID, Allow: View | History, Deny: Send})
	}

	if preset := def.PresetName(); preset != "" {
		grants = append(grants, Resolve(Preset(preset), roles, everyoneID)...)
	}

	for _, name := range def.AllowedRoles {
		if id, ok := roles.Get(name); ok {
			grants = append(grants, Grant{TargetID: id, Allow: View})
		}
	}

	roles.Each(func(name, id string) {
		if ModeratorPattern.MatchString(name) {
			grants = append(grants, Grant{TargetID: id, Allow: ManageMessages | History | ManageThreads})
		}
		if AdminPattern.MatchString(name) {
			grants = append(grants, Grant{TargetID: id, Allow: Administrator})
		}
	})

	return grants
}

// ThreadLockGrant denies thread creation and thread replies to @everyone.
func ThreadLockGrant(everyoneID string) Grant {
	return Grant{TargetID: everyoneID, Deny: ThreadLock}
}

// Merge folds grants by target: allow and deny bits are unioned and targets
// keep the order they first appeared in.
func Merge(grants []Grant) []Grant {
	if len(grants) == 0 {
		return nil
	}
	index := make(map[string]int, len(grants))
	out := make([]Grant, 0, len(grants))
	for _, g := range grants {
		if i, ok := index[g.TargetID]; ok {
			out[i].Allow |= g.Allow
			out[i].Deny |= g.Deny
			continue
		}
		index[g.TargetID] = len(out)
		out = append(out, g)
	}
	return out
}

// RolePermissions returns the role-level permission set for a role
// definition. Roles without explicit permissions named admin, moderator or
// mod receive an inferred set.
func RolePermissions(def blueprint.Role) (Set, []string) {
	names := def.Permissions
	if len(names) == 0 {
		switch {
		case AdminNamePattern.MatchString(def.Name):
			names = []string{"Administrator"}
		case ModeratorNamePattern.MatchString(def.Name):
			names = []string{"ManageMessages", "EmbedLinks", "AttachFiles", "TimeoutMembers", "ManageThreads"}
		}
	}
	return FromNames(names)
}
