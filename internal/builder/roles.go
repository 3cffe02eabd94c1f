package builder

import (
	"context"
	"strings"

	"go-guildbuilder/internal/blueprint"
	"go-guildbuilder/internal/guild"
	"go-guildbuilder/internal/logging"
	"go-guildbuilder/internal/permissions"
	"go-guildbuilder/pkg/util"
)

// CreateRoles creates every role in order. Roles that fail are logged and
// left out of the map; a repeated name maps to the last role created.
func CreateRoles(ctx context.Context, svc guild.Service, defs []blueprint.Role) *permissions.RoleMap {
	roles := permissions.NewRoleMap()

	for _, def := range defs {
		perms, unknown := permissions.RolePermissions(def)
		if len(unknown) > 0 {
			logging.Warn("[BUILDER] role %s: ignoring unknown permissions %s", def.Name, strings.Join(unknown, ", "))
		}

		spec := guild.RoleSpec{Name: def.Name, Permissions: perms}
		if def.Color != "" {
			if color, err := util.ParseHexColor(def.Color); err == nil {
				spec.Color = color
			}
		}

		role, ok := nonFatal("create role "+def.Name, func() (*guild.Role, error) {
			return svc.CreateRole(ctx, spec)
		})
		if !ok {
			continue
		}
		roles.Set(def.Name, role.ID)
	}

	return roles
}
