package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-guildbuilder/internal/blueprint"
)

const everyone = "guild-1"

func roleMap(pairs ...string) *RoleMap {
	m := NewRoleMap()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

func TestResolve(t *testing.T) {
	roles := roleMap("Admin", "r1", "Moderator", "r2", "Verified", "r3", "Staff", "r4", "Member", "r5")

	tests := []struct {
		name   string
		preset Preset
		want   []Grant
	}{
		{
			name:   "public-readonly",
			preset: PublicReadonly,
			want:   []Grant{{TargetID: everyone, Allow: View | History, Deny: Send}},
		},
		{
			name:   "mods-only",
			preset: ModsOnly,
			want: []Grant{
				{TargetID: everyone, Deny: View},
				{TargetID: "r2", Allow: View | Send},
			},
		},
		{
			name:   "verified-only",
			preset: VerifiedOnly,
			want: []Grant{
				{TargetID: everyone, Deny: View},
				{TargetID: "r3", Allow: View | Send},
			},
		},
		{
			name:   "staff-private",
			preset: StaffPrivate,
			want: []Grant{
				{TargetID: everyone, Deny: View},
				{TargetID: "r1", Allow: View | Send},
				{TargetID: "r2", Allow: View | Send},
				{TargetID: "r4", Allow: View | Send},
			},
		},
		{
			name:   "announcement-lock",
			preset: AnnouncementLock,
			want: []Grant{
				{TargetID: everyone, Allow: View | History, Deny: Send},
				{TargetID: "r1", Allow: Send},
				{TargetID: "r2", Allow: Send},
			},
		},
		{
			name:   "unknown",
			preset: Preset("everyone-party"),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.preset, roles, everyone))
			// deterministic for the same inputs
			assert.Equal(t, Resolve(tt.preset, roles, everyone), Resolve(tt.preset, roles, everyone))
		})
	}
}

func TestResolveStaffPrivateExact(t *testing.T) {
	roles := roleMap("Admin", "r1", "Moderator", "r2")
	assert.Equal(t, []Grant{
		{TargetID: everyone, Deny: View},
		{TargetID: "r1", Allow: View | Send},
		{TargetID: "r2", Allow: View | Send},
	}, Resolve(StaffPrivate, roles, everyone))
}

func TestResolveCategory(t *testing.T) {
	roles := roleMap("Admin", "r1", "Mod Team", "r2", "Member", "r3")

	assert.Equal(t, []Grant{
		{TargetID: everyone, Deny: View},
		{TargetID: "r1", Allow: View},
		{TargetID: "r2", Allow: View},
	}, ResolveCategory(StaffPrivate, roles, everyone))

	assert.Equal(t, []Grant{
		{TargetID: everyone, Deny: View},
		{TargetID: "r2", Allow: View},
	}, ResolveCategory(ModsOnly, roles, everyone))

	assert.Equal(t, []Grant{{TargetID: everyone, Allow: View | History, Deny: Send}},
		ResolveCategory(PublicReadonly, roles, everyone))

	assert.Nil(t, ResolveCategory(VerifiedOnly, roles, everyone))
	assert.Nil(t, ResolveCategory(AnnouncementLock, roles, everyone))
}

func TestChannelOverwrites(t *testing.T) {
	roles := roleMap("Admin", "r1", "Moderator", "r2", "Member", "r3")

	t.Run("private with allowed roles", func(t *testing.T) {
		grants := ChannelOverwrites(blueprint.Channel{
			Name:         "secret",
			Private:      true,
			AllowedRoles: []string{"Member", "Ghost"},
		}, roles, everyone)

		assert.Equal(t, []Grant{
			{TargetID: everyone, Deny: View},
			{TargetID: "r3", Allow: View},
			{TargetID: "r1", Allow: Administrator},
			{TargetID: "r2", Allow: ManageMessages | History | ManageThreads},
		}, grants)
	})

	t.Run("readOnly ignored when private", func(t *testing.T) {
		grants := ChannelOverwrites(blueprint.Channel{Name: "x", Private: true, ReadOnly: true}, NewRoleMap(), everyone)
		assert.Equal(t, []Grant{{TargetID: everyone, Deny: View}}, grants)
	})

	t.Run("legacy string permissions act as a preset", func(t *testing.T) {
		grants := ChannelOverwrites(blueprint.Channel{
			Name:        "x",
			Permissions: &blueprint.PermissionSpec{Preset: "public-readonly"},
		}, NewRoleMap(), everyone)
		assert.Equal(t, []Grant{{TargetID: everyone, Allow: View | History, Deny: Send}}, grants)
	})

	t.Run("permissionsPreset wins over legacy field", func(t *testing.T) {
		grants := ChannelOverwrites(blueprint.Channel{
			Name:              "x",
			PermissionsPreset: "mods-only",
			Permissions:       &blueprint.PermissionSpec{Preset: "public-readonly"},
		}, roleMap("Mod", "m"), everyone)
		merged := Merge(grants)
		require.Len(t, merged, 2)
		assert.Equal(t, Grant{TargetID: everyone, Deny: View}, merged[0])
		assert.Equal(t, Grant{TargetID: "m", Allow: View | Send | ManageMessages | History | ManageThreads}, merged[1])
	})
}

func TestMerge(t *testing.T) {
	merged := Merge([]Grant{
		{TargetID: "a", Allow: View},
		{TargetID: "b", Deny: Send},
		{TargetID: "a", Allow: Send, Deny: History},
	})
	assert.Equal(t, []Grant{
		{TargetID: "a", Allow: View | Send, Deny: History},
		{TargetID: "b", Deny: Send},
	}, merged)
	assert.Nil(t, Merge(nil))
}

func TestRoleMapLastWriteWins(t *testing.T) {
	m := roleMap("Admin", "1", "Member", "2", "Admin", "3")
	id, ok := m.Get("Admin")
	require.True(t, ok)
	assert.Equal(t, "3", id)
	assert.Equal(t, []string{"Admin", "Member"}, m.Names())
	assert.Equal(t, 2, m.Len())
}

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		name string
		def  blueprint.Role
		want Set
	}{
		{"admin inferred", blueprint.Role{Name: "Admin"}, Administrator},
		{"mod inferred", blueprint.Role{Name: "mod"}, ManageMessages | EmbedLinks | AttachFiles | TimeoutMembers | ManageThreads},
		{"moderator inferred", blueprint.Role{Name: "MODERATOR"}, ManageMessages | EmbedLinks | AttachFiles | TimeoutMembers | ManageThreads},
		{"partial name not inferred", blueprint.Role{Name: "Admins"}, 0},
		{"explicit wins", blueprint.Role{Name: "Admin", Permissions: []string{"ViewChannel"}}, View},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unknown := RolePermissions(tt.def)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, unknown)
		})
	}

	_, unknown := RolePermissions(blueprint.Role{Name: "x", Permissions: []string{"FlyPlanes"}})
	assert.Equal(t, []string{"FlyPlanes"}, unknown)
}

func TestSetNames(t *testing.T) {
	s, _ := FromNames([]string{"SendMessages", "ViewChannel"})
	assert.ElementsMatch(t, []string{"ViewChannel", "SendMessages"}, s.Names())
	assert.True(t, s.Has(View))
	assert.False(t, s.Has(View|Administrator))
}
