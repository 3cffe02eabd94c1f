// Package permissions resolves permission presets and channel flags into
// overwrite grants. Every function here is pure.
package permissions

import (
	"math/bits"
	"sort"

	"github.com/bwmarrin/discordgo"
)

// Set is a Discord permission bitfield.
type Set int64

const (
	View                 = Set(discordgo.PermissionViewChannel)
	Send                 = Set(discordgo.PermissionSendMessages)
	History              = Set(discordgo.PermissionReadMessageHistory)
	ManageMessages       = Set(discordgo.PermissionManageMessages)
	EmbedLinks           = Set(discordgo.PermissionEmbedLinks)
	AttachFiles          = Set(discordgo.PermissionAttachFiles)
	TimeoutMembers       = Set(discordgo.PermissionModerateMembers)
	ManageThreads        = Set(discordgo.PermissionManageThreads)
	ManageChannels       = Set(discordgo.PermissionManageChannels)
	ManageWebhooks       = Set(discordgo.PermissionManageWebhooks)
	Administrator        = Set(discordgo.PermissionAdministrator)
	CreatePublicThreads  = Set(discordgo.PermissionCreatePublicThreads)
	CreatePrivateThreads = Set(discordgo.PermissionCreatePrivateThreads)
	SendInThreads        = Set(discordgo.PermissionSendMessagesInThreads)
)

// ThreadLock is the deny set applied to @everyone when threads are locked.
const ThreadLock = CreatePublicThreads | CreatePrivateThreads | SendInThreads

var byName = map[string]Set{
	"Administrator":         Administrator,
	"ManageMessages":        ManageMessages,
	"EmbedLinks":            EmbedLinks,
	"AttachFiles":           AttachFiles,
	"TimeoutMembers":        TimeoutMembers,
	"ModerateMembers":       TimeoutMembers,
	"ManageChannels":        ManageChannels,
	"ViewChannel":           View,
	"SendMessages":          Send,
	"ReadMessageHistory":    History,
	"ManageThreads":         ManageThreads,
	"CreatePublicThreads":   CreatePublicThreads,
	"CreatePrivateThreads":  CreatePrivateThreads,
	"SendMessagesInThreads": SendInThreads,
	"ManageWebhooks":        ManageWebhooks,
}

// canonical names used when rendering a set back to strings
var names = map[Set]string{
	Administrator:        "Administrator",
	ManageMessages:       "ManageMessages",
	EmbedLinks:           "EmbedLinks",
	AttachFiles:          "AttachFiles",
	TimeoutMembers:       "TimeoutMembers",
	ManageChannels:       "ManageChannels",
	View:                 "ViewChannel",
	Send:                 "SendMessages",
	History:              "ReadMessageHistory",
	ManageThreads:        "ManageThreads",
	CreatePublicThreads:  "CreatePublicThreads",
	CreatePrivateThreads: "CreatePrivateThreads",
	SendInThreads:        "SendMessagesInThreads",
	ManageWebhooks:       "ManageWebhooks",
}

// Has reports whether every bit of other is present.
func (s Set) Has(other Set) bool {
	return s&other == other
}

// Names lists the known permission names in s, lowest bit first.
// Bits without a name are dropped.
func (s Set) Names() []string {
	var out []string
	v := uint64(s)
	for v != 0 {
		bit := Set(1) << bits.TrailingZeros64(v)
		if name, ok := names[bit]; ok {
			out = append(out, name)
		}
		v &^= uint64(bit)
	}
	return out
}

// FromNames maps permission names to a set. Unknown names are returned
// separately so callers can log them.
func FromNames(list []string) (Set, []string) {
	var s Set
	var unknown []string
	for _, n := range list {
		if bit, ok := byName[n]; ok {
			s |= bit
		} else {
			unknown = append(unknown, n)
		}
	}
	return s, unknown
}

// KnownNames returns every accepted permission name, sorted.
func KnownNames() []string {
	out := make([]string, 0, len(byName))
	for n := range byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
