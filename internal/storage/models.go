package storage

import (
	"time"

	"github.com/google/uuid"
)

// BuildMetrics summarises one blueprint application.
type BuildMetrics struct {
	BuildSeconds  float64 `json:"buildSeconds"`
	CategoryCount int     `json:"categoryCount"`
	ChannelCount  int     `json:"channelCount"`
	RoleCount     int     `json:"roleCount"`
}

// BuildRecord is stored once per guild (latest wins) and appended to the
// usage log for every build.
type BuildRecord struct {
	ID        string
	GuildID   string
	Source    string // build, reapply, import, cli
	Metrics   BuildMetrics
	CreatedAt int64
}

func NewBuildRecord(guildID, source string, metrics BuildMetrics) BuildRecord {
	return BuildRecord{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		Source:    source,
		Metrics:   metrics,
		CreatedAt: time.Now().Unix(),
	}
}

// Template is a named blueprint saved for reuse across guilds.
type Template struct {
	Name      string
	GuildID   string // guild it was saved from
	Blueprint []byte
	CreatedAt int64
}
