// Package storage persists blueprints, build records, templates and
// per-guild settings.
package storage

import (
	"context"
	"errors"

	"go-guildbuilder/internal/blueprint"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrNoBlueprint = errors.New("no stored blueprint")
)

// KV holds per-guild string settings.
type KV interface {
	GetConfig(ctx context.Context, guildID, key string) (string, error)
	SetConfig(ctx context.Context, guildID, key, value string) error
	DeleteConfig(ctx context.Context, guildID, key string) error
}

type Store interface {
	KV

	SaveBlueprint(ctx context.Context, guildID string, bp *blueprint.Blueprint) error
	// LoadBlueprint returns ErrNoBlueprint when the guild has none.
	LoadBlueprint(ctx context.Context, guildID string) (*blueprint.Blueprint, error)

	SaveBuild(ctx context.Context, rec BuildRecord) error
	LastBuild(ctx context.Context, guildID string) (*BuildRecord, error)
	AppendUsage(ctx context.Context, rec BuildRecord) error
	Usage(ctx context.Context, guildID string, limit int) ([]BuildRecord, error)
	UsageCount(ctx context.Context) (int, error)

	SaveTemplate(ctx context.Context, tpl Template) error
	LoadTemplate(ctx context.Context, name string) (*Template, error)
	ListTemplates(ctx context.Context) ([]string, error)

	Close() error
}

// Setting keys used in the guild config KV.
const (
	KeyLastExport  = "last_export"
	KeyLastReapply = "last_reapply"
	KeyImportedAt  = "imported_at"
	KeyWelcomeSent = "welcome_sent"
)
