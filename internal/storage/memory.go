package storage

import (
	"context"
	"sort"
	"sync"

	"go-guildbuilder/internal/blueprint"
)

// Memory is a Store kept entirely in process memory.
type Memory struct {
	mu         sync.RWMutex
	blueprints map[string][]byte
	builds     map[string]BuildRecord
	usage      []BuildRecord
	templates  map[string]Template
	config     map[string]map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		blueprints: make(map[string][]byte),
		builds:     make(map[string]BuildRecord),
		templates:  make(map[string]Template),
		config:     make(map[string]map[string]string),
	}
}

func (m *Memory) SaveBlueprint(ctx context.Context, guildID string, bp *blueprint.Blueprint) error {
	doc, err := blueprint.Marshal(bp)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.blueprints[guildID] = doc
	m.mu.Unlock()
	return nil
}

func (m *Memory) LoadBlueprint(ctx context.Context, guildID string) (*blueprint.Blueprint, error) {
	m.mu.RLock()
	doc, ok := m.blueprints[guildID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoBlueprint
	}
	return blueprint.Parse(doc)
}

func (m *Memory) SaveBuild(ctx context.Context, rec BuildRecord) error {
	m.mu.Lock()
	m.builds[rec.GuildID] = rec
	m.mu.Unlock()
	return nil
}

func (m *Memory) LastBuild(ctx context.Context, guildID string) (*BuildRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.builds[guildID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) AppendUsage(ctx context.Context, rec BuildRecord) error {
	m.mu.Lock()
	m.usage = append(m.usage, rec)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Usage(ctx context.Context, guildID string, limit int) ([]BuildRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []BuildRecord
	for i := len(m.usage) - 1; i >= 0; i-- {
		if m.usage[i].GuildID != guildID {
			continue
		}
		out = append(out, m.usage[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *Memory) UsageCount(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.usage), nil
}

func (m *Memory) SaveTemplate(ctx context.Context, tpl Template) error {
	m.mu.Lock()
	m.templates[tpl.Name] = tpl
	m.mu.Unlock()
	return nil
}

func (m *Memory) LoadTemplate(ctx context.Context, name string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tpl, ok := m.templates[name]
	if !ok {
		return nil, ErrNotFound
	}
	return &tpl, nil
}

func (m *Memory) ListTemplates(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.templates))
	for name := range m.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) GetConfig(ctx context.Context, guildID, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.config[guildID][key]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (m *Memory) SetConfig(ctx context.Context, guildID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config[guildID] == nil {
		m.config[guildID] = make(map[string]string)
	}
	m.config[guildID][key] = value
	return nil
}

func (m *Memory) DeleteConfig(ctx context.Context, guildID, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.config[guildID], key)
	return nil
}

func (m *Memory) Close() error { return nil }
