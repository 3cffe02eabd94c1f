// Package blueprint defines the declarative server layout document, its
// schema validation and the recovery of blueprint-shaped JSON from AI output.
package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChannelType is the textual channel kind used in blueprint documents.
type ChannelType string

const (
	ChannelText         ChannelType = "text"
	ChannelVoice        ChannelType = "voice"
	ChannelAnnouncement ChannelType = "announcement"
	ChannelMedia        ChannelType = "media"
	ChannelStage        ChannelType = "stage"
	ChannelForum        ChannelType = "forum"
)

// AutoArchiveDurations lists the forum auto-archive values (minutes) Discord accepts.
var AutoArchiveDurations = []int{60, 1440, 4320, 10080}

// Blueprint is the root document.
type Blueprint struct {
	Style           *Style                `json:"style,omitempty"`
	Branding        *Branding             `json:"branding,omitempty"`
	Community       bool                  `json:"community,omitempty"`
	Roles           []Role                `json:"roles"`
	Categories      Categories            `json:"categories"`
	Private         map[string][]string   `json:"private,omitempty"`
	CategoryPrivacy map[string]string     `json:"categoryPrivacy,omitempty"`
	WelcomeScreen   *WelcomeScreen        `json:"welcomeScreen,omitempty"`
	Webhooks        map[string]WebhookDef `json:"webhooks,omitempty"`
}

type Style struct {
	EmojiPrefix string `json:"emojiPrefix,omitempty"`
	Theme       string `json:"theme,omitempty"`
}

// Branding overrides Style where both set a value.
type Branding struct {
	Color  string `json:"color,omitempty"`
	Accent string `json:"accent,omitempty"`
	Emoji  string `json:"emoji,omitempty"`
}

type Role struct {
	Name        string   `json:"name"`
	Color       string   `json:"color,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	IsStaff     bool     `json:"isStaff,omitempty"`
	IsModerator bool     `json:"isModerator,omitempty"`
}

type Channel struct {
	Name                       string          `json:"name"`
	Type                       ChannelType     `json:"type,omitempty"`
	Topic                      string          `json:"topic,omitempty"`
	ReadOnly                   bool            `json:"readOnly,omitempty"`
	Private                    bool            `json:"private,omitempty"`
	AllowedRoles               []string        `json:"allowedRoles,omitempty"`
	Permissions                *PermissionSpec `json:"permissions,omitempty"`
	PermissionsPreset          string          `json:"permissionsPreset,omitempty"`
	Order                      *int            `json:"order,omitempty"`
	ThreadsLocked              bool            `json:"threadsLocked,omitempty"`
	DefaultAutoArchiveDuration int             `json:"defaultAutoArchiveDuration,omitempty"`
	Message                    *Message        `json:"message,omitempty"`
	Emoji                      string          `json:"emoji,omitempty"`
}

// EffectiveType returns the declared type, defaulting to text.
func (c Channel) EffectiveType() ChannelType {
	if c.Type == "" {
		return ChannelText
	}
	return c.Type
}

// PresetName returns the preset that governs the channel: permissionsPreset
// first, then a legacy string-typed permissions field.
func (c Channel) PresetName() string {
	if c.PermissionsPreset != "" {
		return c.PermissionsPreset
	}
	if c.Permissions != nil {
		return c.Permissions.Preset
	}
	return ""
}

// PermissionSpec holds the legacy "permissions" channel field, which is
// either a single preset name or a list of raw permission names.
type PermissionSpec struct {
	Preset string
	Names  []string
}

func (p PermissionSpec) MarshalJSON() ([]byte, error) {
	if p.Names != nil {
		return json.Marshal(p.Names)
	}
	return json.Marshal(p.Preset)
}

func (p *PermissionSpec) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		p.Preset = ""
		return json.Unmarshal(trimmed, &p.Names)
	}
	p.Names = nil
	return json.Unmarshal(trimmed, &p.Preset)
}

type Message struct {
	Title    string    `json:"title,omitempty"`
	Body     string    `json:"body,omitempty"`
	Sections []Section `json:"sections,omitempty"`
}

type Section struct {
	Header  string   `json:"header,omitempty"`
	Content string   `json:"content,omitempty"`
	Bullets []string `json:"bullets,omitempty"`
}

type WelcomeScreen struct {
	Description string          `json:"description,omitempty"`
	Prompts     []WelcomePrompt `json:"prompts,omitempty"`
}

type WelcomePrompt struct {
	Title       string `json:"title"`
	Channel     string `json:"channel,omitempty"`
	Emoji       string `json:"emoji,omitempty"`
	Description string `json:"description,omitempty"`
}

type WebhookDef struct {
	Name   string `json:"name,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Category is one entry of the ordered categories mapping.
type Category struct {
	Name     string
	Channels []Channel
}

// Categories keeps the document's key order, which decides creation order.
type Categories []Category

// Get returns the channels listed under name.
func (c Categories) Get(name string) ([]Channel, bool) {
	for _, cat := range c {
		if cat.Name == name {
			return cat.Channels, true
		}
	}
	return nil, false
}

// Set replaces the channels of an existing category or appends a new one.
func (c *Categories) Set(name string, channels []Channel) {
	for i := range *c {
		if (*c)[i].Name == name {
			(*c)[i].Channels = channels
			return
		}
	}
	*c = append(*c, Category{Name: name, Channels: channels})
}

// ChannelCount sums the channel definitions across all categories.
func (c Categories) ChannelCount() int {
	n := 0
	for _, cat := range c {
		n += len(cat.Channels)
	}
	return n
}

func (c Categories) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cat := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cat.Name)
		if err != nil {
			return nil, err
		}
		channels := cat.Channels
		if channels == nil {
			channels = []Channel{}
		}
		value, err := json.Marshal(channels)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Categories) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*c = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("categories: expected object, got %v", tok)
	}

	out := make(Categories, 0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("categories: expected key, got %v", tok)
		}
		var channels []Channel
		if err := dec.Decode(&channels); err != nil {
			return fmt.Errorf("categories[%s]: %w", name, err)
		}
		out.Set(name, channels)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*c = out
	return nil
}

// Parse decodes a JSON document into a Blueprint without validating it.
func Parse(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := json.Unmarshal(data, &bp); err != nil {
		return nil, fmt.Errorf("failed to parse blueprint: %w", err)
	}
	return &bp, nil
}

// Marshal renders an indented JSON document.
func Marshal(bp *Blueprint) ([]byte, error) {
	return json.MarshalIndent(bp, "", "  ")
}

// EmojiPrefix returns the channel-name prefix: branding wins over style.
func (bp *Blueprint) EmojiPrefix() string {
	if bp.Branding != nil && bp.Branding.Emoji != "" {
		return bp.Branding.Emoji
	}
	if bp.Style != nil {
		return bp.Style.EmojiPrefix
	}
	return ""
}

// Clone returns a deep copy via a JSON round trip.
func (bp *Blueprint) Clone() (*Blueprint, error) {
	data, err := json.Marshal(bp)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
