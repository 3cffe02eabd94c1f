// Package cooldown throttles expensive commands per server and per user.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrCooldown = errors.New("cooldown active")

// Store remembers when a key was last used.
type Store interface {
	// Remaining returns how long key stays blocked; zero when it is free.
	Remaining(ctx context.Context, key string) (time.Duration, error)
	Mark(ctx context.Context, key string, ttl time.Duration) error
	Clear(ctx context.Context, key string) error
}

// Error reports which scope is blocked and for how long.
type Error struct {
	Scope     string
	Remaining time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s cooldown active, try again in %s", e.Scope, e.Remaining.Round(time.Second))
}

func (e *Error) Unwrap() error { return ErrCooldown }

// Guard applies the server and user windows to one command.
type Guard struct {
	store  Store
	server time.Duration
	user   time.Duration
}

func NewGuard(store Store, server, user time.Duration) *Guard {
	return &Guard{store: store, server: server, user: user}
}

func serverKey(guildID string) string { return "cooldown:server:" + guildID }
func userKey(userID string) string    { return "cooldown:user:" + userID }

// Check returns an *Error when either window is still open.
func (g *Guard) Check(ctx context.Context, guildID, userID string) error {
	if g.server > 0 {
		left, err := g.store.Remaining(ctx, serverKey(guildID))
		if err != nil {
			return err
		}
		if left > 0 {
			return &Error{Scope: "server", Remaining: left}
		}
	}
	if g.user > 0 {
		left, err := g.store.Remaining(ctx, userKey(userID))
		if err != nil {
			return err
		}
		if left > 0 {
			return &Error{Scope: "user", Remaining: left}
		}
	}
	return nil
}

// Record starts both windows.
func (g *Guard) Record(ctx context.Context, guildID, userID string) error {
	if g.server > 0 {
		if err := g.store.Mark(ctx, serverKey(guildID), g.server); err != nil {
			return err
		}
	}
	if g.user > 0 {
		if err := g.store.Mark(ctx, userKey(userID), g.user); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the server window, used after a reset wipes the guild.
func (g *Guard) Reset(ctx context.Context, guildID string) error {
	return g.store.Clear(ctx, serverKey(guildID))
}
