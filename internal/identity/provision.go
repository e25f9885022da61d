package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// WorkerProfile is the minimal identity we mirror into the provider for a
// field worker.
type WorkerProfile struct {
	Email  string
	Name   string
	CrewID uint
}

// Login provisions the provider account backing a worker and obtains a
// session for it. It looks the account up by email, creates it if missing,
// upserts the profile, rotates a throwaway password and signs in. The steps
// are separate round trips and not atomic, but each one is idempotent on
// retry because accounts are linked by email lookup, never created blindly.
func (c *Client) Login(ctx context.Context, profile WorkerProfile) (*Session, error) {
	metadata := map[string]any{
		"name":    profile.Name,
		"role":    "worker",
		"crew_id": profile.CrewID,
	}

	password, err := throwawayPassword()
	if err != nil {
		return nil, err
	}

	user, err := c.FindUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if user == nil {
		user, err = c.CreateUser(ctx, profile.Email, password, metadata)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	} else {
		if err := c.UpdateUser(ctx, user.ID, password, metadata); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	session, err := c.SignIn(ctx, profile.Email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return session, nil
}

// throwawayPassword is rotated on every login; workers never see or use it,
// the PIN is their only credential.
func throwawayPassword() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
