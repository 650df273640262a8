// Package rolesync copies the database role of every Cognito-linked user into
// the user pool's custom:role attribute.
package rolesync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"deliveryOps/internal/identity"
	"deliveryOps/repository"
)

var (
	// ErrDependency reports a prerequisite that is missing after one install attempt.
	ErrDependency = errors.New("missing dependency")
	// ErrNoUsers reports an empty linked user set.
	ErrNoUsers = errors.New("no linked users found in database")
	// ErrDeclined reports that the operator did not confirm. It is not a failure.
	ErrDeclined = errors.New("cancelled by operator")
	// ErrCredentials reports a missing credentials file or missing keys.
	ErrCredentials = errors.New("credentials unavailable")
)

// Updater sets the role attribute of one identity provider user.
type Updater interface {
	UpdateRole(ctx context.Context, subject, role string) error
}

// UpdaterFactory builds an Updater once credentials are known.
type UpdaterFactory func(ctx context.Context, creds Credentials) (Updater, error)

// Options wires a run.
type Options struct {
	Source          repository.LinkedUserSource
	Dependencies    []Dependency
	Confirm         ConfirmFunc
	CredentialsFile string
	NewUpdater      UpdaterFactory
	Out             io.Writer
	Color           bool
	Logger          *zap.Logger
}

// Tally counts per-user outcomes of a run.
type Tally struct {
	Success int
	Failed  int
}

// Total is the number of users an update was attempted for.
func (t Tally) Total() int { return t.Success + t.Failed }

const banner = "=================================================="

// Run executes the sync. Errors returned are preconditions that stopped the
// run before any update, or ErrDeclined. Per-user failures are only counted.
func Run(ctx context.Context, opts Options) (Tally, error) {
	var tally Tally
	if opts.Source == nil || opts.NewUpdater == nil || opts.Confirm == nil {
		return tally, errors.New("rolesync: source, updater factory and confirm are required")
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	c := &console{w: out, color: opts.Color}

	c.green(banner)
	c.green("Cognito user role bulk update")
	c.green(banner)
	c.blank()

	for _, dep := range opts.Dependencies {
		if err := dep.ensure(ctx, c); err != nil {
			log.Error("dependency check failed", zap.String("dependency", dep.Name), zap.Error(err))
			return tally, err
		}
	}

	c.yellow("Fetching users from database...")
	users, err := opts.Source.FetchLinkedUsers(ctx)
	if err != nil {
		c.red("Database query failed: %v", err)
		log.Error("fetch linked users", zap.Error(err))
		return tally, fmt.Errorf("fetch linked users: %w", err)
	}
	if len(users) == 0 {
		c.red("Error: no user data found in database")
		return tally, ErrNoUsers
	}

	c.green("Found %d users:", len(users))
	for _, u := range users {
		c.plain("  - %s (role: %s, sub: %s...)", u.Email, u.Role, u.ShortSub())
	}
	c.blank()

	ok, err := opts.Confirm(fmt.Sprintf("Update Cognito %s for these users? (y/n) ", identity.RoleAttribute))
	if err != nil {
		return tally, fmt.Errorf("read confirmation: %w", err)
	}
	if !ok {
		c.yellow("Operation cancelled")
		return tally, ErrDeclined
	}

	c.blank()
	c.yellow("Updating user attributes...")
	c.blank()

	creds, err := LoadCredentials(opts.CredentialsFile)
	if err != nil {
		c.red("Error: %v", err)
		return tally, err
	}
	updater, err := opts.NewUpdater(ctx, creds)
	if err != nil {
		c.red("Error: %v", err)
		return tally, fmt.Errorf("create identity client: %w", err)
	}

	for _, u := range users {
		c.yellow("Updating: %s", u.Email)
		if err := updater.UpdateRole(ctx, u.CognitoSub, u.Role); err != nil {
			c.red("❌ Failed: %s", u.Email)
			c.red("   Error: %s", identity.Describe(err))
			log.Warn("update role", zap.String("email", u.Email), zap.String("sub", u.CognitoSub), zap.Error(err))
			tally.Failed++
		} else {
			c.green("✅ OK: %s -> %s = %s", u.Email, identity.RoleAttribute, u.Role)
			tally.Success++
		}
		c.blank()
	}

	c.blank()
	c.green(banner)
	c.green("Update complete!")
	c.green("Succeeded: %d users", tally.Success)
	if tally.Failed > 0 {
		c.red("Failed: %d users", tally.Failed)
	}
	c.green(banner)
	c.blank()
	c.yellow("Hint: users get the %s claim in their tokens after signing in again", identity.RoleAttribute)
	log.Info("role sync finished", zap.Int("success", tally.Success), zap.Int("failed", tally.Failed))
	return tally, nil
}
