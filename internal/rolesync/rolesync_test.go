package rolesync

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryOps/internal/testutil"
	"deliveryOps/models"
)

type fakeSource struct {
	users []models.User
	err   error
	calls int
}

func (f *fakeSource) FetchLinkedUsers(context.Context) ([]models.User, error) {
	f.calls++
	return f.users, f.err
}

type fakeUpdater struct {
	fail  map[string]error
	calls []string
}

func (f *fakeUpdater) UpdateRole(_ context.Context, subject, role string) error {
	f.calls = append(f.calls, subject+"="+role)
	return f.fail[subject]
}

// harness records whether credentials reached the updater factory.
type harness struct {
	updater   *fakeUpdater
	factories int
	creds     Credentials
}

func (h *harness) factory(_ context.Context, c Credentials) (Updater, error) {
	h.factories++
	h.creds = c
	return h.updater, nil
}

func writeCredentials(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const validCredentials = "# local secrets\nAWS_ACCESS_KEY_ID=AKIDEXAMPLE\nAWS_SECRET_ACCESS_KEY=abc=def\nOTHER=1\n"

func threeUsers() []models.User {
	return []models.User{
		{Email: "a@example.com", Role: "CUSTOMER", CognitoSub: "A"},
		{Email: "b@example.com", Role: "DRIVER", CognitoSub: "B"},
		{Email: "c@example.com", Role: "RESTAURANT_OWNER", CognitoSub: "C"},
	}
}

func TestRun_CountsPerUserOutcomes(t *testing.T) {
	h := &harness{updater: &fakeUpdater{fail: map[string]error{
		"C": &smithy.GenericAPIError{Code: "UserNotFoundException", Message: "User does not exist."},
	}}}
	var out bytes.Buffer

	tally, err := Run(context.Background(), Options{
		Source:          &fakeSource{users: threeUsers()},
		Confirm:         Always(true),
		CredentialsFile: writeCredentials(t, validCredentials),
		NewUpdater:      h.factory,
		Out:             &out,
	})
	require.NoError(t, err)

	assert.Equal(t, Tally{Success: 2, Failed: 1}, tally)
	assert.Equal(t, 3, tally.Total())
	assert.Equal(t, []string{"A=CUSTOMER", "B=DRIVER", "C=RESTAURANT_OWNER"}, h.updater.calls)
	assert.Equal(t, Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "abc=def"}, h.creds)

	text := out.String()
	assert.Contains(t, text, "Found 3 users:")
	assert.Contains(t, text, "✅ OK: a@example.com -> custom:role = CUSTOMER")
	assert.Contains(t, text, "❌ Failed: c@example.com")
	assert.Contains(t, text, "Error: UserNotFoundException - User does not exist.")
	assert.Contains(t, text, "Succeeded: 2 users")
	assert.Contains(t, text, "Failed: 1 users")
	assert.NotContains(t, text, "\033[", "color disabled")
}

func TestRun_GenericErrorMessage(t *testing.T) {
	h := &harness{updater: &fakeUpdater{fail: map[string]error{"A": errors.New("dial tcp: timeout")}}}
	var out bytes.Buffer
	tally, err := Run(context.Background(), Options{
		Source:          &fakeSource{users: threeUsers()[:1]},
		Confirm:         Always(true),
		CredentialsFile: writeCredentials(t, validCredentials),
		NewUpdater:      h.factory,
		Out:             &out,
	})
	require.NoError(t, err, "aggregate failures do not fail the run")
	assert.Equal(t, Tally{Failed: 1}, tally)
	assert.Contains(t, out.String(), "Error: dial tcp: timeout")
}

func TestRun_DeclineIssuesNoUpdates(t *testing.T) {
	h := &harness{updater: &fakeUpdater{}}
	var out bytes.Buffer
	tally, err := Run(context.Background(), Options{
		Source:          &fakeSource{users: threeUsers()},
		Confirm:         PromptConfirm(strings.NewReader("n\n"), &out),
		CredentialsFile: writeCredentials(t, validCredentials),
		NewUpdater:      h.factory,
		Out:             &out,
	})
	require.ErrorIs(t, err, ErrDeclined)
	assert.Zero(t, tally.Total())
	assert.Zero(t, h.factories)
	assert.Empty(t, h.updater.calls)
	assert.Contains(t, out.String(), "Operation cancelled")
}

func TestRun_EmptyResultStopsBeforeCredentials(t *testing.T) {
	h := &harness{updater: &fakeUpdater{}}
	confirmed := false
	_, err := Run(context.Background(), Options{
		Source: &fakeSource{},
		Confirm: func(string) (bool, error) {
			confirmed = true
			return true, nil
		},
		CredentialsFile: filepath.Join(t.TempDir(), "missing.env"),
		NewUpdater:      h.factory,
	})
	require.ErrorIs(t, err, ErrNoUsers)
	assert.NotErrorIs(t, err, ErrCredentials)
	assert.False(t, confirmed)
	assert.Zero(t, h.factories)
}

func TestRun_QueryFailureIsFatal(t *testing.T) {
	h := &harness{updater: &fakeUpdater{}}
	_, err := Run(context.Background(), Options{
		Source:     &fakeSource{err: errors.New("container not running")},
		Confirm:    Always(true),
		NewUpdater: h.factory,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "container not running")
	assert.Zero(t, h.factories)
}

func TestRun_MissingCredentialsFile(t *testing.T) {
	h := &harness{updater: &fakeUpdater{}}
	_, err := Run(context.Background(), Options{
		Source:          &fakeSource{users: threeUsers()},
		Confirm:         Always(true),
		CredentialsFile: filepath.Join(t.TempDir(), ".env"),
		NewUpdater:      h.factory,
	})
	require.ErrorIs(t, err, ErrCredentials)
	assert.Zero(t, h.factories)
	assert.Empty(t, h.updater.calls)
}

func TestRun_MissingCredentialKey(t *testing.T) {
	h := &harness{updater: &fakeUpdater{}}
	_, err := Run(context.Background(), Options{
		Source:          &fakeSource{users: threeUsers()},
		Confirm:         Always(true),
		CredentialsFile: writeCredentials(t, "AWS_ACCESS_KEY_ID=AKIDEXAMPLE\n"),
		NewUpdater:      h.factory,
	})
	require.ErrorIs(t, err, ErrCredentials)
	assert.Empty(t, h.updater.calls)
}

func TestRun_DependencyInstalledOnce(t *testing.T) {
	installed := false
	installs := 0
	dep := Dependency{
		Name: "psql",
		Check: func() error {
			if installed {
				return nil
			}
			return errors.New("not found")
		},
		Install: func(context.Context) error {
			installs++
			installed = true
			return nil
		},
	}
	h := &harness{updater: &fakeUpdater{}}
	var out bytes.Buffer
	tally, err := Run(context.Background(), Options{
		Source:          &fakeSource{users: threeUsers()[:2]},
		Dependencies:    []Dependency{dep},
		Confirm:         Always(true),
		CredentialsFile: writeCredentials(t, validCredentials),
		NewUpdater:      h.factory,
		Out:             &out,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, installs)
	assert.Equal(t, 2, tally.Success)
	assert.Contains(t, out.String(), "✅ psql installed")
}

func TestRun_DependencyStillMissing(t *testing.T) {
	src := &fakeSource{users: threeUsers()}
	installs := 0
	dep := Dependency{
		Name:  "docker",
		Check: func() error { return errors.New("not found") },
		Install: func(context.Context) error {
			installs++
			return nil
		},
		Hint: "Install docker manually",
	}
	var out bytes.Buffer
	_, err := Run(context.Background(), Options{
		Source:       src,
		Dependencies: []Dependency{dep},
		Confirm:      Always(true),
		NewUpdater:   (&harness{updater: &fakeUpdater{}}).factory,
		Out:          &out,
	})
	require.ErrorIs(t, err, ErrDependency)
	assert.Equal(t, 1, installs)
	assert.Zero(t, src.calls, "no query after failed preflight")
	assert.Contains(t, out.String(), "Install docker manually")
}

func TestRun_DependencyWithoutInstaller(t *testing.T) {
	dep := CommandDependency("definitely-not-a-real-binary-xyz", "")
	_, err := Run(context.Background(), Options{
		Source:       &fakeSource{users: threeUsers()},
		Dependencies: []Dependency{dep},
		Confirm:      Always(true),
		NewUpdater:   (&harness{updater: &fakeUpdater{}}).factory,
	})
	require.ErrorIs(t, err, ErrDependency)
}

func TestRun_SQLiteSource(t *testing.T) {
	d := testutil.OpenInMemoryDB(t, "rolesync_sqlite")
	repo := testutil.SeedUsers(t, d,
		models.User{Email: "owner@example.com", Role: "RESTAURANT_OWNER", CognitoSub: "sub-owner"},
		models.User{Email: "walkin@example.com", Role: "CUSTOMER"},
	)
	h := &harness{updater: &fakeUpdater{}}
	tally, err := Run(context.Background(), Options{
		Source:          repo,
		Confirm:         Always(true),
		CredentialsFile: writeCredentials(t, validCredentials),
		NewUpdater:      h.factory,
		Color:           true,
		Out:             &bytes.Buffer{},
	})
	require.NoError(t, err)
	assert.Equal(t, Tally{Success: 1}, tally)
	assert.Equal(t, []string{"sub-owner=RESTAURANT_OWNER"}, h.updater.calls)
}

func TestPromptConfirm(t *testing.T) {
	cases := map[string]bool{"y\n": true, "Y\n": true, "yes\n": false, "\n": false, "": false}
	for in, want := range cases {
		var out bytes.Buffer
		got, err := PromptConfirm(strings.NewReader(in), &out)("continue? ")
		require.NoError(t, err)
		assert.Equal(t, want, got, "input %q", in)
		assert.Equal(t, "continue? ", out.String())
	}
}
