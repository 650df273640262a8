package repository

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"deliveryOps/models"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ContainerSource reads linked users by running psql inside the database container.
type ContainerSource struct {
	Container string
	Database  string
	User      string
	Run       CommandRunner
}

// NewContainerSource returns a source that shells out to `docker exec`.
func NewContainerSource(container, database, user string) *ContainerSource {
	return &ContainerSource{Container: container, Database: database, User: user, Run: execCommand}
}

// Args returns the docker command line used to run the query.
func (s *ContainerSource) Args() []string {
	return []string{
		"exec", s.Container,
		"psql", "-U", s.User, "-d", s.Database,
		"-t", "-A", "-F,",
		"-c", linkedUsersQuery + ";",
	}
}

func (s *ContainerSource) FetchLinkedUsers(ctx context.Context) ([]models.User, error) {
	run := s.Run
	if run == nil {
		run = execCommand
	}
	out, err := run(ctx, "docker", s.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query container %s: %w", s.Container, err)
	}
	return parseUnalignedRows(out)
}

// parseUnalignedRows parses psql -t -A -F, output: one `email,role,sub` per line.
func parseUnalignedRows(out []byte) ([]models.User, error) {
	var users []models.User
	for i, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("row %d: expected 3 fields, got %d", i+1, len(fields))
		}
		users = append(users, models.User{Email: fields[0], Role: fields[1], CognitoSub: fields[2]})
	}
	return users, nil
}

func execCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return out, nil
}
