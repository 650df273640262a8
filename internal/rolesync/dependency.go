package rolesync

import (
	"context"
	"fmt"
	"os/exec"
)

// Dependency is an external prerequisite checked before any work starts.
// Install is optional: when set it is tried once and Check is repeated.
// update-cognito-roles only wires CommandDependency("docker"), which has no
// installer, so a missing docker CLI fails the run after the check.
type Dependency struct {
	Name    string
	Check   func() error
	Install func(ctx context.Context) error
	Hint    string                          // shown when installation fails
}

// CommandDependency requires an executable on PATH.
func CommandDependency(name, hint string) Dependency {
	return Dependency{
		Name: name,
		Check: func() error {
			_, err := exec.LookPath(name)
			return err
		},
		Hint: hint,
	}
}

// ensure checks dep, attempts one install when the check fails and checks again.
func (d Dependency) ensure(ctx context.Context, c *console) error {
	if d.Check == nil || d.Check() == nil {
		return nil
	}
	c.red("Error: %s is not available!", d.Name)
	if d.Install == nil {
		if d.Hint != "" {
			c.plain("%s", d.Hint)
		}
		return fmt.Errorf("%w: %s is not available", ErrDependency, d.Name)
	}
	c.plain("Trying to install %s...", d.Name)
	err := d.Install(ctx)
	if err == nil {
		err = d.Check()
	}
	if err != nil {
		c.red("Install failed: %v", err)
		if d.Hint != "" {
			c.plain("%s", d.Hint)
		}
		return fmt.Errorf("%w: install %s: %v", ErrDependency, d.Name, err)
	}
	c.green("✅ %s installed", d.Name)
	return nil
}
