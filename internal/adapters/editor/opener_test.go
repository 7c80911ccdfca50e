package editor

import (
	"errors"
	"os/exec"
	"testing"
)

func testOpener(env map[string]string, installed ...string) *Opener {
	o := NewOpener()
	o.getenv = func(k string) string { return env[k] }
	o.lookPath = func(name string) (string, error) {
		for _, n := range installed {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", exec.ErrNotFound
	}
	return o
}

func TestCommandPrefersPager(t *testing.T) {
	o := testOpener(map[string]string{"PAGER": "less -S", "EDITOR": "vim"})
	cmd, err := o.Command("/tmp/employees.csv")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	want := []string{"less", "-S", "/tmp/employees.csv"}
	if len(cmd.Args) != len(want) {
		t.Fatalf("args = %v, want %v", cmd.Args, want)
	}
	for i := range want {
		if cmd.Args[i] != want[i] {
			t.Errorf("args[%d] = %q, want %q", i, cmd.Args[i], want[i])
		}
	}
}

func TestCommandFallsBackToInstalledProgram(t *testing.T) {
	o := testOpener(nil, "vi")
	cmd, err := o.Command("/tmp/e.csv")
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd.Path != "/usr/bin/vi" {
		t.Errorf("path = %q, want /usr/bin/vi", cmd.Path)
	}
}

func TestCommandWithoutViewer(t *testing.T) {
	o := testOpener(nil)
	if _, err := o.Command("/tmp/e.csv"); err == nil {
		t.Error("expected error when no viewer is available")
	}
}

func TestCommandRejectsRemoteLocation(t *testing.T) {
	o := testOpener(map[string]string{"PAGER": "less"})
	_, err := o.Command("s3://hr-exports/employees.csv")
	if !errors.Is(err, ErrRemoteLocation) {
		t.Errorf("err = %v, want ErrRemoteLocation", err)
	}
}
