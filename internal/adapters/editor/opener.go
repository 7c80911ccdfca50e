// Package editor opens exported files in the user's pager or editor.
package editor

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"peopledir/internal/ports"
)

var _ ports.FileOpener = (*Opener)(nil)

// ErrRemoteLocation is returned for exports that were not written locally
var ErrRemoteLocation = errors.New("export is not a local file")

// Opener implements ports.FileOpener
type Opener struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	fallback []string
}

// NewOpener creates an opener that consults $PAGER, $VISUAL and $EDITOR
func NewOpener() *Opener {
	return &Opener{
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		fallback: []string{"less", "more", "nvim", "vim", "vi", "nano"},
	}
}

// OpenFile opens path and waits for the program to exit
func (o *Opener) OpenFile(path string) error {
	cmd, err := o.Command(path)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// Command builds the process that shows path. Locations with a scheme,
// like s3://bucket/key, are rejected.
func (o *Opener) Command(path string) (*exec.Cmd, error) {
	if strings.Contains(path, "://") {
		return nil, fmt.Errorf("%w: %s", ErrRemoteLocation, path)
	}
	argv := o.program()
	if len(argv) == 0 {
		return nil, errors.New("no viewer found: set $PAGER or $EDITOR")
	}

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd, nil
}

// program returns the viewer command line, env values may carry flags
// ("less -S")
func (o *Opener) program() []string {
	for _, env := range []string{"PAGER", "VISUAL", "EDITOR"} {
		if fields := strings.Fields(o.getenv(env)); len(fields) > 0 {
			return fields
		}
	}
	for _, name := range o.fallback {
		if path, err := o.lookPath(name); err == nil {
			return []string{path}
		}
	}
	return nil
}
