package ports

import "os/exec"

// FileOpener opens a local file, such as a finished export, in an
// external program
type FileOpener interface {
	// OpenFile runs the program and waits for it to exit
	OpenFile(path string) error

	// Command returns the process without starting it, for bubbletea's
	// ExecProcess
	Command(path string) (*exec.Cmd, error)
}
