package navigation

import (
	"fmt"
	"io"
	"sync"
)

// Default destinations after a forced logout.
const (
	AdminLoginPath = "/admin/login"
	LoginPath      = "/login"
)

// Navigator moves the operator to another screen. In the console there is
// no page to replace, so implementations tell the operator where to go.
type Navigator interface {
	Navigate(path string)
}

// ConsoleNavigator writes redirect instructions for a terminal user.
type ConsoleNavigator struct {
	out     io.Writer
	command string
}

func NewConsoleNavigator(out io.Writer, command string) *ConsoleNavigator {
	return &ConsoleNavigator{out: out, command: command}
}

func (n *ConsoleNavigator) Navigate(path string) {
	switch path {
	case AdminLoginPath:
		fmt.Fprintf(n.out, "Your admin session has ended. Sign in again with: %s login\n", n.command)
	case LoginPath:
		fmt.Fprintf(n.out, "You have been signed out. Sign in again to continue (%s).\n", path)
	default:
		fmt.Fprintf(n.out, "Redirected to %s\n", path)
	}
}

// Recorder keeps every navigation in order. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *Recorder) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

// Paths returns a copy of the recorded destinations.
func (r *Recorder) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// Last returns the most recent destination, or "" if none.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.paths) == 0 {
		return ""
	}
	return r.paths[len(r.paths)-1]
}
