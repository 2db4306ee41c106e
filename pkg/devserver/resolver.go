package devserver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// EnvVitePath names the environment variable overriding command resolution.
const EnvVitePath = "VITE_PATH"

// InstallHint is appended to NotFoundError messages.
const InstallHint = "Install Vite with: npm install -D vite"

// Strategy identifies how a Command was resolved.
type Strategy string

const (
	StrategyEnv            Strategy = "env"
	StrategyLocal          Strategy = "local"
	StrategyPackageManager Strategy = "package-manager"
	StrategyGlobal         Strategy = "global"
)

// Command is a resolved dev server invocation.
type Command struct {
	Path     string
	Args     []string
	Strategy Strategy
}

// String renders the command line.
func (c *Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// withPort returns a copy of c with "--port N" appended.
func (c *Command) withPort(port uint16) *Command {
	args := make([]string, 0, len(c.Args)+2)
	args = append(args, c.Args...)
	args = append(args, "--port", fmt.Sprintf("%d", port))
	return &Command{Path: c.Path, Args: args, Strategy: c.Strategy}
}

// NotFoundError is returned when no strategy produced a command.
type NotFoundError struct {
	WorkingDirectory string
	Tried            []string
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	b.WriteString("Vite not found. Tried:\n")
	for _, t := range e.Tried {
		b.WriteString("  - ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(InstallHint)
	return b.String()
}

type packageManager struct {
	name string
	args []string
}

// packageManagers are tried in order. Only the launcher's presence on PATH
// is checked.
var packageManagers = []packageManager{
	{name: "pnpm", args: []string{"exec", "vite"}},
	{name: "yarn", args: []string{"vite"}},
	{name: "bun", args: []string{"vite"}},
	{name: "npm", args: []string{"exec", "vite"}},
	{name: "npx", args: []string{"vite"}},
}

// Resolver locates the dev server executable. The function fields default
// to the operating system and can be replaced in tests.
type Resolver struct {
	Getenv   func(string) string
	LookPath func(string) (string, error)
	Stat     func(string) (os.FileInfo, error)

	// Locate runs the platform lookup command for name and returns its
	// raw output.
	Locate func(name string) (string, error)

	GOOS string
}

// NewResolver returns a Resolver backed by the operating system.
func NewResolver() *Resolver {
	return &Resolver{
		Getenv:   os.Getenv,
		LookPath: exec.LookPath,
		Stat:     os.Stat,
		Locate:   locate,
		GOOS:     runtime.GOOS,
	}
}

// Resolve returns the first command found by, in order: the VITE_PATH
// variable, the project's node_modules/.bin, a package manager on PATH and
// a global install.
func (r *Resolver) Resolve(opts Options) (*Command, error) {
	if path := r.Getenv(EnvVitePath); path != "" && r.exists(path) {
		return &Command{Path: path, Strategy: StrategyEnv}, nil
	}

	local := filepath.Join(opts.WorkingDirectory, "node_modules", ".bin", "vite")
	if r.GOOS == "windows" {
		local += ".cmd"
	}
	if r.exists(local) {
		return &Command{Path: local, Strategy: StrategyLocal}, nil
	}

	for _, pm := range packageManagers {
		if _, err := r.LookPath(pm.name); err == nil {
			args := make([]string, len(pm.args))
			copy(args, pm.args)
			return &Command{Path: pm.name, Args: args, Strategy: StrategyPackageManager}, nil
		}
	}

	if r.Locate != nil {
		if out, err := r.Locate("vite"); err == nil {
			if path := lastNonEmptyLine(out); path != "" {
				return &Command{Path: path, Strategy: StrategyGlobal}, nil
			}
		}
	}

	return nil, &NotFoundError{
		WorkingDirectory: opts.WorkingDirectory,
		Tried: []string{
			EnvVitePath + " environment variable",
			"node_modules/.bin/vite in " + opts.WorkingDirectory,
			"Package managers: pnpm, yarn, bun, npm, npx",
			"Global vite executable",
		},
	}
}

func (r *Resolver) exists(path string) bool {
	_, err := r.Stat(path)
	return err == nil
}

// locate runs "which" or "where" for name.
func locate(name string) (string, error) {
	finder := "which"
	if runtime.GOOS == "windows" {
		finder = "where"
	}
	out, err := exec.Command(finder, name).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func lastNonEmptyLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
