package devserver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// fakeFS is a set of existing paths.
type fakeFS map[string]bool

func (f fakeFS) stat(path string) (os.FileInfo, error) {
	if f[path] {
		return nil, nil
	}
	return nil, fs.ErrNotExist
}

func newTestResolver(env map[string]string, files fakeFS, onPath []string, locateOut string, goos string) *Resolver {
	path := make(map[string]bool, len(onPath))
	for _, p := range onPath {
		path[p] = true
	}
	return &Resolver{
		Getenv: func(key string) string { return env[key] },
		LookPath: func(name string) (string, error) {
			if path[name] {
				return "/usr/bin/" + name, nil
			}
			return "", errors.New("not found")
		},
		Stat: files.stat,
		Locate: func(name string) (string, error) {
			if locateOut == "" {
				return "", errors.New("not found")
			}
			return locateOut, nil
		},
		GOOS: goos,
	}
}

func TestResolver_Resolve(t *testing.T) {
	workdir := filepath.Join("/projects", "web")
	localVite := filepath.Join(workdir, "node_modules", ".bin", "vite")

	tests := []struct {
		name      string
		env       map[string]string
		files     fakeFS
		onPath    []string
		locateOut string
		goos      string
		want      *Command
	}{
		{
			name:  "VITE_PATH wins over everything",
			env:   map[string]string{EnvVitePath: "/opt/vite/bin/vite"},
			files: fakeFS{"/opt/vite/bin/vite": true, localVite: true},
			want:  &Command{Path: "/opt/vite/bin/vite", Strategy: StrategyEnv},
		},
		{
			name:  "VITE_PATH pointing nowhere is skipped",
			env:   map[string]string{EnvVitePath: "/missing/vite"},
			files: fakeFS{localVite: true},
			want:  &Command{Path: localVite, Strategy: StrategyLocal},
		},
		{
			name:   "local install",
			files:  fakeFS{localVite: true},
			onPath: []string{"pnpm"},
			want:   &Command{Path: localVite, Strategy: StrategyLocal},
		},
		{
			name:  "local install on windows uses vite.cmd",
			files: fakeFS{localVite + ".cmd": true},
			goos:  "windows",
			want:  &Command{Path: localVite + ".cmd", Strategy: StrategyLocal},
		},
		{
			name:   "pnpm preferred over npm",
			onPath: []string{"npm", "pnpm"},
			want:   &Command{Path: "pnpm", Args: []string{"exec", "vite"}, Strategy: StrategyPackageManager},
		},
		{
			name:   "yarn",
			onPath: []string{"yarn", "npx"},
			want:   &Command{Path: "yarn", Args: []string{"vite"}, Strategy: StrategyPackageManager},
		},
		{
			name:   "bun",
			onPath: []string{"bun"},
			want:   &Command{Path: "bun", Args: []string{"vite"}, Strategy: StrategyPackageManager},
		},
		{
			name:   "npm",
			onPath: []string{"npm"},
			want:   &Command{Path: "npm", Args: []string{"exec", "vite"}, Strategy: StrategyPackageManager},
		},
		{
			name:   "npx last",
			onPath: []string{"npx"},
			want:   &Command{Path: "npx", Args: []string{"vite"}, Strategy: StrategyPackageManager},
		},
		{
			name:      "global install takes last non-empty line",
			locateOut: "C:\\old\\vite\r\nC:\\tools\\vite.cmd\r\n\r\n",
			want:      &Command{Path: "C:\\tools\\vite.cmd", Strategy: StrategyGlobal},
		},
		{
			name:      "global install single line",
			locateOut: "/usr/local/bin/vite\n",
			want:      &Command{Path: "/usr/local/bin/vite", Strategy: StrategyGlobal},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			goos := tt.goos
			if goos == "" {
				goos = "linux"
			}
			r := newTestResolver(tt.env, tt.files, tt.onPath, tt.locateOut, goos)

			got, err := r.Resolve(Options{WorkingDirectory: workdir})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolver_NotFound(t *testing.T) {
	r := newTestResolver(nil, nil, nil, "", "linux")

	_, err := r.Resolve(Options{WorkingDirectory: "/projects/web"})

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Resolve() error = %v, want *NotFoundError", err)
	}
	if len(nf.Tried) != 4 {
		t.Errorf("Tried = %v, want 4 strategies", nf.Tried)
	}

	msg := err.Error()
	for _, want := range []string{
		"Vite not found",
		"VITE_PATH",
		"node_modules/.bin/vite in /projects/web",
		"pnpm, yarn, bun, npm, npx",
		"Global vite executable",
		InstallHint,
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error message missing %q:\n%s", want, msg)
		}
	}
}

func TestCommand_WithPort(t *testing.T) {
	cmd := &Command{Path: "pnpm", Args: []string{"exec", "vite"}, Strategy: StrategyPackageManager}

	got := cmd.withPort(3000)

	if want := "pnpm exec vite --port 3000"; got.String() != want {
		t.Errorf("String() = %q, want %q", got.String(), want)
	}
	if len(cmd.Args) != 2 {
		t.Errorf("withPort() modified the original args: %v", cmd.Args)
	}
}

func TestLastNonEmptyLine(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"\n\n", ""},
		{"/usr/bin/vite", "/usr/bin/vite"},
		{"a\nb\n", "b"},
		{"a\r\nb\r\n  \r\n", "b"},
	}
	for _, tt := range tests {
		if got := lastNonEmptyLine(tt.input); got != tt.want {
			t.Errorf("lastNonEmptyLine(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
