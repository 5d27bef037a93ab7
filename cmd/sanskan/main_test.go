package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

type testEnv struct {
	dir        string
	configPath string
	stdin      *strings.Reader
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	terminal   bool
}

func newTestEnv(t *testing.T, extraConfig string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("storage:\n  database_path: %q\n%s", filepath.Join(dir, "runs.db"), extraConfig)
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return &testEnv{dir: dir, configPath: configPath, stdin: strings.NewReader("\n")}
}

func (e *testEnv) app() *app {
	return &app{
		stdin:      e.stdin,
		stdout:     &e.stdout,
		stderr:     &e.stderr,
		isTerminal: func() bool { return e.terminal },
	}
}

func (e *testEnv) run(args ...string) int {
	e.stdout.Reset()
	e.stderr.Reset()
	return e.app().run(args)
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func (e *testEnv) site(t *testing.T) string {
	t.Helper()
	e.write(t, "site/index.htm", "<h1>Welcome</h1>\n<p>contact us</p>\n")
	e.write(t, "site/about/team.htm", "<p>our team</p>\n<p>Contact the team</p>\n")
	e.write(t, "site/notes.txt", "contact")
	return filepath.Join(e.dir, "site")
}

func (e *testEnv) queryFile(t *testing.T, doc map[string]any) string {
	t.Helper()
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	return e.write(t, "query.json", string(b))
}

func TestArgsReorder(t *testing.T) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	registerScanFlags(fs)
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{"flags after file are moved first", []string{"q.json", "-jobs", "4"}, []string{"-jobs", "4", "q.json"}},
		{"flags first returns unchanged", []string{"-all", "q.json"}, []string{"-all", "q.json"}},
		{"flags on both sides", []string{"-config", "c.yaml", "q.json", "-all"}, []string{"-config", "c.yaml", "-all", "q.json"}},
		{"bool flag does not take the file", []string{"-all", "q.json", "-output", "json"}, []string{"-all", "-output", "json", "q.json"}},
		{"negative value kept with its flag", []string{"q.json", "-max", "-1"}, []string{"-max", "-1", "q.json"}},
		{"inline value", []string{"q.json", "--jobs=2", "-debug"}, []string{"--jobs=2", "-debug", "q.json"}},
		{"double dash ends flags", []string{"q.json", "-all", "--", "-odd.json"}, []string{"-all", "--", "q.json", "-odd.json"}},
		{"file only returns unchanged", []string{"q.json"}, []string{"q.json"}},
		{"empty args returns unchanged", []string{}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := argsReorder(fs, tt.args)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("argsReorder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRunScan_flagsAroundQueryFile(t *testing.T) {
	env := newTestEnv(t, "")
	root := env.site(t)
	qf := env.queryFile(t, map[string]any{"directories": []string{root}, "fragments": []string{"contact", "team"}})

	if code := env.run("-config", env.configPath, qf, "-all", "-output", "compact"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, env.stderr.String())
	}
	want := filepath.Join(root, "about", "team.htm") + "\n"
	if env.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", env.stdout.String(), want)
	}
}

func TestRunScan_textOutput(t *testing.T) {
	env := newTestEnv(t, "")
	root := env.site(t)
	qf := env.queryFile(t, map[string]any{"directories": []string{root}, "fragments": []string{"contact"}})

	if code := env.run(qf, "-config", env.configPath); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, env.stderr.String())
	}
	want := strings.Join([]string{
		fmt.Sprintf(`[query] [ 'contact' ] in [ %s ]`, root),
		fmt.Sprintf(`[match] "contact" at %s:2`, filepath.Join(root, "about", "team.htm")),
		fmt.Sprintf(`[match] "contact" at %s:2`, filepath.Join(root, "index.htm")),
		"[summary] 2 matches",
		"",
	}, "\n")
	if env.stdout.String() != want {
		t.Errorf("stdout:\n%s\nwant:\n%s", env.stdout.String(), want)
	}
}

func TestRunScan_allFlagAndCompact(t *testing.T) {
	env := newTestEnv(t, "")
	root := env.site(t)
	qf := env.queryFile(t, map[string]any{"directories": []string{root}, "fragments": []string{"contact", "team"}})

	if code := env.run("run", "-all", "-output", "compact", "-config", env.configPath, qf); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, env.stderr.String())
	}
	want := filepath.Join(root, "about", "team.htm") + "\n"
	if env.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", env.stdout.String(), want)
	}
}

func TestRunScan_maxOverride(t *testing.T) {
	env := newTestEnv(t, "")
	root := env.site(t)
	qf := env.queryFile(t, map[string]any{
		"directories": []string{root},
		"fragments":   []string{"p"},
	})
	if code := env.run(qf, "-config", env.configPath, "-output", "compact", "-max", "1"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, env.stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected one result per file, got %v", lines)
	}
}

func TestRunScan_errors(t *testing.T) {
	env := newTestEnv(t, "")
	missing := filepath.Join(env.dir, "missing")
	tests := []struct {
		name      string
		content   string
		wantPrefx string
	}{
		{"malformed json", `{"directories": [`, "Error decoding JSON from "},
		{"missing key", `{"fragments": ["a"]}`, "Error deserializing query from "},
		{"wrong type", `{"directories": "x", "fragments": []}`, "Error deserializing query from "},
		{"invalid root", fmt.Sprintf(`{"directories": [%q], "fragments": ["a"]}`, missing),
			fmt.Sprintf("Error: %s is not a directory", missing)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qf := env.write(t, "bad.json", tt.content)
			if code := env.run(qf, "-config", env.configPath); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if !strings.HasPrefix(env.stderr.String(), tt.wantPrefx) {
				t.Errorf("stderr = %q, want prefix %q", env.stderr.String(), tt.wantPrefx)
			}
		})
	}
}

func TestRunScan_unreadableFile(t *testing.T) {
	env := newTestEnv(t, "")
	root := env.site(t)
	env.write(t, "site/broken.htm", "\xff\xfe contact")
	qf := env.queryFile(t, map[string]any{"directories": []string{root}, "fragments": []string{"contact"}})

	if code := env.run(qf, "-config", env.configPath); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if code := env.run(qf, "-config", env.configPath, "-skip-unreadable"); code != 0 {
		t.Errorf("with -skip-unreadable: exit code = %d, stderr %s", code, env.stderr.String())
	}
}

func TestRunScan_usage(t *testing.T) {
	env := newTestEnv(t, "")
	if code := env.run("run"); code != 1 {
		t.Errorf("missing query file: exit %d, want 1", code)
	}
	if !strings.Contains(env.stderr.String(), "Usage: sanskan") {
		t.Errorf("usage not printed: %q", env.stderr.String())
	}
	if code := env.run("run", "-h"); code != 0 {
		t.Errorf("-h: exit %d, want 0", code)
	}
	if code := env.run(); code != 1 {
		t.Errorf("no args: exit %d, want 1", code)
	}
}

func TestRunScan_pause(t *testing.T) {
	env := newTestEnv(t, "scan:\n  pause_on_exit: true\n")
	root := env.site(t)
	qf := env.queryFile(t, map[string]any{"directories": []string{root}, "fragments": []string{"x"}})

	env.terminal = false
	env.run(qf, "-config", env.configPath)
	if strings.Contains(env.stderr.String(), "Press <enter>") {
		t.Error("must not pause when stdin is not a terminal")
	}

	env.terminal = true
	env.run(qf, "-config", env.configPath)
	if !strings.Contains(env.stderr.String(), "Press <enter> to exit") {
		t.Errorf("expected pause prompt, stderr %q", env.stderr.String())
	}

	env.run(qf, "-config", env.configPath, "-no-pause")
	if strings.Contains(env.stderr.String(), "Press <enter>") {
		t.Error("-no-pause must disable the prompt")
	}
}

func TestRunScan_recordAndRuns(t *testing.T) {
	env := newTestEnv(t, "")
	root := env.site(t)
	qf := env.queryFile(t, map[string]any{"directories": []string{root}, "fragments": []string{"contact"}})

	if code := env.run(qf, "-config", env.configPath, "-record", "-output", "json"); code != 0 {
		t.Fatalf("exit %d, stderr: %s", code, env.stderr.String())
	}
	if code := env.run("runs", "-config", env.configPath, "-output", "json"); code != 0 {
		t.Fatalf("runs exit %d, stderr: %s", code, env.stderr.String())
	}
	var runs []struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Summary struct {
			Total int `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(env.stdout.Bytes(), &runs); err != nil {
		t.Fatalf("decode runs: %v (%s)", err, env.stdout.String())
	}
	if len(runs) != 1 || runs[0].Status != "completed" || runs[0].Summary.Total != 2 {
		t.Fatalf("runs = %+v", runs)
	}

	if code := env.run("runs", "-config", env.configPath, runs[0].ID); code != 0 {
		t.Fatalf("runs ID exit %d, stderr: %s", code, env.stderr.String())
	}
	if !strings.Contains(env.stdout.String(), "status:       completed") {
		t.Errorf("run detail missing status: %s", env.stdout.String())
	}

	if code := env.run("runs", "-config", env.configPath, "nope"); code != 1 {
		t.Errorf("unknown run: exit %d, want 1", code)
	}
	if !strings.HasPrefix(env.stderr.String(), "Run not found: nope") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestVersionAndHelp(t *testing.T) {
	env := newTestEnv(t, "")
	if code := env.run("version"); code != 0 || !strings.HasPrefix(env.stdout.String(), "sanskan version ") {
		t.Errorf("version: exit %d, out %q", code, env.stdout.String())
	}
	if code := env.run("help"); code != 0 || !strings.Contains(env.stdout.String(), "Usage:") {
		t.Errorf("help: exit %d", code)
	}
}
