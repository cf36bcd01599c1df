package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/sponsorsync/pkg/region"
	"github.com/CTAG07/sponsorsync/pkg/sponsors"
)

const testPage = `# Project

<!-- SPONSORS_START -->
<!-- SPONSORS_END -->

Footer stays put.
`

const testSponsors = `sponsors:
  - name: Alice
    profile_url: https://github.com/alice
    avatar_url: https://avatars.example.com/alice.png
    weight: 250
  - name: Bob & Co
    profile_url: https://github.com/bob
    avatar_url: https://avatars.example.com/bob.png
    weight: 50
  - name: Carol
    profile_url: https://github.com/carol
    avatar_url: https://avatars.example.com/carol.png
    weight: 5
`

type testEnv struct {
	dir        string
	configPath string
	docPath    string
}

// setupTestEnv writes a config, a sponsor file and one host document into a
// temp dir. modify can adjust the config before it is written.
func setupTestEnv(t *testing.T, modify func(*Config)) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "sponsorsync.json"),
		docPath:    filepath.Join(dir, "index.md"),
	}

	sponsorsPath := filepath.Join(dir, "sponsors.yaml")
	if err := os.WriteFile(sponsorsPath, []byte(testSponsors), 0644); err != nil {
		t.Fatalf("failed to write sponsors: %v", err)
	}
	if err := os.WriteFile(env.docPath, []byte(testPage), 0644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	config := DefaultConfig()
	config.LogLevel = "error"
	config.Thresholds = &sponsors.Thresholds{Large: 100, Medium: 10}
	config.Source.SponsorsFile = sponsorsPath
	config.Documents = []string{env.docPath}
	if modify != nil {
		modify(config)
	}
	data, err := json.Marshal(config)
	if err != nil {
		t.Fatalf("failed to marshal config: %v", err)
	}
	if err := os.WriteFile(env.configPath, data, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return env
}

// runCmd executes the CLI in-process and returns stdout.
func runCmd(t *testing.T, env testEnv, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestUpdateCommand(t *testing.T) {
	env := setupTestEnv(t, nil)

	if _, err := runCmd(t, env, "update"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got := readFile(t, env.docPath)
	if !strings.HasPrefix(got, "# Project\n\n"+region.DefaultStartMarker+"\n<div class=\"sponsors sponsors-large\">") {
		t.Errorf("unexpected document head:\n%s", got)
	}
	if !strings.HasSuffix(got, "</div>\n"+region.DefaultEndMarker+"\n\nFooter stays put.\n") {
		t.Errorf("unexpected document tail:\n%s", got)
	}
	if !strings.Contains(got, `aria-label="Bob &amp; Co"`) {
		t.Errorf("sponsor name not escaped:\n%s", got)
	}
	if n := strings.Count(got, "<hr>"); n != 2 {
		t.Errorf("expected 2 separators, got %d", n)
	}

	// A second run leaves the file byte-for-byte identical.
	if _, err := runCmd(t, env, "update"); err != nil {
		t.Fatalf("second update failed: %v", err)
	}
	if again := readFile(t, env.docPath); again != got {
		t.Error("second update changed the document")
	}
}

func TestUpdateDryRun(t *testing.T) {
	env := setupTestEnv(t, nil)

	out, err := runCmd(t, env, "update", "--dry-run")
	if err != nil {
		t.Fatalf("update --dry-run failed: %v", err)
	}
	if !strings.Contains(out, "sponsors-medium") {
		t.Errorf("dry run should print the updated document, got:\n%s", out)
	}
	if readFile(t, env.docPath) != testPage {
		t.Error("dry run must not write the document")
	}
}

// failingWriter rejects every write, like a closed stdout pipe.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestUpdateDryRunWriteError(t *testing.T) {
	env := setupTestEnv(t, nil)

	var stderr bytes.Buffer
	cmd := newRootCmd(failingWriter{}, &stderr)
	cmd.SetArgs([]string{"--config", env.configPath, "update", "--dry-run"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("update --dry-run to a failing stdout = %v, want the write error", err)
	}
	if readFile(t, env.docPath) != testPage {
		t.Error("dry run must not write the document")
	}
}

func TestUpdateMarkerErrorLeavesDocument(t *testing.T) {
	env := setupTestEnv(t, nil)
	broken := strings.Replace(testPage, region.DefaultEndMarker, "", 1)
	if err := os.WriteFile(env.docPath, []byte(broken), 0644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}

	_, err := runCmd(t, env, "update")
	var mErr *region.MarkerError
	if !errors.As(err, &mErr) {
		t.Fatalf("expected *region.MarkerError, got %v", err)
	}
	if readFile(t, env.docPath) != broken {
		t.Error("document was modified despite a marker error")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupTestEnv(t, nil)

	if _, err := runCmd(t, env, "check"); !errors.Is(err, errStale) {
		t.Fatalf("check on a stale document = %v, want errStale", err)
	}
	if readFile(t, env.docPath) != testPage {
		t.Error("check must not write the document")
	}

	if _, err := runCmd(t, env, "update"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := runCmd(t, env, "check", env.docPath); err != nil {
		t.Errorf("check after update = %v, want nil", err)
	}
}

func TestRenderCommand(t *testing.T) {
	env := setupTestEnv(t, nil)

	out, err := runCmd(t, env, "render")
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.HasPrefix(out, `<div class="sponsors sponsors-large">`) {
		t.Errorf("unexpected fragment:\n%s", out)
	}
	if strings.Contains(out, region.DefaultStartMarker) {
		t.Error("render should print only the fragment")
	}
}

func TestImportAndDatabaseSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sponsors.db")
	env := setupTestEnv(t, nil)

	if _, err := runCmd(t, env, "import", "--database", dbPath, filepath.Join(env.dir, "sponsors.yaml")); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	// Point the config at the database with no sponsor file left.
	dbEnv := setupTestEnv(t, func(c *Config) {
		c.Source = &SourceConfig{DatabasePath: dbPath}
	})
	out, err := runCmd(t, dbEnv, "render")
	if err != nil {
		t.Fatalf("render from database failed: %v", err)
	}
	for _, name := range []string{"Alice", "Bob &amp; Co", "Carol"} {
		if !strings.Contains(out, name) {
			t.Errorf("fragment missing %q:\n%s", name, out)
		}
	}
}

func TestImportRequiresDatabase(t *testing.T) {
	env := setupTestEnv(t, nil)
	if _, err := runCmd(t, env, "import", filepath.Join(env.dir, "sponsors.yaml")); err == nil {
		t.Error("import without a database should fail")
	}
}

func TestMissingConfigScaffold(t *testing.T) {
	env := testEnv{configPath: filepath.Join(t.TempDir(), "new.json")}
	_, err := runCmd(t, env, "render")
	if err == nil || !strings.Contains(err.Error(), "thresholds") {
		t.Fatalf("expected a thresholds error from the scaffold, got %v", err)
	}
	if _, statErr := os.Stat(env.configPath); statErr != nil {
		t.Errorf("scaffold config was not written: %v", statErr)
	}
}

func TestVersionCommand(t *testing.T) {
	env := testEnv{configPath: filepath.Join(t.TempDir(), "unused.json")}
	out, err := runCmd(t, env, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "sponsorsync dev") {
		t.Errorf("unexpected version output %q", out)
	}
	if _, statErr := os.Stat(env.configPath); !os.IsNotExist(statErr) {
		t.Error("version should not touch the config file")
	}
}
