package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/javiermolinar/marquee/internal/config"
	"github.com/javiermolinar/marquee/internal/datatable"
	"github.com/javiermolinar/marquee/internal/db"
	"github.com/javiermolinar/marquee/internal/event"
	"github.com/javiermolinar/marquee/internal/llm"
)

func TestMain(m *testing.M) {
	DisableColor()
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type fakeClient struct {
	reply string
	err   error
}

func (f fakeClient) Chat(context.Context, []llm.Message) (string, error) {
	return f.reply, f.err
}

func (f fakeClient) ChatJSON(_ context.Context, _ []llm.Message, result any) error {
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.reply), result)
}

// testConfig points storage and exports at a temp dir.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Storage.DBPath = filepath.Join(dir, "data", "marquee.db")
	cfg.Table.ExportDir = filepath.Join(dir, "exports")
	cfg.Table.DefaultSort = ""
	return cfg
}

// seedEvents writes n events alternating between Berlin and Lisbon.
func seedEvents(t *testing.T, cfg *config.Config, n int) []*event.Event {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0o755); err != nil {
		t.Fatalf("creating data dir: %v", err)
	}
	store, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer func() { _ = store.Close() }()

	base := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)
	events := make([]*event.Event, n)
	for i := range events {
		city := "Berlin"
		if i%2 == 1 {
			city = "Lisbon"
		}
		events[i], err = event.New(event.Params{
			Title:    fmt.Sprintf("Event %d", i+1),
			City:     city,
			StartsAt: base.Add(time.Duration(i) * time.Hour),
			Status:   "published",
		})
		if err != nil {
			t.Fatalf("building event: %v", err)
		}
	}
	if err := store.CreateMany(context.Background(), events); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return events
}

// run executes the CLI once and returns stdout and stderr.
func run(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	t.Cleanup(func() { _ = app.Close() })

	var stdout, stderr bytes.Buffer
	app.root.SetArgs(args)
	app.root.SetOut(&stdout)
	app.root.SetErr(&stderr)
	app.root.SetIn(strings.NewReader(""))
	err := app.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, NewApp(testConfig(t)), "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(out, "marquee dev") {
		t.Errorf("output = %q", out)
	}
}

func TestList(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 12)

	out, _, err := run(t, NewApp(cfg), "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, want := range []string{"Title", "Event 1", "Event 10", "Page 1 / 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Event 11") {
		t.Errorf("second page leaked into the first:\n%s", out)
	}
}

func TestList_FilterSortPage(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 12)

	out, _, err := run(t, NewApp(cfg), "list", "-f", "city = Berlin", "--sort", "title", "--desc", "--page-size", "2", "--page", "2")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	// Berlin holds the odd events; descending by title: 9, 7 | 5, 3 | 11, 1.
	if !strings.Contains(out, "Event 5") || !strings.Contains(out, "Event 3") {
		t.Errorf("expected events 5 and 3:\n%s", out)
	}
	if strings.Contains(out, "Event 9") || strings.Contains(out, "Lisbon") {
		t.Errorf("unexpected rows:\n%s", out)
	}
	if !strings.Contains(out, "filters: city Equals Berlin") {
		t.Errorf("toolbar missing:\n%s", out)
	}
}

func TestList_ManualMode(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 6)

	out, _, err := run(t, NewApp(cfg), "list", "--mode", "manual", "-s", "Event 4")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Event 4") || strings.Contains(out, "Event 2") {
		t.Errorf("search not applied by the store:\n%s", out)
	}
}

func TestList_Empty(t *testing.T) {
	out, _, err := run(t, NewApp(testConfig(t)), "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, datatable.EmptyText) {
		t.Errorf("output missing empty text:\n%s", out)
	}
}

func TestList_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"bad filter", []string{"-f", "city"}, "want <column> <operator> <value>"},
		{"unknown column", []string{"-f", "nope = x"}, `cannot filter on "nope"`},
		{"bad operator", []string{"-f", "city % x"}, "operator"},
		{"unsortable", []string{"--sort", "nope"}, `cannot sort by "nope"`},
		{"bad mode", []string{"--mode", "cursor"}, "invalid mode"},
		{"past last page", []string{"--page", "9"}, "past the last page"},
		{"bad page", []string{"--page", "0"}, "invalid page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			seedEvents(t, cfg, 3)
			_, _, err := run(t, NewApp(cfg), append([]string{"list"}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestList_Columns(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 2)

	out, _, err := run(t, NewApp(cfg), "list", "--columns", "title")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "Event 1") || strings.Contains(out, "Berlin") {
		t.Errorf("only the title column should show:\n%s", out)
	}
}

func TestExport(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 8)

	out, stderr, err := run(t, NewApp(cfg), "export", "-f", "city = Berlin")
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	path := strings.TrimSpace(out)
	if path != filepath.Join(cfg.Table.ExportDir, "events.csv") {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(stderr, "Export complete") {
		t.Errorf("stderr missing toast: %q", stderr)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("exported %d lines, want header + 4:\n%s", len(lines), data)
	}
	if strings.Contains(string(data), "Lisbon") {
		t.Errorf("filter not applied:\n%s", data)
	}
}

func TestExport_SelectedIDs(t *testing.T) {
	cfg := testConfig(t)
	events := seedEvents(t, cfg, 4)
	out := filepath.Join(t.TempDir(), "picked")

	stdout, _, err := run(t, NewApp(cfg), "export", "--ids", events[2].ID, "--out", out)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(strings.TrimSpace(stdout))
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "Event 3") || strings.Contains(string(data), "Event 1") {
		t.Errorf("unexpected export:\n%s", data)
	}
}

func TestExport_EmptySelection(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 2)

	_, stderr, err := run(t, NewApp(cfg), "export", "--scope", "selected")
	if !errors.Is(err, datatable.ErrNoRowsToExport) {
		t.Fatalf("err = %v, want ErrNoRowsToExport", err)
	}
	if !strings.Contains(stderr, "Nothing to export") {
		t.Errorf("stderr missing warning: %q", stderr)
	}
}

func TestImport(t *testing.T) {
	cfg := testConfig(t)
	csvPath := filepath.Join(t.TempDir(), "events.csv")
	content := "title,city,starts_at,price\n" +
		"Jazz Night,Berlin,2025-06-01 20:00,25\n" +
		"Opera Brunch,Vienna,2025-06-02 11:00,\n"
	if err := os.WriteFile(csvPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	out, _, err := run(t, NewApp(cfg), "import", csvPath)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "Imported 2 events") {
		t.Errorf("output = %q", out)
	}

	listed, _, err := run(t, NewApp(cfg), "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(listed, "Jazz Night") || !strings.Contains(listed, "Opera Brunch") {
		t.Errorf("imported events not listed:\n%s", listed)
	}
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	csvPath := filepath.Join(t.TempDir(), "events.csv")
	if err := os.WriteFile(csvPath, []byte("title,starts_at\nSolo,2025-06-01 20:00\n"), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	out, _, err := run(t, NewApp(cfg), "import", "--dry-run", csvPath)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if !strings.Contains(out, "1 event read") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(cfg.Storage.DBPath); !os.IsNotExist(err) {
		t.Errorf("dry run opened the database: %v", err)
	}
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	missingCol := filepath.Join(dir, "bad.csv")
	if err := os.WriteFile(missingCol, []byte("title\nSolo\n"), 0o644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"missing file", filepath.Join(dir, "nope.csv"), "does not exist"},
		{"directory", dir, "is a directory"},
		{"missing column", missingCol, "starts_at"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, NewApp(testConfig(t)), "import", tt.path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, NewApp(cfg), "seed", "--count", "7", "--seed", "1")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "Seeded 7 events") {
		t.Errorf("output = %q", out)
	}

	store, err := db.New(cfg.Storage.DBPath)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer func() { _ = store.Close() }()
	all, err := store.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(all) != 7 {
		t.Errorf("stored %d events, want 7", len(all))
	}
}

func TestSeed_InvalidCount(t *testing.T) {
	_, _, err := run(t, NewApp(testConfig(t)), "seed", "--count", "0")
	if err == nil {
		t.Fatal("expected error for zero count")
	}
}

func TestAsk(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 6)
	app := NewApp(cfg)
	reply := `{"filters": [{"column": "city", "operator": "Equals", "value": "Lisbon"}], "sort": {"column": "startsAt", "direction": "desc"}}`
	app.newClient = func(config.LLMConfig) (llm.Client, error) { return fakeClient{reply: reply}, nil }

	out, _, err := run(t, app, "ask", "lisbon,", "latest", "first")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, "filter city Equals \"Lisbon\"") || !strings.Contains(out, "sort startsAt desc") {
		t.Errorf("suggestion not printed:\n%s", out)
	}
	if !strings.Contains(out, "Event 6") || strings.Contains(out, "Event 1 ") {
		t.Errorf("suggestion not applied:\n%s", out)
	}
	if strings.Index(out, "Event 6") > strings.Index(out, "Event 2") {
		t.Errorf("rows not sorted latest first:\n%s", out)
	}
}

func TestAsk_DryRun(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 2)
	app := NewApp(cfg)
	app.newClient = func(config.LLMConfig) (llm.Client, error) {
		return fakeClient{reply: `{"search": "jazz"}`}, nil
	}

	out, _, err := run(t, app, "ask", "--dry-run", "jazz")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, `search "jazz"`) {
		t.Errorf("suggestion not printed:\n%s", out)
	}
	if strings.Contains(out, "Event 1") {
		t.Errorf("dry run printed the table:\n%s", out)
	}
}

func TestAsk_ClientError(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 2)
	app := NewApp(cfg)
	app.newClient = func(config.LLMConfig) (llm.Client, error) { return nil, errors.New("no provider") }

	_, _, err := run(t, app, "ask", "anything")
	if err == nil || !strings.Contains(err.Error(), "no provider") {
		t.Errorf("err = %v", err)
	}
}

func TestDigest(t *testing.T) {
	cfg := testConfig(t)
	seedEvents(t, cfg, 3)
	app := NewApp(cfg)
	app.newClient = func(config.LLMConfig) (llm.Client, error) {
		return fakeClient{reply: "HEADLINE: Quiet week\n- Berlin leads with two shows"}, nil
	}

	out, _, err := run(t, app, "digest")
	if err != nil {
		t.Fatalf("digest failed: %v", err)
	}
	if !strings.Contains(out, "  Quiet week") || !strings.Contains(out, "    • Berlin leads with two shows") {
		t.Errorf("output = %q", out)
	}
}

func TestConfig_CreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	var out bytes.Buffer

	if err := runConfigInteractive(strings.NewReader("n\n"), &out, path); err != nil {
		t.Fatalf("config failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file not created: %v", err)
	}
	if !strings.Contains(out.String(), "[table]") || !strings.Contains(out.String(), "pagination         = local") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConfig_Edit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	answers := []string{
		"y",
		"manual", // pagination
		"",       // sorting
		"bogus",  // filtering, rejected
		"manual", // filtering
		"25",     // page size
	}
	in := strings.NewReader(strings.Join(answers, "\n") + "\n")
	var out bytes.Buffer

	if err := runConfigInteractive(in, &out, path); err != nil {
		t.Fatalf("config failed: %v", err)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Table.Pagination != config.ModeManual || cfg.Table.Sorting != config.ModeLocal || cfg.Table.Filtering != config.ModeManual {
		t.Errorf("modes = %+v", cfg.Table)
	}
	if cfg.Table.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.Table.PageSize)
	}
	if !strings.Contains(out.String(), `Invalid value "bogus"`) {
		t.Errorf("rejection not printed:\n%s", out.String())
	}
}
