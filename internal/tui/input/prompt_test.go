package input

import (
	"errors"
	"reflect"
	"testing"
)

var testCommands = []PromptCommand{
	{Name: "/filter", Usage: "<column> <operator> <value>", Description: "Filter"},
	{Name: "/find", Description: "Find"},
	{Name: "/reset", Description: "Reset"},
}

func TestPromptMatchingCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{name: "no_slash", input: "filter", want: 0},
		{name: "empty", input: "", want: 0},
		{name: "full", input: "/reset", want: 1},
		{name: "prefix", input: "/f", want: 2},
		{name: "case", input: "/FI", want: 2},
		{name: "with_space", input: "/reset x", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PromptMatchingCommands(tt.input, testCommands)
			if len(got) != tt.want {
				t.Fatalf("matches = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestPromptAutocomplete(t *testing.T) {
	value, ok := PromptAutocomplete("/r", testCommands)
	if !ok {
		t.Fatal("expected autocomplete")
	}
	if value != "/reset " {
		t.Fatalf("value = %q, want %q", value, "/reset ")
	}

	if _, ok := PromptAutocomplete("/x", testCommands); ok {
		t.Fatal("expected no autocomplete for /x")
	}
}

func TestPromptCommandFor(t *testing.T) {
	cmd, ok := PromptCommandFor("/filter ci", testCommands)
	if !ok || cmd.Name != "/filter" {
		t.Fatalf("PromptCommandFor = %+v, %v; want /filter", cmd, ok)
	}
	if _, ok := PromptCommandFor("/filter", testCommands); ok {
		t.Fatal("expected no command before the name is finished")
	}
	if _, ok := PromptCommandFor("/nope x", testCommands); ok {
		t.Fatal("expected no command for unknown name")
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantName string
		wantArgs []string
		wantErr  error
	}{
		{name: "empty", line: "  "},
		{name: "plain text", line: "jazz in berlin", wantArgs: []string{"jazz in berlin"}},
		{name: "no args", line: "/Help", wantName: "/help", wantArgs: []string{}},
		{name: "args", line: "/filter city = berlin", wantName: "/filter", wantArgs: []string{"city", "=", "berlin"}},
		{name: "double quotes", line: `/filter title contains "jazz night"`, wantName: "/filter", wantArgs: []string{"title", "contains", "jazz night"}},
		{name: "single quotes", line: `/search 'rock  fest'`, wantName: "/search", wantArgs: []string{"rock  fest"}},
		{name: "empty quotes", line: `/filter city = ""`, wantName: "/filter", wantArgs: []string{"city", "=", ""}},
		{name: "extra spaces", line: "/reset    city  ", wantName: "/reset", wantArgs: []string{"city"}},
		{name: "unterminated", line: `/search "jazz`, wantErr: ErrUnterminatedQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, args, err := Split(tt.line)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Split(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			if name != tt.wantName {
				t.Errorf("Split(%q) name = %q, want %q", tt.line, name, tt.wantName)
			}
			if tt.wantArgs != nil && !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("Split(%q) args = %q, want %q", tt.line, args, tt.wantArgs)
			}
		})
	}
}

func TestFields(t *testing.T) {
	got, err := Fields(`city = "New York"`)
	if err != nil {
		t.Fatalf("Fields() error = %v", err)
	}
	if want := []string{"city", "=", "New York"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields() = %q, want %q", got, want)
	}
	if got, _ := Fields("   "); len(got) != 0 {
		t.Fatalf("Fields(blank) = %q, want none", got)
	}
	if _, err := Fields(`title ~ 'open`); !errors.Is(err, ErrUnterminatedQuote) {
		t.Fatalf("Fields() error = %v, want ErrUnterminatedQuote", err)
	}
}
