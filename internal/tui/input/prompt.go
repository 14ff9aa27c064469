// Package input parses what is typed into the TUI prompt.
package input

import (
	"errors"
	"strings"
)

// ErrUnterminatedQuote is returned when a quoted argument is never closed.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// PromptCommand describes a command suggestion entry.
type PromptCommand struct {
	Name        string
	Usage       string
	Description string
}

// PromptMatchingCommands returns commands that match the current input prefix.
func PromptMatchingCommands(input string, commands []PromptCommand) []PromptCommand {
	if !strings.HasPrefix(strings.TrimSpace(input), "/") {
		return nil
	}
	if strings.Contains(input, " ") {
		return nil
	}

	prefix := strings.ToLower(strings.TrimSpace(input))
	matches := make([]PromptCommand, 0, len(commands))
	for _, cmd := range commands {
		if strings.HasPrefix(strings.ToLower(cmd.Name), prefix) {
			matches = append(matches, cmd)
		}
	}
	return matches
}

// PromptAutocomplete returns the first matching command and whether it exists.
func PromptAutocomplete(input string, commands []PromptCommand) (string, bool) {
	matches := PromptMatchingCommands(input, commands)
	if len(matches) == 0 {
		return "", false
	}
	return matches[0].Name + " ", true
}

// PromptCommandFor returns the command whose name has been typed in full,
// followed by a space.
func PromptCommandFor(input string, commands []PromptCommand) (PromptCommand, bool) {
	name, _, ok := strings.Cut(strings.TrimLeft(input, " "), " ")
	if !ok {
		return PromptCommand{}, false
	}
	for _, cmd := range commands {
		if strings.EqualFold(cmd.Name, name) {
			return cmd, true
		}
	}
	return PromptCommand{}, false
}

// Split breaks a prompt line into the lowercased command name and its
// arguments. Input that does not start with "/" has an empty name and is
// returned as one argument.
func Split(line string) (string, []string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", nil, nil
	}
	if !strings.HasPrefix(line, "/") {
		return "", []string{line}, nil
	}

	args, err := Fields(line)
	if err != nil {
		return "", nil, err
	}
	return strings.ToLower(args[0]), args[1:], nil
}

// Fields splits s on spaces and tabs. Double or single quotes group words
// into one field.
func Fields(s string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inArg   bool
	)
	for _, r := range s {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inArg = true
		case r == ' ' || r == '\t':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	if quote != 0 {
		return nil, ErrUnterminatedQuote
	}
	if inArg {
		args = append(args, current.String())
	}
	return args, nil
}
