// Package command implements the inline token sub-language the model uses to
// request game-state side effects from within narration.
//
// A command token has the literal form ☆NAME:{ARGS}☆ where NAME is an
// identifier and ARGS is any run of characters excluding '}'. The model is
// instructed via system prompt to emit these tokens inline; the relay shows
// the player only the surrounding narration and acts on the payloads.
package command

import (
	"regexp"
	"strings"
)

// tokenPattern matches one command token. ARGS cannot contain '}' and there
// is no escaping on the wire.
var tokenPattern = regexp.MustCompile(`☆([A-Za-z_][A-Za-z0-9_]*):\{([^}]*)\}☆`)

// Command is one embedded command extracted from model text.
type Command struct {
	Name    string
	RawArgs string
}

// ExtractAll scans text left to right and returns every non-overlapping
// command token in order of occurrence. RawArgs is trimmed of leading and
// trailing whitespace. Returns nil when text contains no tokens.
func ExtractAll(text string) []Command {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	commands := make([]Command, 0, len(matches))
	for _, m := range matches {
		commands = append(commands, Command{
			Name:    m[1],
			RawArgs: strings.TrimSpace(m[2]),
		})
	}
	return commands
}

// Strip returns text with every command token removed. Adjacent narration is
// concatenated as-is; tokens are not replaced with whitespace.
func Strip(text string) string {
	return tokenPattern.ReplaceAllString(text, "")
}
