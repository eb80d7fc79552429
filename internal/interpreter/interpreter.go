package interpreter

import (
	"strings"
	"unicode"

	"github.com/betnix/hearth/internal/device"
)

// Match is one resolved (device, desired state) pair.
type Match struct {
	Room string
	Type string
	On   bool
}

// Resolve interprets a free-form command against the known devices.
//
// The command is lowercased and scanned two ways:
//
//   - Polarity comes from whole word tokens: "on" or "unlock" means true,
//     "off" or "lock" means false, with the positive forms winning when
//     both appear. Token matching keeps incidental substrings ("on" inside
//     "front") from flipping a command's meaning.
//   - Device selection is by substring: every device whose room name or
//     type name appears anywhere in the command is matched. One command
//     can address many devices ("turn the lights off" hits every light).
//
// A command with no polarity token resolves to nothing regardless of any
// device mention, and devices with an empty room or type never match.
// The returned matches preserve the registry's device order.
func Resolve(command string, devices []device.Device) []Match {
	lower := strings.ToLower(command)

	on, ok := polarity(lower)
	if !ok {
		return nil
	}

	var matches []Match
	for _, d := range devices {
		if d.Room == "" || d.Type == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(d.Room)) ||
			strings.Contains(lower, strings.ToLower(d.Type)) {
			matches = append(matches, Match{Room: d.Room, Type: d.Type, On: on})
		}
	}
	return matches
}

// polarity extracts the desired state from the command's word tokens.
// The second return reports whether any polarity token was present.
func polarity(command string) (on bool, ok bool) {
	tokens := strings.FieldsFunc(command, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, token := range tokens {
		if token == "on" || token == "unlock" {
			return true, true
		}
	}
	for _, token := range tokens {
		if token == "off" || token == "lock" {
			return false, true
		}
	}
	return false, false
}
