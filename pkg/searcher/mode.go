package searcher

import (
	"fmt"
	"strings"
)

// Mode selects what a search computes
type Mode int

const (
	// ModeTopLinks ranks the window's all-time top posts by score
	ModeTopLinks Mode = iota + 1
	// ModeTopUsers ranks authors of the window's newest posts and their comments
	ModeTopUsers
)

var modeNames = map[Mode]string{
	ModeTopLinks: "top_links",
	ModeTopUsers: "top_users",
}

// Modes lists the accepted mode names
func Modes() []string {
	return []string{ModeTopLinks.String(), ModeTopUsers.String()}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode converts a mode name such as "top_links" to a Mode
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for mode, modeName := range modeNames {
		if modeName == name {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (expected one of %s)", s, strings.Join(Modes(), ", "))
}

// MarshalText lets Mode appear by name in JSON and YAML output
func (m Mode) MarshalText() ([]byte, error) {
	if _, ok := modeNames[m]; !ok {
		return nil, fmt.Errorf("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText parses a mode name
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
