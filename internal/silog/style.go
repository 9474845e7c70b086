package silog

import "github.com/charmbracelet/lipgloss"

// Style controls how a [logHandler] renders levels, keys, and values.
// Every field is a [lipgloss.Style] carrying its own literal text (via
// SetString) so Render/String produce the full token, not just color
// codes.
type Style struct {
	// LevelLabels is the short label rendered before each message,
	// e.g. "INF" for [LevelInfo].
	LevelLabels ByLevel[lipgloss.Style]

	// Messages styles the message text itself, keyed by level.
	Messages ByLevel[lipgloss.Style]

	// Key styles an attribute's key.
	Key lipgloss.Style

	// Values styles individual attribute values by key. An attribute
	// whose key is absent from this map is rendered unstyled.
	Values map[string]lipgloss.Style

	// KeyValueDelimiter separates an attribute's key from its value,
	// conventionally "=".
	KeyValueDelimiter lipgloss.Style

	// PrefixDelimiter separates the logger prefix (set via
	// [Logger.WithPrefix]) from the message.
	PrefixDelimiter lipgloss.Style

	// MultilinePrefix is rendered before each continuation line of a
	// multi-line attribute value.
	MultilinePrefix lipgloss.Style
}

// DefaultStyle returns the style used when a [Logger] is built without
// an explicit [Options.Style]: short colored level labels, dimmed
// delimiters, no per-key value coloring.
func DefaultStyle() *Style {
	return &Style{
		LevelLabels: ByLevel[lipgloss.Style]{
			Debug: lipgloss.NewStyle().SetString("DBG").Foreground(lipgloss.Color("243")),
			Info:  lipgloss.NewStyle().SetString("INF").Foreground(lipgloss.Color("39")),
			Warn:  lipgloss.NewStyle().SetString("WRN").Foreground(lipgloss.Color("214")),
			Error: lipgloss.NewStyle().SetString("ERR").Foreground(lipgloss.Color("204")),
			Fatal: lipgloss.NewStyle().SetString("FTL").Foreground(lipgloss.Color("204")).Bold(true),
		},
		Messages:          ByLevel[lipgloss.Style]{},
		Key:               lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Values:            map[string]lipgloss.Style{},
		KeyValueDelimiter: lipgloss.NewStyle().SetString("="),
		PrefixDelimiter:   lipgloss.NewStyle().SetString(": ").Foreground(lipgloss.Color("243")),
		MultilinePrefix:   lipgloss.NewStyle().SetString("| ").Foreground(lipgloss.Color("243")),
	}
}

// PlainStyle returns a style with the same labels and delimiters as
// [DefaultStyle] but no color, used for non-terminal output and tests.
func PlainStyle() *Style {
	return &Style{
		LevelLabels: ByLevel[lipgloss.Style]{
			Debug: lipgloss.NewStyle().SetString("DBG"),
			Info:  lipgloss.NewStyle().SetString("INF"),
			Warn:  lipgloss.NewStyle().SetString("WRN"),
			Error: lipgloss.NewStyle().SetString("ERR"),
			Fatal: lipgloss.NewStyle().SetString("FTL"),
		},
		Messages:          ByLevel[lipgloss.Style]{},
		Key:               lipgloss.NewStyle(),
		Values:            map[string]lipgloss.Style{},
		KeyValueDelimiter: lipgloss.NewStyle().SetString("="),
		PrefixDelimiter:   lipgloss.NewStyle().SetString(": "),
		MultilinePrefix:   lipgloss.NewStyle().SetString("| "),
	}
}
