package sous

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	UserMsg int // User message prefix
	Reply   int // Reply prefix and code spans
	Error   int // Failure messages
	Success int // Completed-turn statistics
	Muted   int // Status bar, placeholders, code gutters
	Accent  int // Headings, welcome title, spinner
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Reply:   3,
		Error:   1,
		Success: 2,
		Muted:   8,
		Accent:  5,
	}
}
