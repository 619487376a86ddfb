package models

// State holds the four persisted aggregates. Each one is replaced wholesale on write.
type State struct {
	Logs       []LogEntry
	Categories []Category
	Templates  []Template
	Settings   Settings
}

// EmptyState returns a state with empty collections and default settings.
func EmptyState() State {
	return State{
		Logs:       []LogEntry{},
		Categories: []Category{},
		Templates:  []Template{},
		Settings:   DefaultSettings(),
	}
}
