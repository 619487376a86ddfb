package models

// Category labels log entries. Names are unique within the set; order is display order.
type Category struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Template is a named prefill text offered when writing a new log.
type Template struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// DefaultCategories returns the built-in category list.
func DefaultCategories() []Category {
	return []Category{
		{Name: "BugFixes", Emoji: "🪲"},
		{Name: "Call and Meetings", Emoji: "👥"},
		{Name: "Deployment", Emoji: "📚"},
		{Name: "Design", Emoji: "📔"},
		{Name: "Development", Emoji: "🏠"},
		{Name: "Documentation", Emoji: "📑"},
		{Name: "Internal Support", Emoji: "📞"},
		{Name: "Network Support", Emoji: "🛜"},
		{Name: "Project Planning", Emoji: "🏵️"},
		{Name: "QA", Emoji: "👾"},
		{Name: "Requirement Gathering", Emoji: "🔍"},
		{Name: "Research", Emoji: "🔎"},
		{Name: "Review", Emoji: "✅"},
		{Name: "Technical Architecture", Emoji: "🏫"},
		{Name: "Test Case Writing", Emoji: "📃"},
		{Name: "Training", Emoji: "🧑‍🎓"},
	}
}

// DefaultTemplates returns the built-in template list.
func DefaultTemplates() []Template {
	return []Template{
		{Name: "Dev", Text: "Development work on "},
		{Name: "Meeting", Text: "Meeting about "},
		{Name: "Learning", Text: "Learned about "},
	}
}

// FindCategory returns the index of the category with the given name, or -1.
func FindCategory(categories []Category, name string) int {
	for i, c := range categories {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// FindTemplate returns the index of the template with the given name, or -1.
func FindTemplate(templates []Template, name string) int {
	for i, t := range templates {
		if t.Name == name {
			return i
		}
	}
	return -1
}
