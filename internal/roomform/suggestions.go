package roomform

// Suggestion is a named preset value offered by the form
type Suggestion struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ColorSuggestions are the preset room colors
func ColorSuggestions() []Suggestion {
	return []Suggestion{
		{Name: "Blue", Value: "#1976d2"},
		{Name: "Green", Value: "#388e3c"},
		{Name: "Red", Value: "#d32f2f"},
		{Name: "Orange", Value: "#f57c00"},
		{Name: "Purple", Value: "#7b1fa2"},
		{Name: "Teal", Value: "#00796b"},
		{Name: "Indigo", Value: "#303f9f"},
		{Name: "Pink", Value: "#c2185b"},
	}
}

// IconSuggestions are the preset room icons
func IconSuggestions() []Suggestion {
	return []Suggestion{
		{Name: "Gamepad", Value: "mdi-gamepad-variant"},
		{Name: "Cards", Value: "mdi-cards"},
		{Name: "Dice", Value: "mdi-dice-multiple"},
		{Name: "Chess", Value: "mdi-chess-pawn"},
		{Name: "Puzzle", Value: "mdi-puzzle"},
		{Name: "Crown", Value: "mdi-crown"},
		{Name: "Sword", Value: "mdi-sword"},
		{Name: "Star", Value: "mdi-star"},
		{Name: "Fire", Value: "mdi-fire"},
		{Name: "Lightning", Value: "mdi-lightning-bolt"},
	}
}
