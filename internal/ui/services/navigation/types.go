package navigation

// State holds all viewport-related state. Cursor and MaxIndex count rows;
// MaxIndex is -1 when there are no rows.
type State struct {
	Cursor         int
	ViewportOffset int
	ViewportHeight int
	MaxIndex       int
}
