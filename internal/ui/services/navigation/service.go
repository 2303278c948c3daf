package navigation

// Service keeps a cursor row visible inside a fixed-height viewport,
// scrolling only when the cursor would leave it and then by the smallest
// amount
type Service struct {
	state *State
}

// NewService creates a viewport with no rows
func NewService() *Service {
	return &Service{
		state: &State{
			Cursor:         0,
			ViewportOffset: 0,
			ViewportHeight: 20, // Default, will be updated
			MaxIndex:       -1,
		},
	}
}

// GetViewportHeight returns current viewport height
func (s *Service) GetViewportHeight() int {
	return s.state.ViewportHeight
}

// SetViewportHeight updates viewport height and scrolls the cursor back into view
func (s *Service) SetViewportHeight(height int) {
	if height < 1 {
		height = 1
	}
	s.state.ViewportHeight = height
	s.clampOffset()
	s.ensureVisible()
}

// SetRowCount replaces the number of rows, clamping cursor and offset
func (s *Service) SetRowCount(n int) {
	s.state.MaxIndex = n - 1
	s.state.Cursor = s.clampIndex(s.state.Cursor)
	s.clampOffset()
	s.ensureVisible()
}

// Reset puts cursor and offset back at the top
func (s *Service) Reset() {
	s.state.Cursor = 0
	s.state.ViewportOffset = 0
}

// MoveToIndex moves cursor to a specific row
func (s *Service) MoveToIndex(index int) {
	s.state.Cursor = s.clampIndex(index)
	s.ensureVisible()
}

// Reveal scrolls minimally so that row is visible, without moving the cursor
func (s *Service) Reveal(row int) {
	row = s.clampIndex(row)
	s.scrollTo(row)
}

// PageSize is the number of rows a page jump moves
func (s *Service) PageSize() int {
	if s.state.ViewportHeight > 1 {
		return s.state.ViewportHeight - 1
	}
	return 1
}

// Window returns the visible row range [start, end)
func (s *Service) Window() (start, end int) {
	start = s.state.ViewportOffset
	end = start + s.state.ViewportHeight
	if end > s.state.MaxIndex+1 {
		end = s.state.MaxIndex + 1
	}
	if end < start {
		end = start
	}
	return start, end
}

// Helper methods
func (s *Service) clampIndex(index int) int {
	if index > s.state.MaxIndex {
		index = s.state.MaxIndex
	}
	if index < 0 {
		return 0
	}
	return index
}

func (s *Service) clampOffset() {
	maxOffset := s.state.MaxIndex + 1 - s.state.ViewportHeight
	if maxOffset < 0 {
		maxOffset = 0
	}
	if s.state.ViewportOffset > maxOffset {
		s.state.ViewportOffset = maxOffset
	}
	if s.state.ViewportOffset < 0 {
		s.state.ViewportOffset = 0
	}
}

func (s *Service) ensureVisible() {
	s.scrollTo(s.state.Cursor)
}

func (s *Service) scrollTo(row int) {
	if row < s.state.ViewportOffset {
		s.state.ViewportOffset = row
	} else if row >= s.state.ViewportOffset+s.state.ViewportHeight {
		s.state.ViewportOffset = row - s.state.ViewportHeight + 1
	}
}
