package ui

// outcomeReadyMsg is sent when the search runner has an outcome to poll
type outcomeReadyMsg struct{}

// previewMsg carries the rendered preview of the selected match
type previewMsg struct {
	content string
	err     error
}

// pagerDoneMsg is sent when the pager returns control to the UI
type pagerDoneMsg struct {
	err error
}
