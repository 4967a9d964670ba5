package tui

// debounceMsg fires once the input has been quiet for the debounce delay.
// Only the message carrying the latest seq starts a fetch.
type debounceMsg struct {
	seq   int
	query string
}

// resultMsg is sent when a network fetch settled.
type resultMsg struct {
	query string
	err   error
}

// beaconMsg reports a fired impression pixel.
type beaconMsg struct {
	url string
	err error
}
