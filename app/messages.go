package app

// Messages for viewer updates

// searchUpdatedMsg signals that the search session changed state (new
// matches, navigation, searching flag). Sent from the session's update
// callback, possibly off the UI loop. sessionID names the originating
// session; updates from a disposed session are dropped on arrival.
type searchUpdatedMsg struct {
	sessionID string
}

// documentChangedMsg signals that the underlying file was modified and the
// document should be reloaded with a fresh session.
type documentChangedMsg struct{}

// memUsageMsg carries the periodically sampled resource usage line.
type memUsageMsg struct {
	Text string
}
