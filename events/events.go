package events

// Event names pushed to the client over its socket channel.
const (
	AutomationMessage  = "automation_message"
	AutomationComplete = "automation_complete"
	AutomationError    = "automation_error"
	VideoChunk         = "video_chunk"
	DisplayData        = "display_data"
)

// Emitter delivers one named event to a single subscriber channel.
// Implementations must be safe for concurrent use: relays and site flows
// for different sites emit independently.
type Emitter interface {
	Emit(event string, data any)
}

// Snapshot is the VideoChunk payload: one encoded capture of a site's page.
type Snapshot struct {
	Site  string `json:"site"`
	Image []byte `json:"image"`
}

// Display is the DisplayData payload used to show filter lists to the user.
type Display struct {
	Data any    `json:"data"`
	Type string `json:"type"`
	Text string `json:"text"`
}
