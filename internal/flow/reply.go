package flow

// Keyboard names the reply-markup layout a Reply should be rendered with.
// The machine stays transport-neutral; the bot layer maps these to actual
// inline keyboards.
type Keyboard int

const (
	// KeyboardNone sends plain text without markup.
	KeyboardNone Keyboard = iota
	// KeyboardMainMenu attaches the top-level menu.
	KeyboardMainMenu
	// KeyboardCollections attaches the two-per-row collection picker.
	KeyboardCollections
	// KeyboardBack attaches a single back-to-menu row.
	KeyboardBack
)

// Reply is the machine's transport-neutral response to one event.
type Reply struct {
	Text     string
	Keyboard Keyboard
	// PickerAction is the flow action a KeyboardCollections picker feeds.
	PickerAction string
}
