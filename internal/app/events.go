package app

// Event names for frontend communication.
const (
	EventFileOpened = "file-opened"
)
