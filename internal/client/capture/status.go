package capture

// Status - состояние сессии захвата SOS
type Status int

const (
	StatusIdle Status = iota
	StatusAwaitingLocation
	StatusLocationDenied
	StatusRecording
	StatusMicDenied
	StatusUploading
	StatusSubmitted
	StatusSubmitFailed
)

// String возвращает строку статуса для показа репортеру
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "Idle"
	case StatusAwaitingLocation:
		return "Requesting Location..."
	case StatusLocationDenied:
		return "Location Access Denied"
	case StatusRecording:
		return "Recording Audio..."
	case StatusMicDenied:
		return "Mic Access Denied"
	case StatusUploading:
		return "Uploading Alert..."
	case StatusSubmitted:
		return "Alert Submitted"
	case StatusSubmitFailed:
		return "Server Error"
	default:
		return "Unknown"
	}
}

// Terminal сообщает, закончилась ли сессия в этом состоянии.
// Из любого терминального состояния триггер снова взведен.
func (s Status) Terminal() bool {
	switch s {
	case StatusLocationDenied, StatusMicDenied, StatusSubmitted, StatusSubmitFailed:
		return true
	}
	return false
}
