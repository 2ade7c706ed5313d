package service

// Broadcaster pushes live session events to WebSocket observers (interface
// here to avoid an import cycle with the transport layer).
type Broadcaster interface {
	BroadcastToSession(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}
