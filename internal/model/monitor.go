package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"`      // "healthy" or "idle"
	Connections ConnectionStats `json:"connections"` // Socket connection stats
	Presence    PresenceStats   `json:"presence"`    // Online user stats
	Dispatch    DispatchStats   `json:"dispatch"`    // Inbound event processing stats
	Clients     []ClientInfo    `json:"clients"`     // List of connected sockets
}

// ConnectionStats holds connection-related statistics
type ConnectionStats struct {
	TotalConnected  int `json:"totalConnected"`  // Sockets currently attached to the hub
	TotalRegistered int `json:"totalRegistered"` // Sockets that announced a user id
}

// PresenceStats summarises the presence directory
type PresenceStats struct {
	OnlineUsers   int      `json:"onlineUsers"`
	MultiDevice   int      `json:"multiDevice"` // Users with more than one live socket
	OnlineUserIDs []string `json:"onlineUserIds"`
}

// DispatchStats holds inbound event counters since start
type DispatchStats struct {
	Workers        int    `json:"workers"`
	EventsHandled  uint64 `json:"eventsHandled"`
	EventsDropped  uint64 `json:"eventsDropped"` // malformed or unknown
	EffectsFailed  uint64 `json:"effectsFailed"` // persistence side effects that errored
	EffectsPending int64  `json:"effectsPending"`
}

// ClientInfo contains information about a connected socket
type ClientInfo struct {
	ClientID    string `json:"clientId"`
	UserID      string `json:"userId,omitempty"`
	ConnectedAt string `json:"connectedAt"` // ISO timestamp
}
