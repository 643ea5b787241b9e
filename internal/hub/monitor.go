package hub

import (
	"sort"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	clients := ms.getClientList()
	presenceStats, registered := ms.getPresenceStats()

	connectionStats := model.ConnectionStats{
		TotalConnected:  len(clients),
		TotalRegistered: registered,
	}

	// Determine overall health status
	status := "healthy"
	if connectionStats.TotalConnected == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: connectionStats,
		Presence:    presenceStats,
		Dispatch:    ms.getDispatchStats(),
		Clients:     clients,
	}
}

func (ms *MonitorService) getPresenceStats() (model.PresenceStats, int) {
	users, sockets, multiDevice := ms.hub.directory.Stats()
	return model.PresenceStats{
		OnlineUsers:   users,
		MultiDevice:   multiDevice,
		OnlineUserIDs: ms.hub.directory.Snapshot(),
	}, sockets
}

func (ms *MonitorService) getDispatchStats() model.DispatchStats {
	return model.DispatchStats{
		Workers:        len(ms.hub.inbound),
		EventsHandled:  ms.hub.eventsHandled.Load(),
		EventsDropped:  ms.hub.eventsDropped.Load(),
		EffectsFailed:  ms.hub.effects.failed.Load(),
		EffectsPending: ms.hub.effects.pending.Load(),
	}
}

// getClientList returns every attached socket, oldest first
func (ms *MonitorService) getClientList() []model.ClientInfo {
	attached := ms.hub.allClients()
	sort.Slice(attached, func(i, j int) bool {
		return attached[i].connectedAt.Before(attached[j].connectedAt)
	})

	clients := make([]model.ClientInfo, 0, len(attached))
	for _, c := range attached {
		clients = append(clients, model.ClientInfo{
			ClientID:    c.ID,
			UserID:      c.UserID(),
			ConnectedAt: c.connectedAt.Format(time.RFC3339),
		})
	}
	return clients
}
