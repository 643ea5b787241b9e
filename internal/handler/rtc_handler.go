package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
)

// RTCHandler serves WebRTC client configuration
type RTCHandler interface {
	GetICEServers(c *gin.Context)
}

type rtcHandler struct {
	iceServers []webrtc.ICEServer
}

func NewRTCHandler(iceServers []webrtc.ICEServer) RTCHandler {
	return &rtcHandler{iceServers: iceServers}
}

// GetICEServers returns the ICE servers clients should build their peer
// connections with.
// @Summary Get ICE servers
// @Tags RTC
// @Produce json
// @Router /api/rtc/ice [get]
func (h *rtcHandler) GetICEServers(c *gin.Context) {
	servers := h.iceServers
	if servers == nil {
		servers = []webrtc.ICEServer{}
	}
	c.JSON(http.StatusOK, gin.H{
		"iceServers": servers,
	})
}
