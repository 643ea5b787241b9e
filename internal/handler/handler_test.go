package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yashveerji/LinkedIn-B/internal/model"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStats struct {
	resp model.MonitorResponse
}

func (f fakeStats) GetStats() model.MonitorResponse { return f.resp }

func serve(t *testing.T, path string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.GET(path, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMonitorHandler_GetHubStats(t *testing.T) {
	h := NewMonitorHandler(fakeStats{resp: model.MonitorResponse{
		Status:      "healthy",
		Connections: model.ConnectionStats{TotalConnected: 3, TotalRegistered: 2},
	}})

	rec := serve(t, "/stats", h.GetHubStats)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		HttpStatusCode int
		IsSuccess      bool
		ResponseBody   model.MonitorResponse
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, body.HttpStatusCode)
	assert.True(t, body.IsSuccess)
	assert.Equal(t, "healthy", body.ResponseBody.Status)
	assert.Equal(t, 3, body.ResponseBody.Connections.TotalConnected)
	assert.Equal(t, 2, body.ResponseBody.Connections.TotalRegistered)
}

func TestRTCHandler_GetICEServers(t *testing.T) {
	h := NewRTCHandler([]webrtc.ICEServer{
		{URLs: []string{"stun:stun.example.org:3478"}},
		{URLs: []string{"turn:turn.example.org:3478"}, Username: "relay", Credential: "secret"},
	})

	rec := serve(t, "/ice", h.GetICEServers)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ICEServers []webrtc.ICEServer `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.ICEServers, 2)
	assert.Equal(t, "relay", body.ICEServers[1].Username)
	assert.Equal(t, []string{"turn:turn.example.org:3478"}, body.ICEServers[1].URLs)
}

func TestRTCHandler_NoServersIsEmptyList(t *testing.T) {
	rec := serve(t, "/ice", NewRTCHandler(nil).GetICEServers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"iceServers":[]}`, rec.Body.String())
}
