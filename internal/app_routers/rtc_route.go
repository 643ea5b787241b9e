package approuters

import (
	"github.com/gin-gonic/gin"
	"github.com/yashveerji/LinkedIn-B/internal/configuration"
)

func RTCRouters(router *gin.Engine, container *configuration.Container) {
	rtcRoute := router.Group("/api/rtc")
	{
		rtcRoute.GET("/ice", container.RTCHandler.GetICEServers)
	}
}
