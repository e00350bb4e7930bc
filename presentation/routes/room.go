package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kujilab/kuji/presentation/controllers/room"
)

func RoomRoutes(router *gin.RouterGroup, controller room.RoomController) {
	rooms := router.Group("/rooms")
	{
		rooms.POST("", controller.CreateRoom)
		rooms.GET("/:id", controller.GetRoom)
		rooms.GET("/:id/updates", controller.GetUpdates)

		rooms.POST("/:id/join", controller.JoinRoom)
		rooms.POST("/:id/select", controller.RunSelection)
	}
}
