package websocket

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kujilab/kuji/application/usecases/auth"
	roomUseCase "github.com/kujilab/kuji/application/usecases/room"
	"github.com/kujilab/kuji/domain/model"
	"github.com/kujilab/kuji/infrastructure/logger"
	"github.com/kujilab/kuji/infrastructure/metrics"
	ws "github.com/kujilab/kuji/infrastructure/websocket"
	"go.uber.org/zap"
)

type WebSocketController interface {
	HandleConnection(ctx *gin.Context)
}

type webSocketController struct {
	roomUseCase roomUseCase.RoomUseCase
	registry    *ws.TopicRegistry
	core        *ws.Core
	logger      *logger.Logger
}

func NewWebSocketController(
	rooms roomUseCase.RoomUseCase,
	registry *ws.TopicRegistry,
	core *ws.Core,
	log *logger.Logger,
) WebSocketController {
	return &webSocketController{
		roomUseCase: rooms,
		registry:    registry,
		core:        core,
		logger:      log,
	}
}

// HandleConnection upgrades a caller onto its room topic. The new
// subscriber immediately receives the current membership and, when one
// exists, a replay of the latest draw, so its first render is complete
// before any live event arrives.
func (c *webSocketController) HandleConnection(ctx *gin.Context) {
	roomID := ctx.Param("id")

	room, err := c.roomUseCase.GetByID(ctx.Request.Context(), roomID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrRoomNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, gin.H{
			"error":   "room_error",
			"message": err.Error(),
		})
		return
	}

	token := subscriberToken(ctx)
	if _, ok := auth.ResolveAny(room, token); !ok {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "forbidden",
			"message": "a room token is required to subscribe",
		})
		return
	}

	conn, err := c.registry.Upgrade(ctx.Writer, ctx.Request)
	if err != nil {
		c.logger.Warn("websocket upgrade failed",
			zap.String("roomID", roomID),
			zap.Error(err),
		)
		return
	}

	client := ws.NewClient(conn, uuid.NewString(), ws.TopicForRoom(roomID), c.logger)
	c.core.Register() <- client

	metrics.ActiveSubscribers.Inc()
	go func() {
		<-client.Done()
		metrics.ActiveSubscribers.Dec()
	}()

	c.sendInitialState(ctx, roomID, client)

	go client.WritePump()
	go client.ReadPump(c.core)
}

func (c *webSocketController) sendInitialState(ctx *gin.Context, roomID string, client *ws.Client) {
	snap, err := c.roomUseCase.GetSnapshot(ctx.Request.Context(), roomID)
	if err != nil {
		c.logger.Warn("could not load snapshot for new subscriber",
			zap.String("roomID", roomID),
			zap.Error(err),
		)
		return
	}

	client.Send(ws.NewParticipantsEvent(roomID, snap.Participants))
	if snap.Selection != nil {
		client.Send(ws.NewSelectionEvent(roomID, snap.Selection.SelectedNames, snap.Selection.RequestedCount))
	}
}

// subscriberToken accepts the secret from a query param (browser websocket
// clients cannot set headers) or the same headers the command surface uses.
func subscriberToken(ctx *gin.Context) string {
	if tok := ctx.Query("token"); tok != "" {
		return tok
	}
	if tok := ctx.GetHeader("X-Owner-Token"); tok != "" {
		return tok
	}
	return ctx.GetHeader("X-Participant-Token")
}
