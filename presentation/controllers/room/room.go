package room

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	roomUseCase "github.com/kujilab/kuji/application/usecases/room"
	"github.com/kujilab/kuji/domain/model"
)

type RoomController interface {
	CreateRoom(ctx *gin.Context)
	GetRoom(ctx *gin.Context)
	JoinRoom(ctx *gin.Context)
	RunSelection(ctx *gin.Context)
	GetUpdates(ctx *gin.Context)
}

type roomController struct {
	usecase roomUseCase.RoomUseCase
}

func NewRoomController(usecase roomUseCase.RoomUseCase) RoomController {
	return &roomController{
		usecase: usecase,
	}
}

func (c *roomController) CreateRoom(ctx *gin.Context) {
	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	room, ownerToken, err := c.usecase.Create(ctx.Request.Context(), req.OwnerName)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "creation_failed",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, CreateRoomResponse{
		RoomID:     room.ID,
		OwnerToken: ownerToken,
	})
}

func (c *roomController) GetRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")

	room, err := c.usecase.GetByID(ctx.Request.Context(), roomID)
	if err != nil {
		writeUseCaseError(ctx, err)
		return
	}

	members := room.MemberList()
	resp := RoomResponse{
		ID:        room.ID,
		OwnerName: room.OwnerName,
		CreatedAt: room.CreatedAt,
		Members:   make([]NameEntry, 0, len(members)),
	}
	for _, m := range members {
		resp.Members = append(resp.Members, NameEntry{Name: m.Name})
	}

	ctx.JSON(http.StatusOK, resp)
}

func (c *roomController) JoinRoom(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var req JoinRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	participant, err := c.usecase.Join(ctx.Request.Context(), roomID, req.Name)
	if err != nil {
		writeUseCaseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, JoinRoomResponse{
		ParticipantToken: participant.Token,
	})
}

func (c *roomController) RunSelection(ctx *gin.Context) {
	roomID := ctx.Param("id")

	var req RunSelectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	token := callerToken(ctx, req.OwnerToken)

	result, err := c.usecase.RunSelection(ctx.Request.Context(), roomID, req.Count, token)
	if err != nil {
		writeUseCaseError(ctx, err)
		return
	}

	resp := SelectionResponse{
		Selected: make([]NameEntry, 0, len(result.SelectedNames)),
		Count:    result.RequestedCount,
	}
	for _, name := range result.SelectedNames {
		resp.Selected = append(resp.Selected, NameEntry{Name: name})
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetUpdates is the poll endpoint: an idempotent full snapshot, identical in
// shape to what push clients reconstruct, safe at any call rate.
func (c *roomController) GetUpdates(ctx *gin.Context) {
	roomID := ctx.Param("id")

	snap, err := c.usecase.GetSnapshot(ctx.Request.Context(), roomID)
	if err != nil {
		writeUseCaseError(ctx, err)
		return
	}

	resp := SnapshotResponse{
		Participants: make([]NameEntry, 0, len(snap.Participants)),
	}
	for _, name := range snap.Participants {
		resp.Participants = append(resp.Participants, NameEntry{Name: name})
	}
	if snap.Selection != nil {
		view := &SelectionView{
			Count:      snap.Selection.RequestedCount,
			SelectedAt: snap.Selection.SelectedAt,
			Selected:   make([]NameEntry, 0, len(snap.Selection.SelectedNames)),
		}
		for _, name := range snap.Selection.SelectedNames {
			view.Selected = append(view.Selected, NameEntry{Name: name})
		}
		resp.Selection = view
	}

	ctx.JSON(http.StatusOK, resp)
}

// callerToken pulls the bearer secret from the Authorization header, the
// X-Owner-Token header, or the request body, in that order. The transport
// is opaque; only possession matters.
func callerToken(ctx *gin.Context, bodyToken string) string {
	if h := ctx.GetHeader("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tok
		}
	}
	if h := ctx.GetHeader("X-Owner-Token"); h != "" {
		return h
	}
	return bodyToken
}

func writeUseCaseError(ctx *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "room not found",
		})
	case errors.Is(err, model.ErrForbidden):
		ctx.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "owner token required",
		})
	case errors.As(err, &verr):
		ctx.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation_failed",
			Message: verr.Message,
			Reason:  verr.Reason,
		})
	default:
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}
