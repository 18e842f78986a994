package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/character-votes/internal/adapters/http/dto"
	"github.com/jsamuelsen/character-votes/internal/app"
)

// BoardHandler serves the board over the JSON API.
type BoardHandler struct {
	board *app.Board
}

// NewBoardHandler creates a new board handler.
func NewBoardHandler(board *app.Board) *BoardHandler {
	return &BoardHandler{
		board: board,
	}
}

// GetBoard handles GET /api/v1/board.
// Returns the listing and selection as they stand, without asking the
// backend.
//
// @Summary Get the board
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Router /api/v1/board [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, dto.NewBoardResponse(h.board.Snapshot(), h.board.CreationEnabled(ctx)))
}

// Refresh handles POST /api/v1/board/refresh.
// Reloads the listing from the backend and selects its first character.
//
// @Summary Reload the board
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/board/refresh [post]
func (h *BoardHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()

	snap, err := h.board.Load(ctx)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewBoardResponse(snap, h.board.CreationEnabled(ctx)))
}

// SelectCurrent handles PUT /api/v1/board/current.
//
// @Summary Select a character
// @Tags board
// @Accept json
// @Produce json
// @Param request body dto.SelectRequest true "Character id"
// @Success 200 {object} dto.CharacterResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/board/current [put]
func (h *BoardHandler) SelectCurrent(c *gin.Context) {
	var req dto.SelectRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	selected, err := h.board.Select(c.Request.Context(), string(req.ID))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCharacterResponse(*selected))
}

// Vote handles POST /api/v1/board/current/votes.
// A failed backend push still returns 200; check sync.synced.
//
// @Summary Vote for the current character
// @Tags board
// @Accept json
// @Produce json
// @Param request body dto.VoteRequest true "Votes to add"
// @Success 200 {object} dto.OutcomeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/board/current/votes [post]
func (h *BoardHandler) Vote(c *gin.Context) {
	var req dto.VoteRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	outcome, err := h.board.Vote(c.Request.Context(), string(req.Votes))
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOutcomeResponse(outcome))
}

// Reset handles POST /api/v1/board/current/reset.
//
// @Summary Reset the current character's votes
// @Tags board
// @Produce json
// @Success 200 {object} dto.OutcomeResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/board/current/reset [post]
func (h *BoardHandler) Reset(c *gin.Context) {
	outcome, err := h.board.Reset(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewOutcomeResponse(outcome))
}

// CreateCharacter handles POST /api/v1/characters.
//
// @Summary Create a character
// @Tags characters
// @Accept json
// @Produce json
// @Param request body dto.CreateCharacterRequest true "New character"
// @Success 201 {object} dto.OutcomeResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/characters [post]
func (h *BoardHandler) CreateCharacter(c *gin.Context) {
	var req dto.CreateCharacterRequest
	if err := dto.BindAndValidate(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	outcome, err := h.board.Create(c.Request.Context(), req.Name, req.Image)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewOutcomeResponse(outcome))
}

// RegisterBoardRoutes registers the JSON API routes on the given group.
func (h *BoardHandler) RegisterBoardRoutes(rg *gin.RouterGroup) {
	board := rg.Group("/board")
	board.GET("", h.GetBoard)
	board.POST("/refresh", h.Refresh)
	board.PUT("/current", h.SelectCurrent)
	board.POST("/current/votes", h.Vote)
	board.POST("/current/reset", h.Reset)

	rg.POST("/characters", h.CreateCharacter)
}

// respondBindError writes a 400 for a body that could not be decoded or
// failed struct validation.
func respondBindError(c *gin.Context, err error) {
	traceID := dto.GetTraceID(c)

	if errors.Is(err, dto.ErrValidation) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithDetails(
			dto.ErrorCodeValidation,
			"request validation failed",
			dto.ValidationErrors(err),
		).WithTraceID(traceID))
		return
	}

	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.ErrorCodeBadRequest,
		"request body could not be decoded",
	).WithTraceID(traceID))
}
