package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockbook/internal/core/entity"
	"stockbook/internal/core/id"
	"stockbook/internal/domain/movements"
	"stockbook/internal/infrastructure/http/v1/dto"
)

// MovementHandler handles the movement ledger endpoints. Posting goes
// through the engine; there is no update or delete, the ledger is
// append-only.
type MovementHandler struct {
	*BaseHandler
	engine *movements.Engine
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, engine *movements.Engine) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		engine:      engine,
	}
}

// PostInbound handles POST /movements/inbound
func (h *MovementHandler) PostInbound(c *gin.Context) {
	h.post(c, h.engine.PostInbound)
}

// PostOutbound handles POST /movements/outbound
func (h *MovementHandler) PostOutbound(c *gin.Context) {
	h.post(c, h.engine.PostOutbound)
}

func (h *MovementHandler) post(c *gin.Context, post func(context.Context, movements.PostRequest) (*entity.Movement, error)) {
	ctx := c.Request.Context()

	var req dto.PostMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	postReq, err := req.ToPostRequest()
	if err != nil {
		h.Error(c, err)
		return
	}

	movement, err := post(ctx, postReq)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromMovement(movement)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// List handles GET /movements - ledger listing with filters.
func (h *MovementHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.MovementListQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.engine.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.MovementResponse, len(result.Items))
	for i, m := range result.Items {
		items[i] = dto.FromMovement(m)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Get handles GET /movements/:id. The path parameter is a movement ID, with
// a document number fallback so operators can paste RK/CK numbers directly.
func (h *MovementHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	param := c.Param("id")

	var (
		movement *entity.Movement
		err      error
	)
	if movementID, parseErr := id.Parse(param); parseErr == nil {
		movement, err = h.engine.GetByID(ctx, movementID)
	} else {
		movement, err = h.engine.GetByNumber(ctx, param)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMovement(movement))
}

// RegisterRoutes registers movement routes.
func (h *MovementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/inbound", h.PostInbound)
	rg.POST("/outbound", h.PostOutbound)
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}
