package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/reconcile"
	"github.com/portfolio-content-api/internal/service"
	"github.com/rs/zerolog"
)

// CollectionHandler serves the CRUD endpoints of one collection
type CollectionHandler[T models.Record] struct {
	collection models.Collection
	svc        service.CollectionService[T]
	set        reconcile.FieldSetter[T]
	log        zerolog.Logger
}

// NewCollectionHandler creates a handler for collection
func NewCollectionHandler[T models.Record](collection models.Collection, svc service.CollectionService[T], set reconcile.FieldSetter[T], log zerolog.Logger) *CollectionHandler[T] {
	return &CollectionHandler[T]{
		collection: collection,
		svc:        svc,
		set:        set,
		log:        log.With().Str("handler", "collection").Str("collection", string(collection)).Logger(),
	}
}

// registerCollection mounts the collection routes on g. Writes require admin.
func registerCollection[T models.Record](g *gin.RouterGroup, admin gin.HandlerFunc, collection models.Collection, svc service.CollectionService[T], set reconcile.FieldSetter[T], log zerolog.Logger) *gin.RouterGroup {
	h := NewCollectionHandler(collection, svc, set, log)
	g.GET("", h.List)
	g.POST("", admin, h.Create)
	g.PUT("/:id", admin, h.Update)
	g.PATCH("/:id", admin, h.Patch)
	g.DELETE("/:id", admin, h.Delete)
	return g
}

// List handles GET /api/{collection}
func (h *CollectionHandler[T]) List(c *gin.Context) {
	records, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list records")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Create handles POST /api/{collection}
func (h *CollectionHandler[T]) Create(c *gin.Context) {
	var draft T
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.svc.Create(c.Request.Context(), draft)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create record")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update handles PUT /api/{collection}/:id
func (h *CollectionHandler[T]) Update(c *gin.Context) {
	id := c.Param("id")

	var draft T
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.svc.Update(c.Request.Context(), id, draft)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to update record")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type patchRequest struct {
	Fields   map[string]string `json:"fields" binding:"required"`
	Revision int               `json:"revision"`
}

// Patch handles PATCH /api/{collection}/:id. The stored record is opened in
// an edit form, each field goes through the form reducer, and the result
// is saved.
func (h *CollectionHandler[T]) Patch(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	var req patchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	rec, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	var blank T
	state, err := reconcile.Reduce(reconcile.FormState[T]{}, reconcile.Action[T]{Kind: reconcile.ActionBeginEdit, Record: rec}, h.set, blank)
	if err != nil {
		respondError(c, err)
		return
	}
	if req.Revision > 0 {
		req.Fields["revision"] = strconv.Itoa(req.Revision)
	}
	if state, err = reconcile.ApplyFields(state, req.Fields, h.set, blank); err != nil {
		respondError(c, err)
		return
	}

	form := state.Active()
	updated, err := h.svc.Update(ctx, form.ID, form.Draft)
	if err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to patch record")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/{collection}/:id
func (h *CollectionHandler[T]) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Str("id", id).Msg("Failed to delete record")
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DeleteResponse{Success: true})
}
