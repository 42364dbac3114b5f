package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/toystacks/toy-server/config"
	"github.com/toystacks/toy-server/models"
)

// healthTimeout bounds the database ping of the health check.
const healthTimeout = 2 * time.Second

// MaxBodyBytes caps JSON request bodies at 100kb.
const MaxBodyBytes = 100 << 10

// ToyStore is the storage the handlers need. *database.Store implements it.
type ToyStore interface {
	FindToys(ctx context.Context, q models.ToyQuery) ([]bson.M, error)
	FindToyByID(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	InsertToy(ctx context.Context, doc bson.M) (models.InsertAck, error)
	UpdateToy(ctx context.Context, id primitive.ObjectID, fields bson.M) (models.UpdateAck, error)
	DeleteToy(ctx context.Context, id primitive.ObjectID) (models.DeleteAck, error)
	Ping(ctx context.Context) error
}

// ToyHandler serves the toy routes on top of a ToyStore.
type ToyHandler struct {
	store ToyStore
	cfg   *config.Config
}

// NewToyHandler wires the handlers to store. Limits, allow-list and the
// per-operation timeout come from cfg.
func NewToyHandler(store ToyStore, cfg *config.Config) *ToyHandler {
	return &ToyHandler{store: store, cfg: cfg}
}

// dbContext derives the context for one database operation from the request.
func (h *ToyHandler) dbContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.cfg.DBTimeout)
}

// Root godoc
// @Summary Liveness message
// @Produce plain
// @Success 200 {string} string "Toy server is running"
// @Router / [get]
func (h *ToyHandler) Root(c *gin.Context) {
	c.String(http.StatusOK, "Toy server is running")
}

// Health pings the database.
func (h *ToyHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "DOWN", "details": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

// SearchByName godoc
// @Summary Search toys by name
// @Description Case-insensitive substring match on toyName
// @Tags toys
// @Produce json
// @Param text path string true "Text to look for"
// @Success 200 {array} models.Toy
// @Router /getToysByName/{text} [get]
func (h *ToyHandler) SearchByName(c *gin.Context) {
	h.findToys(c, models.ToyQuery{NameContains: c.Param("text")})
}

// UploadToy godoc
// @Summary Create a toy
// @Description Stores the JSON body as a new toy document, as-is
// @Tags toys
// @Accept json
// @Produce json
// @Param toy body models.Toy true "Toy document"
// @Success 201 {object} models.InsertAck
// @Failure 400 {object} map[string]string "Body is not a JSON object"
// @Failure 413 {object} map[string]string "Body over 100kb"
// @Router /upload-toy [post]
func (h *ToyHandler) UploadToy(c *gin.Context) {
	doc, err := readDocument(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()

	ack, err := h.store.InsertToy(ctx, doc)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ack)
}

// ListToys godoc
// @Summary List toys
// @Description Returns the first toys in storage order, up to the configured limit (20)
// @Tags toys
// @Produce json
// @Success 200 {array} models.Toy
// @Router /all-toys [get]
func (h *ToyHandler) ListToys(c *gin.Context) {
	h.findToys(c, models.ToyQuery{Limit: h.cfg.AllToysLimit})
}

// GetToy godoc
// @Summary Get one toy
// @Tags toys
// @Produce json
// @Param id path string true "Toy ObjectID"
// @Success 200 {object} models.Toy "The toy, or null when it does not exist"
// @Failure 400 {object} map[string]string "Malformed id"
// @Router /all-toys/{id} [get]
func (h *ToyHandler) GetToy(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()

	toy, err := h.store.FindToyByID(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, toy)
}

// ToysByCategory godoc
// @Summary List toys of a sub category
// @Description Filters on subCategory when it is in the allow-list, otherwise returns unfiltered toys. Capped at the category limit (2).
// @Tags toys
// @Produce json
// @Param sub_category path string true "Sub category"
// @Success 200 {array} models.Toy
// @Router /toys_by_category/{sub_category} [get]
func (h *ToyHandler) ToysByCategory(c *gin.Context) {
	q := models.ToyQuery{Limit: h.cfg.CategoryLimit}
	if category := c.Param("sub_category"); h.cfg.IsAllowedCategory(category) {
		q.SubCategory = category
	}
	h.findToys(c, q)
}

// ToysByEmail godoc
// @Summary List toys of a seller
// @Tags toys
// @Produce json
// @Param sellerEmail query string false "Seller email, all toys when absent"
// @Success 200 {array} models.Toy
// @Router /toys-by-email [get]
func (h *ToyHandler) ToysByEmail(c *gin.Context) {
	h.findToys(c, models.ToyQuery{SellerEmail: c.Query("sellerEmail")})
}

// ToysByEmailDesc godoc
// @Summary List toys of a seller, most expensive first
// @Tags toys
// @Produce json
// @Param sellerEmail query string false "Seller email, all toys when absent"
// @Success 200 {array} models.Toy
// @Router /toys-by-email-desc [get]
func (h *ToyHandler) ToysByEmailDesc(c *gin.Context) {
	h.findToys(c, models.ToyQuery{SellerEmail: c.Query("sellerEmail"), PriceSort: models.PriceDescending})
}

// ToysByEmailAsc godoc
// @Summary List toys of a seller, cheapest first
// @Tags toys
// @Produce json
// @Param sellerEmail query string false "Seller email, all toys when absent"
// @Success 200 {array} models.Toy
// @Router /toys-by-email-asc [get]
func (h *ToyHandler) ToysByEmailAsc(c *gin.Context) {
	h.findToys(c, models.ToyQuery{SellerEmail: c.Query("sellerEmail"), PriceSort: models.PriceAscending})
}

// UpdateToy godoc
// @Summary Update a toy
// @Description Overwrites photo, toyName, sellerName, sellerEmail, subCategory, price, rating, quantity and description. Omitted fields become null.
// @Tags toys
// @Accept json
// @Produce json
// @Param id path string true "Toy ObjectID"
// @Param toy body models.Toy true "New values"
// @Success 200 {object} models.UpdateAck
// @Failure 400 {object} map[string]string "Malformed id or body"
// @Failure 413 {object} map[string]string "Body over 100kb"
// @Router /update-toy/{id} [patch]
func (h *ToyHandler) UpdateToy(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	body, err := readDocument(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()

	ack, err := h.store.UpdateToy(ctx, id, body)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

// DeleteToy godoc
// @Summary Delete a toy
// @Tags toys
// @Produce json
// @Param id path string true "Toy ObjectID"
// @Success 200 {object} models.DeleteAck "deletedCount is 0 when nothing matched"
// @Failure 400 {object} map[string]string "Malformed id"
// @Router /delete-toy/{id} [delete]
func (h *ToyHandler) DeleteToy(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	ctx, cancel := h.dbContext(c)
	defer cancel()

	ack, err := h.store.DeleteToy(ctx, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ack)
}

func (h *ToyHandler) findToys(c *gin.Context, q models.ToyQuery) {
	ctx, cancel := h.dbContext(c)
	defer cancel()

	toys, err := h.store.FindToys(ctx, q)
	if err != nil {
		_ = c.Error(err)
		return
	}
	// Return empty array instead of null if no toys found
	if toys == nil {
		toys = []bson.M{}
	}
	c.JSON(http.StatusOK, toys)
}

func parseID(c *gin.Context) (primitive.ObjectID, error) {
	raw := c.Param("id")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// readDocument decodes the body as a JSON object. An empty body or a JSON null
// yields an empty document.
func readDocument(c *gin.Context) (bson.M, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	doc := bson.M{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	if err := binding.JSON.BindBody(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if doc == nil {
		doc = bson.M{}
	}
	return doc, nil
}
