package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"cafefinder/model"
	"cafefinder/search"
	"cafefinder/validation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const listPath = "/cafes"

// CafeRepository is the record store as seen by the handlers.
type CafeRepository interface {
	Create(ctx context.Context, entry model.CafeEntry) (model.CafeEntry, error)
	Get(ctx context.Context, id uint) (*model.CafeEntry, error)
	Update(ctx context.Context, id uint, patch model.EntryPatch) (model.CafeEntry, error)
	Delete(ctx context.Context, id uint) (bool, error)
	ListAll(ctx context.Context) ([]model.CafeEntry, error)
	Ping(ctx context.Context) error
}

type CafeController struct {
	Store     CafeRepository
	Search    *search.Engine
	Validator *validation.Validator
	Logger    *zap.Logger
}

func NewCafeController(store CafeRepository, engine *search.Engine, v *validation.Validator, logger *zap.Logger) *CafeController {
	return &CafeController{
		Store:     store,
		Search:    engine,
		Validator: v,
		Logger:    logger,
	}
}

// ListCafes returns the whole directory. The listing always starts locked;
// editing needs a fresh pass through the access gate.
func (ctl *CafeController) ListCafes(c *gin.Context) {
	cafes, err := ctl.Store.ListAll(c.Request.Context())
	if err != nil {
		ctl.internalError(c, "Failed to fetch cafes", err)
		return
	}
	if cafes == nil {
		cafes = []model.CafeEntry{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Fetched cafes successfully",
		"locked":  true,
		"data":    cafes,
	})
}

func (ctl *CafeController) AddCafe(c *gin.Context) {
	var form validation.NewEntryForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	entry, err := ctl.Validator.ValidateNew(form)
	if err != nil {
		ctl.validationError(c, err)
		return
	}

	created, err := ctl.Store.Create(c.Request.Context(), entry)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrDuplicateName):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error":   fmt.Sprintf("A place named %q is already listed", entry.Name),
				"field":   "name",
				"code":    "duplicate_name",
			})
		case errors.Is(err, model.ErrMissingField), errors.Is(err, model.ErrInvalidValue):
			ctl.validationError(c, err)
		default:
			ctl.internalError(c, "Failed to add cafe", err)
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "New place added. Thank you!",
		"data":    created,
	})
}

// GetCafe backs the edit form: form=false tells the client not to show one.
func (ctl *CafeController) GetCafe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	cafe, err := ctl.Store.Get(c.Request.Context(), id)
	if err != nil {
		ctl.internalError(c, "Failed to fetch cafe", err)
		return
	}
	if cafe == nil {
		placeNotFound(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Update info for %q", cafe.Name),
		"form":    true,
		"data":    cafe,
	})
}

func (ctl *CafeController) UpdateCafe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var form validation.UpdateEntryForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body",
		})
		return
	}

	// unknown ids are reported before any validation error
	existing, err := ctl.Store.Get(c.Request.Context(), id)
	if err != nil {
		ctl.internalError(c, "Failed to fetch cafe", err)
		return
	}
	if existing == nil {
		placeNotFound(c)
		return
	}

	patch, err := ctl.Validator.ValidateUpdate(form)
	if err != nil {
		ctl.validationError(c, err)
		return
	}

	updated, err := ctl.Store.Update(c.Request.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNotFound):
			placeNotFound(c)
		case errors.Is(err, model.ErrInvalidValue):
			ctl.validationError(c, err)
		default:
			ctl.internalError(c, "Failed to update cafe", err)
		}
		return
	}

	c.Header("Location", listPath)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Cafe updated successfully",
		"data":    updated,
	})
}

// DeleteCafe succeeds whether or not the cafe existed.
func (ctl *CafeController) DeleteCafe(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := ctl.Store.Delete(c.Request.Context(), id)
	if err != nil {
		ctl.internalError(c, "Failed to delete cafe", err)
		return
	}
	if deleted {
		ctl.Logger.Info("cafe deleted", zap.Uint("cafe_id", id))
	}

	c.Header("Location", listPath)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
		"data":    gin.H{"cafe_id": id},
	})
}

// SearchCafes serves both /search/:location and /search?location=.
func (ctl *CafeController) SearchCafes(c *gin.Context) {
	location := c.Param("location")
	if location == "" {
		location = c.Query("location")
	}

	res, err := ctl.Search.Search(c.Request.Context(), location)
	if err != nil {
		if errors.Is(err, model.ErrMissingField) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "Enter a city or zip code",
				"field":   "location",
				"code":    "missing_field",
			})
			return
		}
		ctl.internalError(c, "Failed to search cafes", err)
		return
	}

	if !res.Found {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   res.Message,
			"data":    []model.CafeEntry{},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": res.Message,
		"data":    res.Entries,
	})
}

func (ctl *CafeController) Health(c *gin.Context) {
	if err := ctl.Store.Ping(c.Request.Context()); err != nil {
		ctl.Logger.Error("database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid cafe ID format",
		})
		return 0, false
	}
	return uint(id), true
}

func placeNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   "Sorry, the place wasn't found.",
		"form":    false,
	})
}

func (ctl *CafeController) validationError(c *gin.Context, err error) {
	code := "invalid_value"
	if errors.Is(err, model.ErrMissingField) {
		code = "missing_field"
	}
	body := gin.H{
		"success": false,
		"error":   err.Error(),
		"code":    code,
	}
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		body["field"] = fe.Field
	}
	c.JSON(http.StatusBadRequest, body)
}

// internalError hides store failures from the client but keeps them in the log.
func (ctl *CafeController) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	ctl.Logger.Error(msg, zap.Error(err), zap.String("path", c.Request.URL.Path))
	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   msg,
	})
}
