package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/apierr/errors"
	"github.com/kbukum/apierr/translate"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries cursor pagination metadata.
type Meta struct {
	EndCursor   string `json:"endCursor,omitempty"`
	HasNextPage bool   `json:"hasNextPage"`
}

// RespondWithError translates err and writes the canonical error body with
// the status recommended for its code. The code is recorded on the request
// span.
func RespondWithError(c *gin.Context, err error) {
	writeError(c, translate.Record(c.Request.Context(), err))
}

// Health answers 200 while check succeeds and the translated failure
// otherwise.
func Health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := check(c.Request.Context()); err != nil {
			RespondWithError(c, err)
			return
		}
		RespondOK(c, gin.H{"status": "ok"})
	}
}

func writeError(c *gin.Context, e apperrors.Error) {
	c.AbortWithStatusJSON(e.Code().HTTPStatus(), e.ToResponse())
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondCreated sends a 201 response wrapping data.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, DataResponse{Data: data})
}
