package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	// ErrInvalidID is reported when a path id is not a 24 character hex ObjectID.
	ErrInvalidID = errors.New("invalid toy id")
	// ErrInvalidBody is reported when a request body is not a JSON object.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrBodyTooLarge is reported when a request body exceeds MaxBodyBytes.
	ErrBodyTooLarge = errors.New("request body too large")
)

// ErrorHandler turns the last error recorded with c.Error into a JSON response.
// Client errors echo their message; anything else is logged and answered with
// a generic 500 so driver details never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		switch {
		case errors.Is(err, ErrInvalidID), errors.Is(err, ErrInvalidBody):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, ErrBodyTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		default:
			log.Printf("[handlers] request_id=%s %s %s failed: %v",
				RequestIDFrom(c), c.Request.Method, c.Request.URL.Path, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "the server encountered a problem and could not process your request"})
		}
	}
}
