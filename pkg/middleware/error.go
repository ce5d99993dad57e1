package middleware

import (
	"net/http"

	"trustfund-backend/pkg/errutil"

	"github.com/gin-gonic/gin"
)

func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		err := c.Errors.Last()
		if err == nil {
			return
		}

		if v, ok := err.Err.(errutil.BaseError); ok {
			c.JSON(v.Code.HTTPStatus(), gin.H{"success": false, "message": v.Message, "error": v})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
	}
}
