package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appErrors "github.com/pitcrewhq/pitcrew/pkg/errors"
	"github.com/pitcrewhq/pitcrew/pkg/response"
)

// Health returns a simple status payload useful for readiness checks. The
// database is pinged so a wedged connection pool flips the probe.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(requestContext(c))
			}
			if err != nil {
				response.Error(c, appErrors.New("UNHEALTHY", "Service unhealthy", http.StatusServiceUnavailable))
				return
			}
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	}
}
