package health

import (
	"net/http"
	"telecom-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// Check godoc
// @Summary      Health check
// @Description  Report whether the service is up.
// @Tags         health
// @Produce      json
// @Success      200 {object} utils.Response
// @Router       /health [get]
func Check(c *gin.Context) {
	c.JSON(http.StatusOK, utils.NewSuccessResponse("Service is up and running", nil))
}
