package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/model"
)

// ListLogs serves GET /api/log/ with log_type, p (page) and page_size
// query parameters. Pages count from zero.
func ListLogs(c *gin.Context) {
	logType, _ := strconv.Atoi(c.Query("log_type"))
	page, _ := strconv.Atoi(c.Query("p"))
	if page < 0 {
		page = 0
	}
	pageSize, _ := strconv.Atoi(c.Query("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	logs, err := model.ListLogs(logType, page*pageSize, pageSize)
	if err != nil {
		respondError(c, err.Error())
		return
	}
	respondOK(c, logs)
}
