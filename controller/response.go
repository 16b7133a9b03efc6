package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiResponse is the management API envelope. code 0 means success; the
// HTTP status stays 200 so clients branch on code alone.
type apiResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Code: 0, Msg: "success", Data: data})
}

func respondError(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, apiResponse{Code: -1, Msg: msg})
}
