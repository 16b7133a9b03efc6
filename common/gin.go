package common

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common/ctxkey"
)

// GetRequestBody reads the request body once and caches it on the context so
// middleware and handlers can both consume it.
func GetRequestBody(c *gin.Context) ([]byte, error) {
	if body, ok := c.Get(ctxkey.KeyRequestBody); ok {
		return body.([]byte), nil
	}
	requestBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}
	_ = c.Request.Body.Close()
	c.Set(ctxkey.KeyRequestBody, requestBody)
	return requestBody, nil
}

// UnmarshalBodyReusable unmarshals the request body into v and restores the
// body so downstream handlers can read it again.
func UnmarshalBodyReusable(c *gin.Context, v any) error {
	requestBody, err := GetRequestBody(c)
	if err != nil {
		return err
	}
	if err = json.Unmarshal(requestBody, v); err != nil {
		return errors.Wrap(err, "unmarshal request body")
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
	return nil
}
