package ctxkey

import "github.com/gin-gonic/gin"

const (
	// RequestModel is the model name as requested by the client (e.g., "gpt-4o").
	// Set in: middleware.Distributor (parsed from body).
	// Invariant: never mutate this value; it must always reflect the user's original input.
	RequestModel = "request_model"

	// ModelId is the database id of the model record serving the current attempt.
	// Set in: relay/controller during the failover loop, read for logging.
	ModelId = "model_id"

	// KeyRequestBody caches the raw request body bytes for reuse (avoid double read).
	// Set in: common/gin.go GetRequestBody and UnmarshalBodyReusable.
	KeyRequestBody = gin.BodyBytesKey
)
