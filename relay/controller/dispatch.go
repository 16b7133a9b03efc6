package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v6"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Chyrain/LLMGateway/common"
	"github.com/Chyrain/LLMGateway/common/client"
	"github.com/Chyrain/LLMGateway/common/config"
	"github.com/Chyrain/LLMGateway/common/ctxkey"
	"github.com/Chyrain/LLMGateway/common/helper"
	"github.com/Chyrain/LLMGateway/common/logger"
	"github.com/Chyrain/LLMGateway/model"
	"github.com/Chyrain/LLMGateway/monitor"
	"github.com/Chyrain/LLMGateway/relay"
	"github.com/Chyrain/LLMGateway/relay/adaptor"
	"github.com/Chyrain/LLMGateway/relay/meta"
	relaymodel "github.com/Chyrain/LLMGateway/relay/model"
)

// Dispatch relays one chat completion through the prioritized candidate
// list, failing over until a candidate succeeds. A nil return means the
// response has been written.
func Dispatch(c *gin.Context) *relaymodel.ErrorWithStatusCode {
	lg := gmw.GetLogger(c)
	ctx := c.Request.Context()

	request := &relaymodel.GeneralOpenAIRequest{}
	if err := common.UnmarshalBodyReusable(c, request); err != nil {
		return ErrorWrapper(err, ErrCodeValidationError, http.StatusBadRequest)
	}
	if len(request.Messages) == 0 {
		return openAIError(http.StatusBadRequest, ErrCodeValidationError, "messages must not be empty")
	}

	requested := request.Model
	candidates, err := model.CacheListCandidates(ctx)
	if err != nil {
		return ErrorWrapper(err, ErrCodeNoAvailableModel, http.StatusServiceUnavailable)
	}
	ordered := orderCandidates(candidates, requested)
	if len(ordered) == 0 {
		return openAIError(http.StatusServiceUnavailable, ErrCodeNoAvailableModel,
			"no enabled and reachable model can serve %q", requested)
	}

	var lastErr *attemptError
	for _, mc := range ordered {
		m := meta.FromModelConfig(mc, requested, request.Stream)
		c.Set(ctxkey.ModelId, m.ModelId)
		lg.Info("dispatching to upstream",
			zap.String("vendor", m.Vendor),
			zap.String("model", m.ModelName),
			zap.String("requested_model", requested),
			zap.Bool("stream", m.IsStream))

		if request.Stream {
			handled, usage, aerr := relayStream(c, m, request)
			if handled {
				if aerr != nil {
					logAttempt(m, nil, aerr)
					return nil
				}
				logAttempt(m, usage, nil)
				if usage != nil && usage.TotalTokens > 0 {
					recordQuota(m, usage)
				}
				return nil
			}
			lastErr = aerr
			logAttempt(m, nil, aerr)
			continue
		}

		response, aerr := relayUnary(ctx, m, request)
		if aerr != nil {
			lastErr = aerr
			logAttempt(m, nil, aerr)
			continue
		}
		logAttempt(m, &response.Usage, nil)
		recordQuota(m, &response.Usage)
		c.JSON(http.StatusOK, response)
		return nil
	}

	return allUpstreamsFailed(lastErr)
}

// isAutoModel reports whether the caller delegated model selection.
func isAutoModel(name string) bool {
	switch name {
	case "", "auto", "Auto", "AUTO":
		return true
	}
	return false
}

// orderCandidates applies the selection policy: auto mode keeps the
// priority order untouched, a concrete name moves matching records to the
// front with the rest as fallback.
func orderCandidates(candidates []*model.ModelConfig, requested string) []*model.ModelConfig {
	if isAutoModel(requested) {
		return candidates
	}
	matched := make([]*model.ModelConfig, 0, len(candidates))
	rest := make([]*model.ModelConfig, 0, len(candidates))
	for _, mc := range candidates {
		if mc.ModelName == requested {
			matched = append(matched, mc)
		} else {
			rest = append(rest, mc)
		}
	}
	return append(matched, rest...)
}

// buildUpstreamBody translates the request for one candidate and overlays
// the record's default params.
func buildUpstreamBody(m *meta.Meta, request *relaymodel.GeneralOpenAIRequest) ([]byte, adaptor.Adaptor, *attemptError) {
	a := relay.GetAdaptor(m.Spec)
	request.Model = m.ModelName
	converted, err := a.ConvertRequest(request)
	if err != nil {
		return nil, nil, newAttemptError(ErrCodeValidationError, "convert request: %s", err)
	}
	body, err := json.Marshal(converted)
	if err != nil {
		return nil, nil, newAttemptError(ErrCodeValidationError, "marshal request: %s", err)
	}
	return mergeParams(body, m.Params), a, nil
}

func relayUnary(ctx context.Context, m *meta.Meta, request *relaymodel.GeneralOpenAIRequest) (*relaymodel.TextResponse, *attemptError) {
	body, a, aerr := buildUpstreamBody(m, request)
	if aerr != nil {
		return nil, aerr
	}

	url := BuildUpstreamURL(m.BaseURL, m.APIPath)
	status, respBody, err := client.PostJSON(ctx, client.HTTPClient, url, buildHeaders(m), body, config.RelayTimeout)
	if err != nil {
		return nil, newAttemptError(ErrCodeTransportError, "%s", err)
	}
	if status != http.StatusOK {
		return nil, newAttemptError(ErrCodeUpstreamHTTPError, "status %d: %s", status, excerpt(respBody, 512))
	}

	response, err := a.ParseResponse(respBody, m.ModelName)
	if err != nil {
		return nil, newAttemptError(ErrCodeEmptyResponse, "parse response: %s", err)
	}
	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return nil, newAttemptError(ErrCodeEmptyResponse, "upstream returned no usable content")
	}
	return response, nil
}

// relayStream opens a streaming attempt. handled=false means nothing was
// committed to the caller and the next candidate may be tried; handled=true
// means the response is finished, successfully or not.
func relayStream(c *gin.Context, m *meta.Meta, request *relaymodel.GeneralOpenAIRequest) (handled bool, usage *relaymodel.Usage, aerr *attemptError) {
	body, a, aerr := buildUpstreamBody(m, request)
	if aerr != nil {
		return false, nil, aerr
	}

	// vendors without a streaming endpoint get a unary round trip rendered
	// as a single chunk
	if m.Entry.Name != "" && !m.Entry.StreamSupport {
		request.Stream = false
		response, uerr := relayUnary(c.Request.Context(), m, request)
		request.Stream = true
		if uerr != nil {
			return false, nil, uerr
		}
		writeSyntheticStream(c, response)
		return true, &response.Usage, nil
	}

	url := BuildUpstreamURL(m.BaseURL, m.APIPath)
	stream, err := client.OpenStream(c.Request.Context(), client.HTTPClient, url, buildHeaders(m), body, config.StreamTimeout)
	if err != nil {
		return false, nil, newAttemptError(ErrCodeTransportError, "%s", err)
	}
	defer stream.Close()

	setSSEHeaders(c)
	if stream.StatusCode != http.StatusOK {
		// the stream is committed; report the failure in-band and end
		_, _ = c.Writer.WriteString(`data: {"error":"request failed"}` + "\n\n")
		c.Writer.Flush()
		return true, nil, newAttemptError(ErrCodeUpstreamHTTPError, "stream open status %d", stream.StatusCode)
	}

	doneSent := false
	for stream.Next() {
		frame, ok := a.RewriteStreamChunk(stream.Line())
		if !ok {
			continue
		}
		if frame == adaptor.DoneFrame {
			doneSent = true
		}
		if _, err = c.Writer.WriteString(frame); err != nil {
			gmw.GetLogger(c).Warn("client disconnected mid-stream", zap.Error(err))
			return true, nil, nil
		}
		c.Writer.Flush()
	}
	if !doneSent {
		_, _ = c.Writer.WriteString(adaptor.DoneFrame)
		c.Writer.Flush()
	}
	return true, nil, nil
}

func setSSEHeaders(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
}

// writeSyntheticStream renders a unary response as one SSE chunk plus the
// terminator.
func writeSyntheticStream(c *gin.Context, response *relaymodel.TextResponse) {
	setSSEHeaders(c)

	var content string
	var finishReason string
	if len(response.Choices) > 0 {
		content = response.Choices[0].Message.Content
		finishReason = response.Choices[0].FinishReason
	}
	chunk := relaymodel.ChatCompletionsStreamResponse{
		Id:      response.Id,
		Object:  "chat.completion.chunk",
		Created: response.Created,
		Model:   response.Model,
		Choices: []map[string]any{{
			"index":         0,
			"delta":         map[string]any{"role": "assistant", "content": content},
			"finish_reason": finishReason,
		}},
	}
	if payload, err := json.Marshal(chunk); err == nil {
		_, _ = c.Writer.WriteString("data: " + string(payload) + "\n\n")
	}
	_, _ = c.Writer.WriteString(adaptor.DoneFrame)
	c.Writer.Flush()
}

// logAttempt emits one OperationLog row and the metrics for a single
// candidate attempt.
func logAttempt(m *meta.Meta, usage *relaymodel.Usage, aerr *attemptError) {
	elapsed := helper.CalcElapsedTime(m.StartTime)
	content := map[string]any{
		"requested_model": m.RequestedModel,
		"attempted_model": m.ModelName,
		"vendor":          m.Vendor,
		"stream":          m.IsStream,
		"elapsed_ms":      elapsed,
	}

	outcome := "success"
	logType := model.LogTypeDispatch
	status := model.LogStatusSuccess
	if aerr != nil {
		outcome = aerr.Code
		logType = model.LogTypeError
		status = model.LogStatusFailure
		content["error"] = aerr.Message
		content["code"] = aerr.Code
	} else if usage != nil {
		content["usage"] = usage
	}

	model.RecordLog(logType, m.ModelId, content, status)
	monitor.RecordDispatch(m.Vendor, outcome, time.Since(m.StartTime).Seconds())
}

// recordQuota feeds the token count into the quota tracker. Bookkeeping
// failures never fail the relay.
func recordQuota(m *meta.Meta, usage *relaymodel.Usage) {
	if usage.TotalTokens <= 0 {
		return
	}
	if err := model.AddUsedQuota(m.ModelId, usage.TotalTokens); err != nil {
		logger.Logger.Warn("failed to add used quota",
			zap.Int("model_id", m.ModelId),
			zap.Int("total_tokens", usage.TotalTokens),
			zap.Error(err))
	}
}
