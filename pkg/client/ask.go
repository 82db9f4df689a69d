package client

import (
	"context"
	"net/http"

	"github.com/papercomputeco/devassist/pkg/chatstream"
)

// Ask posts a question and consumes the streamed answer, calling onUpdate
// with the accumulated text as fragments arrive.
//
// Failures to reach the backend are returned as chatstream transport
// failures; a non-2xx status is returned as an *APIError. The response body
// is closed on every path.
func (c *Client) Ask(ctx context.Context, req AskRequest, onUpdate chatstream.UpdateFunc) (string, error) {
	if req.ChatHistory == nil {
		req.ChatHistory = []HistoryMessage{}
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, "/api/ask", req)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", chatstream.NewTransportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newAPIError(resp)
	}

	c.logger.Debug("streaming answer",
		"question_bytes", len(req.Question),
		"history", len(req.ChatHistory),
	)

	return c.assembler.Consume(ctx, resp.Body, onUpdate)
}
