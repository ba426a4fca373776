// Package handler provides HTTP handlers for the API.
// Handlers attach failures with c.Error and leave the response to middleware.ErrorHandler.
package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verustcode/reportforge/consts"
	"github.com/verustcode/reportforge/internal/jsonvalue"
	"github.com/verustcode/reportforge/pkg/errors"
)

// abortWithError records err for the error middleware and stops the chain
func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// readPayload reads the request body as an order-preserving JSON value.
// It returns the raw bytes too, so the payload can be archived as received.
func readPayload(c *gin.Context) (jsonvalue.Value, []byte, error) {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, consts.MaxPayloadBytes)
	raw, err := io.ReadAll(body)
	if err != nil {
		return jsonvalue.Null(), nil, errors.ErrPayloadInvalid("failed to read request body", err)
	}
	if len(raw) == 0 {
		return jsonvalue.Null(), nil, errors.ErrPayloadInvalid("request body is empty", nil)
	}

	payload, err := jsonvalue.Parse(raw)
	if err != nil {
		return jsonvalue.Null(), nil, errors.ErrPayloadInvalid("request body is not valid JSON", err)
	}
	return payload, raw, nil
}

// queryInt parses an integer query parameter, falling back to def
func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// queryBool parses a boolean query parameter; anything unparseable is false
func queryBool(c *gin.Context, key string) bool {
	b, err := strconv.ParseBool(c.Query(key))
	return err == nil && b
}
