package handlers

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/services"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Error("encode response failed", "error", err, "path", string(ctx.Path()))
		ctx.Response.SetStatusCode(xhttp.StatusInternalServerError)
		return
	}
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, errorResponse{Success: false, Error: msg})
}

func writeInternal(ctx *xhttp.RequestCtx, msg string, err error) {
	logger.Error(msg, "error", err, "path", string(ctx.Path()))
	writeError(ctx, xhttp.StatusInternalServerError, msg)
}

// writeServiceError maps service sentinels to status codes.
func writeServiceError(ctx *xhttp.RequestCtx, err error, msg string) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(ctx, xhttp.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrNotFound):
		writeError(ctx, xhttp.StatusNotFound, msgInquiryNotFound)
	default:
		writeInternal(ctx, msg, err)
	}
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func pathParam(ctx *xhttp.RequestCtx, name string) string {
	v, _ := ctx.UserValue(name).(string)
	return v
}

func queryBool(ctx *xhttp.RequestCtx, key string) bool {
	b, _ := strconv.ParseBool(query(ctx, key))
	return b
}

func queryTime(ctx *xhttp.RequestCtx, key string) *time.Time {
	v := query(ctx, key)
	if v == "" {
		return nil
	}
	t, err := parseTime(v)
	if err != nil {
		return nil
	}
	return &t
}

func parseTime(s string) (time.Time, error) {
	// Accept RFC3339 or YYYY-MM-DD
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
