package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/nimasrn/inquiry-gateway/internal/digest"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"
)

type ReportService interface {
	Daily(ctx context.Context, at time.Time) (*model.DailyReport, error)
	Preview(ctx context.Context, at time.Time) (string, error)
	Send(ctx context.Context, force bool) (*digest.RunResult, error)
}

type ReportHandler struct {
	svc ReportService
}

func RegisterReportRoutes(e *xhttp.Group, h *ReportHandler) {
	e.GET("/reports/daily", h.GetDaily)
	e.GET("/reports/daily/preview", h.PreviewDaily)
	e.POST("/reports/daily/send", h.SendDaily)
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type reportResponse struct {
	Success bool               `json:"success"`
	Report  *model.DailyReport `json:"report"`
}

type reportStats struct {
	UniqueVisitors int64 `json:"uniqueVisitors"`
	TotalVisits    int64 `json:"totalVisits"`
	QueriesCount   int64 `json:"queriesCount"`
}

type sendReportResponse struct {
	Success bool        `json:"success"`
	EmailID string      `json:"emailId"`
	Outcome string      `json:"outcome"`
	Stats   reportStats `json:"stats"`
}

func (h *ReportHandler) at(ctx *xhttp.RequestCtx) (time.Time, bool) {
	v := query(ctx, "at")
	if v == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		writeError(ctx, xhttp.StatusBadRequest, "at must be an RFC3339 timestamp")
		return time.Time{}, false
	}
	return t, true
}

func (h *ReportHandler) GetDaily(ctx *xhttp.RequestCtx) {
	at, ok := h.at(ctx)
	if !ok {
		return
	}
	report, err := h.svc.Daily(ctx, at)
	if err != nil {
		writeInternal(ctx, "Error building daily report", err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, reportResponse{Success: true, Report: report})
}

func (h *ReportHandler) PreviewDaily(ctx *xhttp.RequestCtx) {
	at, ok := h.at(ctx)
	if !ok {
		return
	}
	html, err := h.svc.Preview(ctx, at)
	if err != nil {
		writeInternal(ctx, "Error building daily report", err)
		return
	}
	ctx.Response.Header.Set("Content-Type", "text/html; charset=utf-8")
	ctx.Response.SetStatusCode(xhttp.StatusOK)
	ctx.Response.SetBodyString(html)
}

func (h *ReportHandler) SendDaily(ctx *xhttp.RequestCtx) {
	res, err := h.svc.Send(ctx, queryBool(ctx, "force"))
	switch {
	case err == nil:
	case errors.Is(err, digest.ErrAlreadySent):
		writeError(ctx, xhttp.StatusConflict, "Daily report already sent today")
		return
	case errors.Is(err, digest.ErrRunInProgress):
		writeError(ctx, xhttp.StatusConflict, "Daily report is already being sent")
		return
	case errors.Is(err, digest.ErrSendFailed):
		writeError(ctx, xhttp.StatusBadGateway, msgEmailFailed)
		return
	default:
		writeInternal(ctx, "Failed to send daily report", err)
		return
	}

	if res.Outcome == digest.OutcomeSkipped {
		writeError(ctx, xhttp.StatusConflict, "Email notifications are disabled")
		return
	}

	out := sendReportResponse{
		Success: true,
		EmailID: res.Notification.MessageID,
		Outcome: res.Outcome,
	}
	if res.Report != nil {
		out.Stats = reportStats{
			UniqueVisitors: res.Report.UniqueVisitorCount,
			TotalVisits:    res.Report.TotalVisitCount,
			QueriesCount:   res.Report.InquiryCount,
		}
	}
	writeJSON(ctx, xhttp.StatusOK, out)
}
