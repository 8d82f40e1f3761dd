// Package render turns inquiries and daily aggregates into email HTML and
// subjects. Rendering never fails: a broken template degrades to a plain
// fallback body.
package render

import (
	"embed"
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nimasrn/inquiry-gateway/internal/catalog"
	"github.com/nimasrn/inquiry-gateway/internal/model"
	"github.com/nimasrn/inquiry-gateway/pkg/logger"
	"github.com/osteele/liquid"
	"github.com/pkg/errors"
)

const (
	fallbackNA           = "N/A"
	fallbackNotSpecified = "Not specified"
	fallbackUnknown      = "Unknown"
	deviceMaxRunes       = 80

	headerDateLayout = "Monday, 2 January 2006"
	stampLayout      = "02/01/2006, 15:04:05"
	alertStampLayout = "Monday, 2 January 2006 at 3:04 PM"
)

//go:embed templates/*.liquid
var templateFS embed.FS

type Options struct {
	// Brand is shown in headers and footers.
	Brand    string
	Location *time.Location
	Catalog  *catalog.Catalog
}

type Renderer struct {
	daily   *liquid.Template
	alert   *liquid.Template
	brand   string
	loc     *time.Location
	catalog *catalog.Catalog
}

func New(opts Options) (*Renderer, error) {
	if opts.Brand == "" {
		opts.Brand = "KanakArtistry"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}

	engine := liquid.NewEngine()
	daily, err := parse(engine, "templates/daily_report.liquid")
	if err != nil {
		return nil, err
	}
	alert, err := parse(engine, "templates/inquiry_alert.liquid")
	if err != nil {
		return nil, err
	}

	return &Renderer{
		daily:   daily,
		alert:   alert,
		brand:   opts.Brand,
		loc:     opts.Location,
		catalog: opts.Catalog,
	}, nil
}

func parse(engine *liquid.Engine, name string) (*liquid.Template, error) {
	src, err := templateFS.ReadFile(name)
	if err != nil {
		return nil, errors.Wrapf(err, "read template %s", name)
	}
	tpl, perr := engine.ParseTemplate(src)
	if perr != nil {
		return nil, errors.Wrapf(perr, "parse template %s", name)
	}
	return tpl, nil
}

// DailyReport renders the digest body. generatedAt is shown in the footer.
func (r *Renderer) DailyReport(report *model.DailyReport, generatedAt time.Time) string {
	bindings := r.dailyBindings(report, generatedAt)
	out, err := r.daily.RenderString(bindings)
	if err != nil {
		logger.Error("render daily report failed, using fallback", "error", err)
		return r.dailyFallback(report)
	}
	return out
}

// InquiryAlert renders the instant notification body.
func (r *Renderer) InquiryAlert(inq *model.Inquiry) string {
	bindings := r.alertBindings(inq)
	out, err := r.alert.RenderString(bindings)
	if err != nil {
		logger.Error("render inquiry alert failed, using fallback", "error", err, "inquiry_id", inq.ID)
		return r.alertFallback(inq)
	}
	return out
}

func (r *Renderer) dailyBindings(report *model.DailyReport, generatedAt time.Time) liquid.Bindings {
	cards := make([]map[string]interface{}, 0, len(report.Inquiries))
	for _, q := range report.Inquiries {
		cards = append(cards, map[string]interface{}{
			"name":      q.Name,
			"email":     q.Email,
			"phone":     orDefault(q.Phone, fallbackNA),
			"art_type":  orDefault(r.artTypeName(q.ArtType), fallbackNotSpecified),
			"size":      orDefault(q.Size, fallbackNA),
			"budget":    orDefault(q.Budget, fallbackNA),
			"timeline":  orDefault(q.Timeline, fallbackNA),
			"message":   q.Message,
			"submitted": q.SubmittedAt.In(r.loc).Format(stampLayout),
		})
	}

	return liquid.Bindings{
		"brand":           r.brand,
		"report_date":     report.WindowEnd.In(r.loc).Format(headerDateLayout),
		"unique_visitors": report.UniqueVisitorCount,
		"total_visits":    report.TotalVisitCount,
		"inquiry_count":   report.InquiryCount,
		"has_inquiries":   report.InquiryCount > 0 && len(cards) > 0,
		"inquiries":       cards,
		"generated_at":    generatedAt.In(r.loc).Format(stampLayout),
	}
}

func (r *Renderer) alertBindings(inq *model.Inquiry) liquid.Bindings {
	submitted := inq.SubmittedAt
	if submitted.IsZero() {
		submitted = time.Now()
	}
	return liquid.Bindings{
		"brand":      r.brand,
		"name":       inq.Name,
		"email":      inq.Email,
		"phone":      orDefault(inq.Phone, fallbackNA),
		"has_phone":  strings.TrimSpace(inq.Phone) != "",
		"art_type":   orDefault(r.artTypeName(inq.ArtType), fallbackNotSpecified),
		"size":       orDefault(inq.Size, fallbackNotSpecified),
		"budget":     orDefault(inq.Budget, fallbackNotSpecified),
		"timeline":   orDefault(inq.Timeline, fallbackNotSpecified),
		"message":    inq.Message,
		"submitted":  submitted.In(r.loc).Format(alertStampLayout),
		"ip_address": orDefault(inq.IPAddress, fallbackUnknown),
		"device":     orDefault(truncate(inq.UserAgent, deviceMaxRunes), fallbackUnknown),
	}
}

func (r *Renderer) artTypeName(slug string) string {
	if slug == "" {
		return ""
	}
	return r.catalog.Name(slug)
}

func (r *Renderer) dailyFallback(report *model.DailyReport) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h1>Daily Report - %s</h1>", html.EscapeString(r.brand))
	fmt.Fprintf(&b, "<p>Unique Visitors: %d<br>Total Visits: %d<br>New Inquiries: %d</p>",
		report.UniqueVisitorCount, report.TotalVisitCount, report.InquiryCount)
	if report.InquiryCount == 0 {
		b.WriteString("<p>No new art inquiries in the last 24 hours.</p>")
	}
	for _, q := range report.Inquiries {
		fmt.Fprintf(&b, "<p>%s &lt;%s&gt;: %s</p>",
			html.EscapeString(q.Name), html.EscapeString(q.Email), html.EscapeString(q.Message))
	}
	b.WriteString("</body></html>")
	return b.String()
}

func (r *Renderer) alertFallback(inq *model.Inquiry) string {
	return fmt.Sprintf("<html><body><h1>New Art Inquiry</h1><p>%s &lt;%s&gt;</p><p>%s</p></body></html>",
		html.EscapeString(inq.Name), html.EscapeString(inq.Email), html.EscapeString(inq.Message))
}

// DailySubject is "📊 Daily Report: N Inquiry|Inquiries | U Visitors".
func DailySubject(report *model.DailyReport) string {
	word := "Inquiries"
	if report.InquiryCount == 1 {
		word = "Inquiry"
	}
	return fmt.Sprintf("📊 Daily Report: %d %s | %d Visitors", report.InquiryCount, word, report.UniqueVisitorCount)
}

func InquirySubject(inq *model.Inquiry) string {
	return "🎨 New Art Inquiry from " + singleLine(inq.Name)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}

// singleLine keeps user text from breaking mail headers.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
