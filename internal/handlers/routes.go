package handlers

import xhttp "github.com/nimasrn/inquiry-gateway/pkg/http"

// Set groups the handlers served under one prefix. Nil members are not
// registered.
type Set struct {
	Inquiry     *InquiryHandler
	Visitor     *VisitorHandler
	EmailConfig *EmailConfigHandler
	Report      *ReportHandler
	ArtType     *ArtTypeHandler
	Health      *HealthHandler
}

func (s Set) Register(g *xhttp.Group) {
	if s.Inquiry != nil {
		RegisterInquiryRoutes(g, s.Inquiry)
	}
	if s.Visitor != nil {
		RegisterVisitorRoutes(g, s.Visitor)
	}
	if s.EmailConfig != nil {
		RegisterEmailConfigRoutes(g, s.EmailConfig)
	}
	if s.Report != nil {
		RegisterReportRoutes(g, s.Report)
	}
	if s.ArtType != nil {
		RegisterArtTypeRoutes(g, s.ArtType)
	}
	if s.Health != nil {
		RegisterHealthRoutes(g, s.Health)
	}
}
