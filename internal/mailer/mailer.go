package mailer

import "embed"

const (
	MAX_RETRY = 3
)

// MailTemplateFile is a path into the embedded templates directory. Each
// template defines a "subject" and a "body" block.
type MailTemplateFile string

const (
	TemplateRequestSubmitted MailTemplateFile = "templates/request_submitted.tmpl"
	TemplateRequestAccepted  MailTemplateFile = "templates/request_accepted.tmpl"
	TemplateRequestRejected  MailTemplateFile = "templates/request_rejected.tmpl"
	TemplateRequestSigned    MailTemplateFile = "templates/request_signed.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile MailTemplateFile, toEmail string, data any) (int, error)
}

// RequestSubmittedData notifies a signatory that a new endorsement request
// is waiting for them.
type RequestSubmittedData struct {
	SignatoryName string
	RequesterName string
	RefCode       string
	Purpose       string
	RequestURL    string
}

// RequestDecisionData is shared by the accepted and rejected templates.
type RequestDecisionData struct {
	RequesterName string
	RefCode       string
	Purpose       string
	Reason        string
	RequestURL    string
}

type RequestSignedData struct {
	RequesterName string
	RefCode       string
	SignedByName  string
	DownloadURL   string
}
