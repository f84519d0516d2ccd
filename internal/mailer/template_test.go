package mailer

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
)

func renderTemplate(t *testing.T, file MailTemplateFile, data any) (string, string) {
	t.Helper()

	tmpl, err := template.ParseFS(FS, string(file))
	if err != nil {
		t.Fatalf("failed to parse %s: %v", file, err)
	}

	subject := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		t.Fatalf("failed to execute subject of %s: %v", file, err)
	}

	body := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(body, "body", data); err != nil {
		t.Fatalf("failed to execute body of %s: %v", file, err)
	}

	return subject.String(), body.String()
}

func TestMailTemplates(t *testing.T) {
	tests := []struct {
		name string
		file MailTemplateFile
		data any
	}{
		{
			name: "request submitted",
			file: TemplateRequestSubmitted,
			data: RequestSubmittedData{
				SignatoryName: "Sok San",
				RequesterName: "Jane Doe",
				RefCode:       "REF123456",
				Purpose:       "Business license renewal",
				RequestURL:    "https://example.com/endorsements/1",
			},
		},
		{
			name: "request accepted",
			file: TemplateRequestAccepted,
			data: RequestDecisionData{
				RequesterName: "Jane Doe",
				RefCode:       "REF123456",
				Purpose:       "Business license renewal",
				RequestURL:    "https://example.com/endorsements/1",
			},
		},
		{
			name: "request rejected with reason",
			file: TemplateRequestRejected,
			data: RequestDecisionData{
				RequesterName: "Jane Doe",
				RefCode:       "REF123456",
				Reason:        "Document is illegible",
				RequestURL:    "https://example.com/endorsements/1",
			},
		},
		{
			name: "request signed",
			file: TemplateRequestSigned,
			data: RequestSignedData{
				RequesterName: "Jane Doe",
				RefCode:       "REF123456",
				SignedByName:  "Sok San",
				DownloadURL:   "https://example.com/endorsements/1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body := renderTemplate(t, tt.file, tt.data)

			if !strings.Contains(subject, "REF123456") {
				t.Errorf("subject %q should mention the reference code", subject)
			}
			if !strings.Contains(body, "Jane Doe") {
				t.Errorf("body should address the recipient, got: %s", body)
			}
		})
	}
}

func TestRejectedTemplateOmitsEmptyReason(t *testing.T) {
	_, body := renderTemplate(t, TemplateRequestRejected, RequestDecisionData{
		RequesterName: "Jane Doe",
		RefCode:       "REF123456",
	})

	if strings.Contains(body, "Reason:") {
		t.Errorf("body should not render an empty reason block, got: %s", body)
	}
}
