package emailsvc

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/mail"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/tourney/core"
	logsvc "github.com/trezcool/tourney/services/logger"
)

func TestSendgridService_send(t *testing.T) {
	conf := core.NewTestConfig()
	conf.SendgridApiKey = "sg-key"
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	core.ParseEmailTemplates(logger)
	svc := NewSendgridService(conf, logger).(*sendgridService)

	var reqs []rest.Request
	status := http.StatusAccepted
	sendgridAPIFunc = func(req rest.Request) (*rest.Response, error) {
		reqs = append(reqs, req)
		return &rest.Response{StatusCode: status, Body: "bad request"}, nil
	}

	err := svc.send(&core.EmailMessage{
		To:           []mail.Address{{Name: "Admin", Address: "admin@tourney.test"}},
		Subject:      "New feedback",
		TemplateName: "feedback",
		TemplateData: map[string]string{"From": "alice", "Text": "nice"},
	})
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, string(reqs[0].Method))
	assert.Equal(t, "https://api.sendgrid.com/v3/mail/send", reqs[0].BaseURL)
	assert.Equal(t, "Bearer sg-key", reqs[0].Headers["Authorization"])

	var body struct {
		From             struct{ Email string }
		Personalizations []struct {
			To      []struct{ Name, Email string }
			Subject string
		}
		Content []struct {
			Type  string
			Value string
		}
		Categories   []string
		MailSettings struct {
			SandboxMode struct{ Enable bool } `json:"sandbox_mode"`
		} `json:"mail_settings"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.Equal(t, "noreply@tourney.test", body.From.Email)
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "[Tourney] New feedback", body.Personalizations[0].Subject)
	assert.Equal(t, "admin@tourney.test", body.Personalizations[0].To[0].Email)
	require.NotEmpty(t, body.Content)
	assert.Equal(t, "text/plain", body.Content[0].Type)
	assert.Contains(t, body.Content[0].Value, "New feedback from alice")
	assert.Equal(t, []string{"feedback"}, body.Categories)
	assert.True(t, body.MailSettings.SandboxMode.Enable)

	// nothing to send
	require.NoError(t, svc.send(&core.EmailMessage{Subject: "no recipients", BodyStr: "hi"}))
	assert.Len(t, reqs, 1)

	status = http.StatusBadRequest
	err = svc.send(&core.EmailMessage{To: []mail.Address{{Address: "admin@tourney.test"}}, Subject: "plain", BodyStr: "hi"})
	assert.EqualError(t, err, "sendgrid: status 400: bad request")
}
