// Package feedback handles the feedback users leave about the site.
package feedback

import (
	"context"
	"net/mail"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/tourney/core"
)

// ThankYou is the answer to accepted feedback.
const ThankYou = "Thanks for you help improving the site"

type Feedback struct {
	Text string `json:"inputFeedback" form:"inputFeedback" validate:"notblank,max=500"`
}

// Validate strips surrounding whitespace and "+" (form encoded spaces) before validating.
func (f *Feedback) Validate(validate *validator.Validate) error {
	f.Text = strings.Trim(f.Text, " \t\r\n+")
	return validate.Struct(f)
}

type Service struct {
	mailSvc    core.EmailService
	recipients []mail.Address
}

func NewService(mailSvc core.EmailService, conf *core.Config) *Service {
	rcpts := make([]mail.Address, 0, len(conf.FeedbackEmails))
	for _, addr := range conf.FeedbackEmails {
		rcpts = append(rcpts, mail.Address{Address: addr})
	}
	return &Service{mailSvc: mailSvc, recipients: rcpts}
}

// Submit forwards validated feedback to the site admins. from is the author's username, if known.
func (svc *Service) Submit(_ context.Context, f Feedback, from string) error {
	if from == "" {
		from = "an anonymous visitor"
	}
	if len(svc.recipients) == 0 {
		return nil
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           svc.recipients,
		Subject:      "New feedback",
		TemplateName: "feedback",
		TemplateData: map[string]string{"From": from, "Text": f.Text},
	})
	return nil
}
