// Package mail sends text and HTML email through Amazon SES.
package mail

import (
	"context"
	"net/mail"
	"strings"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/gurre/cloud-api-samples/apierr"
	"github.com/gurre/cloud-api-samples/aws"
)

// Charset is used for the subject and every body part.
const Charset = "UTF-8"

// Default subjects of the sample messages.
const (
	TextSubject = "SES テストメール (テキスト)"
	HTMLSubject = "SES テストメール (HTML)"
)

// Message is one email to a single recipient. Text is the fallback body of an HTML message.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Validate checks the addresses and the parts every message needs.
func (m Message) Validate() error {
	const op = "mail.Validate"
	if _, err := mail.ParseAddress(m.From); err != nil {
		return apierr.Configf(op, "invalid sender %q: %v", m.From, err)
	}
	if _, err := mail.ParseAddress(m.To); err != nil {
		return apierr.Configf(op, "invalid recipient %q: %v", m.To, err)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return apierr.Configf(op, "subject is empty")
	}
	if strings.TrimSpace(m.Text) == "" {
		return apierr.LocalIOf(op, "text body is empty")
	}
	return nil
}

func content(s string) *types.Content {
	return &types.Content{Data: sdkaws.String(s), Charset: sdkaws.String(Charset)}
}

// BuildSendEmailInput maps a message to the SES request shape. The HTML part is only set when
// html is true.
func BuildSendEmailInput(m Message, html bool) (*ses.SendEmailInput, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	body := &types.Body{Text: content(m.Text)}
	if html {
		if strings.TrimSpace(m.HTML) == "" {
			return nil, apierr.LocalIOf("mail.BuildSendEmailInput", "html body is empty")
		}
		body.Html = content(m.HTML)
	}
	return &ses.SendEmailInput{
		Source:      sdkaws.String(m.From),
		Destination: &types.Destination{ToAddresses: []string{m.To}},
		Message: &types.Message{
			Subject: content(m.Subject),
			Body:    body,
		},
	}, nil
}

// Sender sends messages with SES.
type Sender struct {
	client aws.SESClient
}

// NewSender creates a Sender.
func NewSender(client aws.SESClient) *Sender {
	return &Sender{client: client}
}

// SendText sends a plain-text message and returns the SES message id.
func (s *Sender) SendText(ctx context.Context, m Message) (string, error) {
	return s.send(ctx, m, false)
}

// SendHTML sends an HTML message with m.Text as the plain-text fallback.
func (s *Sender) SendHTML(ctx context.Context, m Message) (string, error) {
	return s.send(ctx, m, true)
}

func (s *Sender) send(ctx context.Context, m Message, html bool) (string, error) {
	const op = "ses.SendEmail"
	in, err := BuildSendEmailInput(m, html)
	if err != nil {
		return "", err
	}
	out, err := s.client.SendEmail(ctx, in)
	if err != nil {
		return "", apierr.Classify(op, err)
	}
	id := sdkaws.ToString(out.MessageId)
	if id == "" {
		return "", apierr.Shapef(op, "response has no MessageId")
	}
	return id, nil
}
