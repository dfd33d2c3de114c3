package mail

import (
	"context"
	"testing"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurre/cloud-api-samples/apierr"
)

type mockSESClient struct {
	inputs []*ses.SendEmailInput
	id     string
	err    error
}

func (m *mockSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{MessageId: sdkaws.String(m.id)}, nil
}

func testMessage() Message {
	return Message{
		From:    "sender@example.org",
		To:      "recipient@example.net",
		Subject: TextSubject,
		Text:    "こんにちは。\nテストメールです。",
		HTML:    "<p>こんにちは。</p>",
	}
}

func TestSendText(t *testing.T) {
	client := &mockSESClient{id: "0100018f-abc"}
	id, err := NewSender(client).SendText(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, "0100018f-abc", id)

	require.Len(t, client.inputs, 1)
	in := client.inputs[0]
	assert.Equal(t, "sender@example.org", sdkaws.ToString(in.Source))
	assert.Equal(t, []string{"recipient@example.net"}, in.Destination.ToAddresses)
	assert.Equal(t, TextSubject, sdkaws.ToString(in.Message.Subject.Data))
	assert.Equal(t, "UTF-8", sdkaws.ToString(in.Message.Subject.Charset))
	assert.Equal(t, "UTF-8", sdkaws.ToString(in.Message.Body.Text.Charset))
	assert.Nil(t, in.Message.Body.Html)
}

func TestSendHTMLIncludesTextFallback(t *testing.T) {
	client := &mockSESClient{id: "id-2"}
	m := testMessage()
	m.Subject = HTMLSubject

	_, err := NewSender(client).SendHTML(context.Background(), m)
	require.NoError(t, err)

	body := client.inputs[0].Message.Body
	require.NotNil(t, body.Html)
	assert.Equal(t, "<p>こんにちは。</p>", sdkaws.ToString(body.Html.Data))
	assert.Equal(t, m.Text, sdkaws.ToString(body.Text.Data))
}

func TestSendRejectsLocally(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Message)
		html   bool
		kind   apierr.Kind
	}{
		{"bad sender", func(m *Message) { m.From = "not-an-address" }, false, apierr.KindConfiguration},
		{"bad recipient", func(m *Message) { m.To = "" }, false, apierr.KindConfiguration},
		{"empty subject", func(m *Message) { m.Subject = " " }, false, apierr.KindConfiguration},
		{"empty text", func(m *Message) { m.Text = "" }, false, apierr.KindLocalIO},
		{"empty html", func(m *Message) { m.HTML = "" }, true, apierr.KindLocalIO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockSESClient{id: "x"}
			m := testMessage()
			tt.modify(&m)

			var err error
			if tt.html {
				_, err = NewSender(client).SendHTML(context.Background(), m)
			} else {
				_, err = NewSender(client).SendText(context.Background(), m)
			}
			require.Error(t, err)
			assert.Equal(t, tt.kind, apierr.KindOf(err))
			assert.Empty(t, client.inputs)
		})
	}
}

func TestSendProviderAndShapeErrors(t *testing.T) {
	client := &mockSESClient{err: &smithy.GenericAPIError{Code: "MessageRejected", Message: "Email address is not verified."}}
	_, err := NewSender(client).SendText(context.Background(), testMessage())
	assert.Equal(t, apierr.KindProvider, apierr.KindOf(err))
	assert.Contains(t, err.Error(), "Email address is not verified.")

	_, err = NewSender(&mockSESClient{}).SendText(context.Background(), testMessage())
	assert.Equal(t, apierr.KindShape, apierr.KindOf(err))
}
