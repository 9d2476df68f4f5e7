package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/nadavh/aptwatch/internal/common"
)

// Sender sends notification mail through the authenticated user's Gmail
// account. It satisfies the notifier contract.
type Sender struct {
	service *gmail.Service
	config  Config
}

// NewSender authenticates against Gmail and returns a ready sender. The
// first run opens the interactive OAuth2 flow; later runs reuse the cached
// token.
func NewSender(ctx context.Context, config Config) (*Sender, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token, err := GetOrCreateToken(ctx, config)
	if err != nil {
		return nil, err
	}

	tokenSource := oauthConfig(config).TokenSource(ctx, token)
	service, err := gmail.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Sender{service: service, config: config}, nil
}

// Send dispatches one message with the given subject and body to the
// configured recipients.
func (s *Sender) Send(ctx context.Context, subject, body string) error {
	message := &gmail.Message{
		Raw: encodeMessage(s.config.Recipients, s.config.CC, subject, body),
	}

	sent, err := s.service.Users.Messages.Send("me", message).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrSendFailed, err)
	}

	slog.Info("Email sent", "subject", subject, "message_id", sent.Id)
	return nil
}

// encodeMessage builds the base64url RFC 822 payload the Gmail API expects.
// The subject is MIME-encoded so Hebrew survives the header.
func encodeMessage(to, cc []string, subject, body string) string {
	var msg strings.Builder

	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	if len(cc) > 0 {
		msg.WriteString("Cc: " + strings.Join(cc, ", ") + "\r\n")
	}
	msg.WriteString("Subject: " + mime.BEncoding.Encode("UTF-8", subject) + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("Content-Transfer-Encoding: base64\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(base64.StdEncoding.EncodeToString([]byte(body)))

	return base64.URLEncoding.EncodeToString([]byte(msg.String()))
}
