package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/mailfront/internal/model"
)

// SMTPAuth is the SMTP account block forwarded with send and test calls.
type SMTPAuth struct {
	Server   string `json:"smtp_server"`
	Port     int    `json:"smtp_port"`
	TLS      bool   `json:"is_tls"`
	User     string `json:"smtp_user"`
	Password string `json:"smtp_passwd"`
}

// SendRequest is the body of POST /send/.
type SendRequest struct {
	SMTPAuth  SMTPAuth `json:"smtp_auth"`
	Recipient string   `json:"recipient"`
	Sender    string   `json:"sender"`
	FromEmail string   `json:"from_email,omitempty"`
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
}

type imapAuth struct {
	Server   string `json:"imap_server"`
	Port     int    `json:"imap_port"`
	TLS      bool   `json:"is_tls"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ackResponse struct {
	Ack bool `json:"ack"`
}

// MailboxEntry is a raw inbox message as returned by GET /mailbox/.
// Subject and Sender may still carry RFC 2047 encoded words.
type MailboxEntry struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
	Date    string `json:"date"`
	Body    string `json:"body"`
}

// NewSMTPAuth builds the SMTP block from the account settings.
func NewSMTPAuth(s model.Settings) (SMTPAuth, error) {
	if !s.SMTPComplete() {
		return SMTPAuth{}, ErrIncompleteSettings
	}
	port, err := strconv.Atoi(s.SMTP.Port)
	if err != nil {
		return SMTPAuth{}, fmt.Errorf("invalid SMTP port %q: %w", s.SMTP.Port, err)
	}
	return SMTPAuth{
		Server:   s.SMTP.Server,
		Port:     port,
		TLS:      s.SMTP.TLS,
		User:     s.User,
		Password: s.Password,
	}, nil
}

func newIMAPAuth(s model.Settings) (imapAuth, error) {
	if !s.IMAPComplete() {
		return imapAuth{}, ErrIncompleteSettings
	}
	port, err := strconv.Atoi(s.IMAP.Port)
	if err != nil {
		return imapAuth{}, fmt.Errorf("invalid IMAP port %q: %w", s.IMAP.Port, err)
	}
	return imapAuth{
		Server:   s.IMAP.Server,
		Port:     port,
		TLS:      s.IMAP.TLS,
		Username: s.User,
		Password: s.Password,
	}, nil
}

// SendMail asks the backend to deliver one message through the
// configured SMTP account.
func (c *Client) SendMail(ctx context.Context, req SendRequest) error {
	var resp ackResponse
	if err := c.post(ctx, "/send/", req, &resp); err != nil {
		return fmt.Errorf("sending mail to %s: %w", req.Recipient, err)
	}
	return nil
}

// TestSMTP checks that the backend can connect and authenticate with the
// SMTP settings.
func (c *Client) TestSMTP(ctx context.Context, s model.Settings) error {
	auth, err := NewSMTPAuth(s)
	if err != nil {
		return fmt.Errorf("testing SMTP connection: %w", err)
	}

	var resp ackResponse
	if err := c.post(ctx, "/testsmtp/", auth, &resp); err != nil {
		return fmt.Errorf("testing SMTP connection to %s: %w", s.SMTP.Server, err)
	}
	return nil
}

// TestIMAP checks that the backend can log in to the IMAP server.
func (c *Client) TestIMAP(ctx context.Context, s model.Settings) error {
	auth, err := newIMAPAuth(s)
	if err != nil {
		return fmt.Errorf("testing IMAP connection: %w", err)
	}

	var resp ackResponse
	if err := c.post(ctx, "/testimap/", auth, &resp); err != nil {
		return fmt.Errorf("testing IMAP connection to %s: %w", s.IMAP.Server, err)
	}
	return nil
}

// FetchMailbox returns the most recent inbox messages read by the
// backend over IMAP.
func (c *Client) FetchMailbox(ctx context.Context, s model.Settings) ([]MailboxEntry, error) {
	auth, err := newIMAPAuth(s)
	if err != nil {
		return nil, fmt.Errorf("fetching mailbox: %w", err)
	}

	query := url.Values{}
	query.Set("imap_server", auth.Server)
	query.Set("imap_port", strconv.Itoa(auth.Port))
	query.Set("username", auth.Username)
	query.Set("password", auth.Password)
	query.Set("use_ssl", strconv.FormatBool(auth.TLS))

	var resp struct {
		Emails []MailboxEntry `json:"emails"`
	}
	if err := c.get(ctx, "/mailbox/", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching mailbox for %s: %w", s.User, err)
	}
	return resp.Emails, nil
}
