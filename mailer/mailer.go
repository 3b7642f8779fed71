// Package mailer sends the account emails.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Message is a plain-text email.
type Message struct {
	To      string
	From    string
	Subject string
	Text    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// SMTP delivers messages through an SMTP relay using PLAIN auth.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (s *SMTP) addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// sendTimeout bounds a delivery when ctx carries no deadline.
const sendTimeout = 30 * time.Second

// Send delivers m. The SMTP conversation is bounded by ctx's deadline, or
// sendTimeout when ctx has none.
func (s *SMTP) Send(ctx context.Context, m Message) error {
	if m.From == "" {
		m.From = s.From
	}
	if err := s.send(ctx, m); err != nil {
		return fmt.Errorf("Could not send %q to %s: %s", m.Subject, m.To, err)
	}
	log.WithFields(log.Fields{"to": m.To, "subject": m.Subject}).Info("Mail sent")
	return nil
}

func (s *SMTP) send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return err
	}
	defer conn.Close()
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(sendTimeout)
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}
	// Cancellation without a deadline still unblocks the conversation.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.SetDeadline(time.Now())
		case <-stop:
		}
	}()

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return err
	}
	defer c.Close()
	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if s.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", s.Username, s.Password, s.Host)); err != nil {
			return err
		}
	}
	if err := c.Mail(m.From); err != nil {
		return err
	}
	if err := c.Rcpt(m.To); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(m.Bytes()); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Discard logs messages instead of sending them.
type Discard struct{}

func (Discard) Send(ctx context.Context, m Message) error {
	log.WithFields(log.Fields{"to": m.To, "subject": m.Subject}).Info("Mail discarded")
	return nil
}

// Bytes renders the message as RFC 822 text.
func (m Message) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.From)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", m.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.Replace(m.Text, "\n", "\r\n", -1))
	return []byte(b.String())
}
