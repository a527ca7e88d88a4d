package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/littlesmartgenius/sitekeeper/internal/apperr"
)

// Service runs the three public form flows. Either provider client may be
// nil when unconfigured; the flows degrade instead of failing.
type Service struct {
	list       *MailerLite
	sender     *Resend
	adminEmail string
	fromDomain string
	siteURL    string
	siteName   string
	catalog    map[string]Freebie
}

// NewService creates the mail service.
func NewService(list *MailerLite, sender *Resend, adminEmail, fromDomain, siteURL, siteName string, catalog map[string]Freebie) *Service {
	return &Service{
		list:       list,
		sender:     sender,
		adminEmail: adminEmail,
		fromDomain: fromDomain,
		siteURL:    siteURL,
		siteName:   siteName,
		catalog:    catalog,
	}
}

// FlowResult is the common response of the public flows.
type FlowResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	DownloadLink string `json:"downloadLink,omitempty"`
}

// Subscribe adds an address to the newsletter group.
func (s *Service) Subscribe(ctx context.Context, email, name string) (*FlowResult, error) {
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", apperr.ErrInvalidRequest)
	}
	if s.list == nil {
		return nil, fmt.Errorf("%w: mailing list not configured", apperr.ErrUpstream)
	}
	already, err := s.list.Upsert(ctx, email, name, nil)
	if err != nil {
		return nil, err
	}
	msg := "You're subscribed!"
	if already {
		msg = "You're already subscribed!"
	}
	return &FlowResult{Success: true, Message: msg}, nil
}

// ContactMessage is one contact form submission.
type ContactMessage struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Contact notifies the site operator and records the sender on the mailing
// list. Both provider calls are best-effort: a failed notification must not
// lose the visitor's goodwill, so the flow always reports success.
func (s *Service) Contact(ctx context.Context, m ContactMessage) (*FlowResult, error) {
	m.Email = strings.TrimSpace(m.Email)
	m.Name = strings.TrimSpace(m.Name)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
	if m.Email == "" || m.Message == "" {
		return nil, fmt.Errorf("%w: email and message are required", apperr.ErrInvalidRequest)
	}
	if m.Subject == "" {
		m.Subject = "Contact from " + s.siteName
	}

	if s.sender != nil && s.adminEmail != "" {
		err := s.sender.Send(ctx, Email{
			From:     "contact@" + s.fromDomain,
			FromName: s.siteName + " Contact",
			To:       s.adminEmail,
			Subject:  "[Contact] " + m.Subject,
			HTML:     contactEmailHTML(m),
		})
		if err != nil {
			slog.Error("contact notification failed", slog.String("error", err.Error()))
		}
	}

	if s.list != nil {
		note := fmt.Sprintf("[%s] %s", m.Subject, m.Message)
		if len(note) > 500 {
			note = note[:500]
		}
		if _, err := s.list.Upsert(ctx, m.Email, m.Name, map[string]string{"last_message": note}); err != nil {
			slog.Error("contact list upsert failed", slog.String("error", err.Error()))
		}
	}

	return &FlowResult{Success: true, Message: "Message received! We'll reply within 24h."}, nil
}

// SendFreebie emails the download link for one catalog product and records
// the address on the mailing list. The link is returned as a fallback even
// when the email fails, so the visitor is never left empty-handed.
func (s *Service) SendFreebie(ctx context.Context, email, product string) (*FlowResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: valid email required", apperr.ErrInvalidRequest)
	}
	info, ok := s.catalog[product]
	if !ok {
		return nil, fmt.Errorf("product not found: %q: %w", product, apperr.ErrNotFound)
	}

	sent := false
	if s.sender != nil {
		err := s.sender.Send(ctx, Email{
			From:     "freebies@" + s.fromDomain,
			FromName: s.siteName,
			To:       email,
			Subject:  "Your Free Download: " + product,
			HTML:     freebieEmailHTML(product, info, s.siteURL, s.siteName),
		})
		if err != nil {
			slog.Error("freebie email failed", slog.String("product", product), slog.String("error", err.Error()))
		} else {
			sent = true
		}
	}

	if s.list != nil {
		if _, err := s.list.Upsert(ctx, email, "", map[string]string{"last_freebie_downloaded": product}); err != nil {
			slog.Error("freebie list upsert failed", slog.String("error", err.Error()))
		}
	}

	msg := fmt.Sprintf("Email sent to %s!", email)
	if !sent {
		msg = "Email delivery failed; use the download link below."
	}
	return &FlowResult{Success: sent, Message: msg, DownloadLink: info.Link}, nil
}
