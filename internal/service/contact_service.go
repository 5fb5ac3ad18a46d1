package service

import (
	"context"
	"fmt"

	"github.com/portfolio-content-api/internal/mailer"
	"github.com/portfolio-content-api/internal/models"
	"github.com/portfolio-content-api/internal/validation"
	"github.com/rs/zerolog"
)

type contactService struct {
	mailer mailer.Mailer
	log    zerolog.Logger
}

func newContactService(m mailer.Mailer, log zerolog.Logger) *contactService {
	return &contactService{
		mailer: m,
		log:    log.With().Str("service", "contact").Logger(),
	}
}

// Submit validates a contact form and mails it to the studio inbox
func (s *contactService) Submit(ctx context.Context, form models.ContactForm) error {
	const op = "send message"

	if err := validation.Contact(form); err != nil {
		return models.NewFailure(models.KindValidation, op, err)
	}

	name := form.Fields["full_name"]
	subject := "New project enquiry"
	if form.Form == models.FormWork {
		name = form.Fields["name"]
		subject = "New work enquiry"
	}

	msg := mailer.Message{
		ReplyTo: form.Fields["email"],
		Subject: fmt.Sprintf("%s from %s", subject, name),
		Body:    mailer.FormatFields(form.Fields),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return models.NewFailure(models.KindUpstream, op, err)
	}

	s.log.Info().Str("form", form.Form).Msg("Contact form delivered")
	return nil
}
