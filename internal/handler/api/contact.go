// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/model"
	"github.com/olegiv/folio-go/internal/notify"
)

// validateContact checks the contact form fields.
func validateContact(in model.NewMessage) fieldErrors {
	errs := fieldErrors{}
	if errs.required("name", in.Name, "Name") {
		errs.minLength("name", in.Name, 2, "Name")
		errs.maxLength("name", in.Name, maxNameLength, "Name")
	}
	if errs.required("email", in.Email, "Email") {
		errs.email("email", in.Email)
	}
	if errs.required("subject", in.Subject, "Subject") {
		errs.minLength("subject", in.Subject, 2, "Subject")
		errs.maxLength("subject", in.Subject, maxSubjectLength, "Subject")
	}
	if errs.required("message", in.Message, "Message") {
		errs.minLength("message", in.Message, 10, "Message")
		errs.maxLength("message", in.Message, maxMessageLength, "Message")
	}
	return errs
}

// Contact handles POST /api/contact. The message is stored first;
// notification runs in the background and cannot fail the request.
func (h *Handler) Contact(w http.ResponseWriter, r *http.Request) {
	var in model.NewMessage
	if !decodeJSON(w, r, &in) {
		return
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)

	if errs := validateContact(in); len(errs) > 0 {
		WriteValidationError(w, "Invalid form data", errs)
		return
	}

	msg, err := h.store.CreateMessage(r.Context(), in)
	if err != nil {
		h.WriteInternalError(w, r, "Failed to send message. Please try again later.", err)
		return
	}

	h.logger.InfoContext(r.Context(), "contact message received", "id", msg.ID)

	if h.notifier != nil {
		meta := h.notifier.RequestMeta(middleware.ClientIP(r), r.UserAgent())
		h.notifier.MessageCreated(*msg, meta)
	}

	WriteCreated(w, StatusResponse{Success: true, Message: "Message sent successfully"})
}

// EmailCheckResponse reports the state of the notification channel.
type EmailCheckResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	EmailEnabled bool   `json:"emailEnabled"`
}

// EmailCheck handles GET /api/email/check. The contact form keeps working
// whatever the outcome, so the response is always 200.
func (h *Handler) EmailCheck(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil || !h.notifier.EmailEnabled() {
		WriteSuccess(w, EmailCheckResponse{
			Success: true,
			Message: "Contact form is ready to receive messages. Messages will be stored in the database.",
		})
		return
	}

	if err := h.notifier.VerifyEmail(r.Context()); err != nil {
		hint := "Unexpected response from email server."
		var verr *notify.VerifyError
		if errors.As(err, &verr) {
			hint = verr.Hint(h.mailHost)
		}
		h.logger.WarnContext(r.Context(), "email transport check failed", "error", err, "hint", hint)
		WriteSuccess(w, EmailCheckResponse{
			Success:      false,
			Message:      "Contact form is ready to receive messages, but email notifications are currently unavailable.",
			EmailEnabled: true,
		})
		return
	}

	WriteSuccess(w, EmailCheckResponse{
		Success:      true,
		Message:      "Contact form is ready. You will be notified by email about new messages.",
		EmailEnabled: true,
	})
}
