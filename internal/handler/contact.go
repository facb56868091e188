// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/olegiv/studio-go/internal/logging"
	"github.com/olegiv/studio-go/internal/render"
)

// Contact form limits.
const (
	maxNameLength    = 100
	maxMessageLength = 5000
)

// ContactMessage is a sanitized contact form submission.
type ContactMessage struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// ContactForm handles GET /contact.
func (h *Public) ContactForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/contact", render.TemplateData{Title: "Contact"})
}

// ContactSubmit handles POST /contact.
func (h *Public) ContactSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.contactResult("invalid")
		writeJSONError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	msg := ContactMessage{
		Name:    h.clean(r.PostFormValue("name")),
		Email:   h.clean(r.PostFormValue("email")),
		Phone:   h.clean(r.PostFormValue("phone")),
		Message: h.clean(r.PostFormValue("message")),
	}
	if problem := msg.validate(); problem != "" {
		h.contactResult("invalid")
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "message": problem})
		return
	}

	h.logger.InfoContext(r.Context(), "CONTACT message received",
		"name", msg.Name,
		"email", msg.Email,
		"phone", msg.Phone,
		"length", utf8.RuneCountInString(msg.Message),
		"remote_addr", logging.ClientIP(r),
	)
	h.contactResult("accepted")

	writeJSON(w, http.StatusOK, map[string]string{"status": "success", "message": "Message sent"})
}

// clean strips markup and surrounding whitespace.
func (h *Public) clean(s string) string {
	return strings.TrimSpace(h.sanitizer.Sanitize(s))
}

func (h *Public) contactResult(result string) {
	if h.metrics != nil {
		h.metrics.ContactMessages.WithLabelValues(result).Inc()
	}
}

func (m ContactMessage) validate() string {
	switch {
	case m.Name == "":
		return "Name is required"
	case utf8.RuneCountInString(m.Name) > maxNameLength:
		return "Name is too long"
	case m.Email == "":
		return "Email is required"
	case m.Message == "":
		return "Message is required"
	case utf8.RuneCountInString(m.Message) > maxMessageLength:
		return "Message is too long"
	}
	if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != m.Email {
		return "Email is invalid"
	}
	return ""
}
