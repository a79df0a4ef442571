// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/folio-go/internal/model"
)

func TestContact_StoresMessageAndNotifies(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/contact", model.NewMessage{
		Name:    "Jane",
		Email:   "jane@x.com",
		Subject: "Hi",
		Message: "Hello there, interested in working together.",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeJSONBody[StatusResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, "Message sent successfully", resp.Message)

	w = env.do(http.MethodGet, "/api/admin/messages", nil, env.loginAdmin()...)
	require.Equal(t, http.StatusOK, w.Code)

	messages := decodeJSONBody[[]model.Message](t, w)
	require.Len(t, messages, 1)
	assert.Equal(t, "Jane", messages[0].Name)
	assert.Equal(t, "jane@x.com", messages[0].Email)
	assert.Equal(t, "Hi", messages[0].Subject)
	assert.Equal(t, "Hello there, interested in working together.", messages[0].Message)
	assert.NotZero(t, messages[0].ID)
	assert.False(t, messages[0].CreatedAt.IsZero())

	assert.Equal(t, 1, env.notifier.count())
}

func TestContact_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantFields []string
	}{
		{
			name:       "empty",
			body:       model.NewMessage{},
			wantFields: []string{"name", "email", "subject", "message"},
		},
		{
			name:       "too short",
			body:       model.NewMessage{Name: "J", Email: "jane@x.com", Subject: "H", Message: "short"},
			wantFields: []string{"name", "subject", "message"},
		},
		{
			name:       "bad email",
			body:       model.NewMessage{Name: "Jane", Email: "not-an-email", Subject: "Hello", Message: "Long enough message"},
			wantFields: []string{"email"},
		},
		{
			name:       "display name email",
			body:       model.NewMessage{Name: "Jane", Email: "Jane <jane@x.com>", Subject: "Hello", Message: "Long enough message"},
			wantFields: []string{"email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			w := env.do(http.MethodPost, "/api/contact", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)

			resp := decodeJSONBody[errorEnvelope](t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, "validation_error", resp.Error.Code)
			for _, f := range tt.wantFields {
				assert.Contains(t, resp.Error.Details, f)
			}

			messages, err := env.store.ListMessages(t.Context())
			require.NoError(t, err)
			assert.Empty(t, messages)
			assert.Zero(t, env.notifier.count())
		})
	}
}

func TestContact_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/contact", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", decodeJSONBody[errorEnvelope](t, w).Error.Code)
}

func TestContact_TrimsFields(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/contact", model.NewMessage{
		Name:    "  Jane  ",
		Email:   " jane@x.com ",
		Subject: " Project ",
		Message: "  Hello there, interested in working together.  ",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	messages, err := env.store.ListMessages(t.Context())
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Jane", messages[0].Name)
	assert.Equal(t, "jane@x.com", messages[0].Email)
	assert.Equal(t, "Project", messages[0].Subject)
}

func TestEmailCheck(t *testing.T) {
	tests := []struct {
		name        string
		enabled     bool
		verify      error
		wantSuccess bool
		wantEnabled bool
	}{
		{"not configured", false, nil, true, false},
		{"reachable", true, nil, true, true},
		{"unreachable", true, errors.New("dial tcp: connection refused"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.notifier.enabled = tt.enabled
			env.notifier.verify = tt.verify

			w := env.do(http.MethodGet, "/api/email/check", nil)
			require.Equal(t, http.StatusOK, w.Code)

			resp := decodeJSONBody[EmailCheckResponse](t, w)
			assert.Equal(t, tt.wantSuccess, resp.Success)
			assert.Equal(t, tt.wantEnabled, resp.EmailEnabled)
			assert.NotEmpty(t, resp.Message)
		})
	}
}
