package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/syntheses-api/internal/dto"
)

type contactServiceStub struct {
	req dto.ContactRequest
}

func (s *contactServiceStub) Ask(_ context.Context, req dto.ContactRequest) error {
	s.req = req
	return nil
}

func TestContactAskAcceptsForm(t *testing.T) {
	stub := &contactServiceStub{}
	h := NewContactHandler(stub)
	form := url.Values{"nomDiscordQuestion": {"carol"}, "message": {"Bonjour"}}
	req := httptest.NewRequest(http.MethodPost, "/ask-question", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := serve(h.Ask, req)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "carol", stub.req.Handle())
	assert.Equal(t, "Bonjour", stub.req.Message)
}
