package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/syntheses-api/internal/dto"
	"github.com/noah-isme/syntheses-api/internal/models"
	appErrors "github.com/noah-isme/syntheses-api/pkg/errors"
)

type journalServiceStub struct {
	added     dto.MessageRequest
	deleted   []int64
	cleared   bool
	deleteErr error
}

func (s *journalServiceStub) AddMessage(_ context.Context, req dto.MessageRequest) (*models.ChatEntry, error) {
	s.added = req
	return &models.ChatEntry{ID: 1, Author: req.Author, Message: req.Message}, nil
}

func (s *journalServiceStub) ListMessages(context.Context) ([]models.ChatEntry, error) {
	return []models.ChatEntry{{ID: 1, Author: "alice", Message: "hi"}}, nil
}

func (s *journalServiceStub) DeleteMessage(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func (s *journalServiceStub) ListLogs(context.Context) ([]models.LogEntry, error) {
	return []models.LogEntry{}, nil
}

func (s *journalServiceStub) DeleteLog(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)
	return s.deleteErr
}

func (s *journalServiceStub) DeleteAllLogs(context.Context) error {
	s.cleared = true
	return nil
}

func TestJournalAddMessage(t *testing.T) {
	stub := &journalServiceStub{}
	h := NewJournalHandler(stub)
	req := httptest.NewRequest(http.MethodPost, "/add-message", strings.NewReader(`{"nom":"alice","message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(h.AddMessage, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "alice", stub.added.Author)
	assert.Contains(t, w.Body.String(), `"nom":"alice"`)
}

func TestJournalListMessages(t *testing.T) {
	h := NewJournalHandler(&journalServiceStub{})

	w := serve(h.ListMessages, httptest.NewRequest(http.MethodGet, "/get-messages", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":1,"date":"","nom":"alice","message":"hi"}]}`, w.Body.String())
}

func TestJournalDeleteLogNotFound(t *testing.T) {
	stub := &journalServiceStub{deleteErr: appErrors.Clone(appErrors.ErrNotFound, "entry not found")}
	h := NewJournalHandler(stub)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/delete-log/3", nil)
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	h.DeleteLog(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, []int64{3}, stub.deleted)
}

func TestJournalDeleteAllLogs(t *testing.T) {
	stub := &journalServiceStub{}
	h := NewJournalHandler(stub)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/delete-all-logs", nil)
	h.DeleteAllLogs(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.True(t, stub.cleared)
}
