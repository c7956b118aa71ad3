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

type recordServiceStub struct {
	records   []models.Record
	filter    dto.ListFilter
	edit      dto.EditRequest
	deletedID int64
	vote      dto.VoteRequest
	err       error
}

func (s *recordServiceStub) List(_ context.Context, filter dto.ListFilter) ([]models.Record, error) {
	s.filter = filter
	return s.records, s.err
}

func (s *recordServiceStub) Edit(_ context.Context, req dto.EditRequest) (*models.Record, error) {
	s.edit = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Record{ID: req.ID.Value}, nil
}

func (s *recordServiceStub) Delete(_ context.Context, id int64) error {
	s.deletedID = id
	return s.err
}

func (s *recordServiceStub) Vote(_ context.Context, req dto.VoteRequest) (*models.VoteTally, error) {
	s.vote = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.VoteTally{Likes: 1}, nil
}

func TestRecordListParsesYear(t *testing.T) {
	stub := &recordServiceStub{records: []models.Record{{ID: 1, Kind: models.KindVideo}}}
	h := NewRecordHandler(stub)

	w := serve(h.List, httptest.NewRequest(http.MethodGet, "/get-files?year=3", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, stub.filter.Year)
	assert.Equal(t, 3, *stub.filter.Year)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = serve(h.List, httptest.NewRequest(http.MethodGet, "/get-files?annee=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordListTreatsZeroYearAsNoFilter(t *testing.T) {
	stub := &recordServiceStub{records: []models.Record{{ID: 1, Kind: models.KindVideo}}}
	h := NewRecordHandler(stub)

	w := serve(h.List, httptest.NewRequest(http.MethodGet, "/get-files?annee=0", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, stub.filter.Year)
}

func TestRecordEditBindsLegacyFields(t *testing.T) {
	stub := &recordServiceStub{}
	h := NewRecordHandler(stub)
	req := httptest.NewRequest(http.MethodPost, "/edit-file", strings.NewReader(`{"id":"4","cours":"Physique","annee":"1"}`))
	req.Header.Set("Content-Type", "application/json")

	w := serve(h.Edit, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.Int(4), stub.edit.ID)
	assert.Equal(t, "Physique", stub.edit.Course)
	assert.Equal(t, dto.Int(1), stub.edit.Year)
}

func TestRecordDeleteStatusCodes(t *testing.T) {
	stub := &recordServiceStub{}
	h := NewRecordHandler(stub)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/delete-file/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	h.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, int64(7), stub.deletedID)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/delete-file/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "x"}}
	h.Delete(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stub.err = appErrors.Clone(appErrors.ErrNotFound, "record not found")
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/delete-file/8", nil)
	c.Params = gin.Params{{Key: "id", Value: "8"}}
	h.Delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordVoteResolvesVoter(t *testing.T) {
	stub := &recordServiceStub{}
	h := NewRecordHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/vote", strings.NewReader(`{"id":1,"vote":"like","voterId":"body-id"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: VoterCookie, Value: "cookie-id"})
	w := serve(h.Vote, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body-id", stub.vote.VoterID)
	assert.JSONEq(t, `{"data":{"likes":1,"dislikes":0}}`, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/vote", strings.NewReader(`{"id":1,"vote":"like"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: VoterCookie, Value: "cookie-id"})
	serve(h.Vote, req)
	assert.Equal(t, "cookie-id", stub.vote.VoterID)

	req = httptest.NewRequest(http.MethodPost, "/vote", strings.NewReader(`{"id":1,"vote":"like"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.9:4000"
	serve(h.Vote, req)
	assert.Equal(t, "203.0.113.9", stub.vote.VoterID)
}
