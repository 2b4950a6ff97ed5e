package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"snaplink/internal/mocks"
	"snaplink/internal/models"
)

func setupContactRouter(handler *ContactHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Next()
	})
	r.GET("/contacts", handler.ListContacts)
	r.POST("/contacts", handler.AddContact)
	r.GET("/contacts/search", handler.SearchProfiles)
	return r
}

func TestListContactsSuccess(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	handler := NewContactHandler(contactRepo, testHub())
	router := setupContactRouter(handler)

	contactRepo.On("ListContacts", mock.Anything, "alice").
		Return([]models.Profile{{ID: "bob", Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Contacts []models.Profile `json:"contacts"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Contacts, 1)
	contactRepo.AssertExpectations(t)
}

func TestAddContactInserted(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	handler := NewContactHandler(contactRepo, testHub())
	router := setupContactRouter(handler)

	contactRepo.On("AddContact", mock.Anything, "alice", "bob").Return(true, nil).Once()

	body := bytes.NewBufferString(`{"contact_id":"bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/contacts", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"inserted":true`)
	contactRepo.AssertExpectations(t)
}

func TestAddContactDuplicateIsBenign(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	handler := NewContactHandler(contactRepo, testHub())
	router := setupContactRouter(handler)

	contactRepo.On("AddContact", mock.Anything, "alice", "bob").Return(false, nil).Once()

	body := bytes.NewBufferString(`{"contact_id":"bob"}`)
	req := httptest.NewRequest(http.MethodPost, "/contacts", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"inserted":false`)
}

func TestAddContactSelfRejected(t *testing.T) {
	handler := NewContactHandler(new(mocks.ContactRepositoryMock), testHub())
	router := setupContactRouter(handler)

	body := bytes.NewBufferString(`{"contact_id":"alice"}`)
	req := httptest.NewRequest(http.MethodPost, "/contacts", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchProfilesEmptyQuery(t *testing.T) {
	handler := NewContactHandler(new(mocks.ContactRepositoryMock), testHub())
	router := setupContactRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/contacts/search?q=", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"profiles":[]`)
}

func TestSearchProfilesExcludesSelf(t *testing.T) {
	contactRepo := new(mocks.ContactRepositoryMock)
	handler := NewContactHandler(contactRepo, testHub())
	router := setupContactRouter(handler)

	contactRepo.On("SearchProfiles", mock.Anything, "bo", "alice", 20).
		Return([]models.Profile{{ID: "bob", Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/contacts/search?q=bo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	contactRepo.AssertExpectations(t)
}
