package handlers

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"snaplink/internal/mocks"
)

func setupMediaRouter(handler *MediaHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Next()
	})
	r.POST("/media/chat-image", handler.UploadChatImage)
	r.POST("/media/story-image", handler.UploadStoryImage)
	r.POST("/media/chat-video", handler.UploadChatVideo)
	return r
}

func TestUploadChatImageSuccess(t *testing.T) {
	store := new(mocks.ObjectStorageMock)
	handler := NewMediaHandler(store)
	router := setupMediaRouter(handler)

	payload := base64.StdEncoding.EncodeToString([]byte("fake-jpeg-bytes"))
	store.On("Upload", mock.Anything, "chat", mock.Anything, int64(15), "image/jpeg").
		Return("https://cdn/chat/abc.jpg", nil).Once()

	body := bytes.NewBufferString(`{"data_url":"data:image/jpeg;base64,` + payload + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/media/chat-image", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"https://cdn/chat/abc.jpg"`)
	store.AssertExpectations(t)
}

func TestUploadStoryImageUsesStoriesPrefix(t *testing.T) {
	store := new(mocks.ObjectStorageMock)
	handler := NewMediaHandler(store)
	router := setupMediaRouter(handler)

	payload := base64.StdEncoding.EncodeToString([]byte("png"))
	store.On("Upload", mock.Anything, "stories", mock.Anything, int64(3), "image/png").
		Return("https://cdn/stories/x.png", nil).Once()

	body := bytes.NewBufferString(`{"data_url":"data:image/png;base64,` + payload + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/media/story-image", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestUploadChatImageRejectsPlainBase64(t *testing.T) {
	handler := NewMediaHandler(new(mocks.ObjectStorageMock))
	router := setupMediaRouter(handler)

	body := bytes.NewBufferString(`{"data_url":"bm90IGEgZGF0YSB1cmw="}`)
	req := httptest.NewRequest(http.MethodPost, "/media/chat-image", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadChatVideoSuccess(t *testing.T) {
	store := new(mocks.ObjectStorageMock)
	handler := NewMediaHandler(store)
	router := setupMediaRouter(handler)

	store.On("Upload", mock.Anything, "chat/videos", mock.Anything, mock.AnythingOfType("int64"), "video/mp4").
		Return("https://cdn/chat/videos/v.mp4", nil).Once()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="clip.mp4"`},
		"Content-Type":        {"video/mp4"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("fake-mp4"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/media/chat-video", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestUploadChatVideoRejectsNonVideo(t *testing.T) {
	handler := NewMediaHandler(new(mocks.ObjectStorageMock))
	router := setupMediaRouter(handler)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="pic.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/media/chat-video", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecodeDataURL(t *testing.T) {
	contentType, data, err := decodeDataURL("data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("hi")))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", contentType)
	assert.Equal(t, []byte("hi"), data)

	_, _, err = decodeDataURL("data:image/webp;base64,!!notbase64!!")
	require.Error(t, err)
}
