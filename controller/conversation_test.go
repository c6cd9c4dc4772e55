package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sheabot/model"
	"sheabot/platform"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Conversation{}, &model.Message{}, &model.FAQ{}))
	platform.DB = db
	return db
}

// newTestRouter wires the CRUD handlers behind a fixed guest identity.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(identityKey, guestUserID)
		c.Next()
	})

	conversation := new(ConversationController)
	message := NewMessageController(nil)
	r.GET("/conversations/:id", conversation.Get)
	r.POST("/conversations", conversation.Create)
	r.DELETE("/conversations/:id", conversation.Delete)
	r.PATCH("/messages/:id", message.Update)
	r.DELETE("/messages/:id", message.Delete)
	return r
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateConversationWithoutBody(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := doRequest(r, http.MethodPost, "/conversations", "")
	require.Equal(t, http.StatusCreated, w.Code)

	var got model.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, model.DefaultConversationTitle, got.Title)
	assert.Equal(t, guestUserID, got.UserId)
	assert.NotEmpty(t, got.ID)
}

func TestCreateConversationWithTitle(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	w := doRequest(r, http.MethodPost, "/conversations", `{"title":"My chat"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var got model.Conversation
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "My chat", got.Title)
}

func TestDeleteConversationThenFetch(t *testing.T) {
	setupTestDB(t)
	r := newTestRouter()

	conversation := &model.Conversation{UserId: guestUserID, Title: "doomed"}
	require.NoError(t, conversationStore.Create(conversation))
	for i := 0; i < 2; i++ {
		require.NoError(t, messageStore.Create(&model.Message{
			ConversationId: conversation.ID,
			Role:           model.RoleUser,
			Content:        "hello",
		}))
	}

	w := doRequest(r, http.MethodDelete, "/conversations/"+conversation.ID, "")
	require.Equal(t, http.StatusOK, w.Code)

	// The conversation reports not-found afterwards and no messages remain.
	w = doRequest(r, http.MethodGet, "/conversations/"+conversation.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	remaining, err := messageStore.List(conversation.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
