package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"sheabot/model"
)

// ConversationController handles the conversation CRUD surface.
type ConversationController struct{}

var (
	conversationStore = model.ConversationStore{}
	messageStore      = model.MessageStore{}
)

// ownedConversation loads a conversation and enforces ownership, writing
// the 404/403 response itself when the check fails.
func ownedConversation(c *gin.Context, id string) (*model.Conversation, bool) {
	conversation, err := conversationStore.Get(id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		} else {
			logger.Warnf("[%s] fetch conversation error, %s", c.GetString("requestId"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}
	if conversation.UserId != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return conversation, true
}

func (ctrl ConversationController) List(c *gin.Context) {
	conversations, err := conversationStore.ListByUser(currentUser(c))
	if err != nil {
		logger.Warnf("[%s] list conversations error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, conversations)
}

func (ctrl ConversationController) Create(c *gin.Context) {
	var input struct {
		Title string `json:"title" binding:"omitempty,max=200"`
	}
	// An absent body is allowed and falls through to the default title.
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	conversation := &model.Conversation{
		UserId: currentUser(c),
		Title:  input.Title,
	}
	if err := conversationStore.Create(conversation); err != nil {
		logger.Warnf("[%s] create conversation error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusCreated, conversation)
}

func (ctrl ConversationController) Get(c *gin.Context) {
	conversation, ok := ownedConversation(c, c.Param("id"))
	if !ok {
		return
	}

	messages, err := messageStore.List(conversation.ID)
	if err != nil {
		logger.Warnf("[%s] list messages error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":              conversation.ID,
		"user_id":         conversation.UserId,
		"title":           conversation.Title,
		"last_message_at": conversation.LastMessageAt,
		"created_at":      conversation.CreatedAt,
		"updated_at":      conversation.UpdatedAt,
		"messages":        messages,
	})
}

func (ctrl ConversationController) Rename(c *gin.Context) {
	var input struct {
		Title string `json:"title" binding:"required,max=200"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	conversation, ok := ownedConversation(c, c.Param("id"))
	if !ok {
		return
	}

	if err := conversationStore.UpdateTitle(conversation.ID, input.Title); err != nil {
		logger.Warnf("[%s] rename conversation error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	conversation.Title = input.Title
	c.JSON(http.StatusOK, conversation)
}

func (ctrl ConversationController) Delete(c *gin.Context) {
	conversation, ok := ownedConversation(c, c.Param("id"))
	if !ok {
		return
	}

	if err := conversationStore.Delete(conversation.ID); err != nil {
		logger.Warnf("[%s] delete conversation error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}
