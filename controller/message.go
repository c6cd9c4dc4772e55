package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sheabot/model"
	"sheabot/service"
)

// MessageController handles sending, editing and deleting messages.
type MessageController struct {
	chat *service.ChatService
}

func NewMessageController(chat *service.ChatService) *MessageController {
	return &MessageController{chat: chat}
}

func (ctrl *MessageController) Send(c *gin.Context) {
	var input struct {
		ConversationId string `json:"conversation_id"`
		Content        string `json:"content" binding:"required,max=10000"`
		AIProvider     string `json:"ai_provider"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		return
	}

	providerId, err := service.ParseProviderID(input.AIProvider)
	if err != nil {
		logger.Warnf("[%s] Invalid provider, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ctrl.chat.SendMessage(c.Request.Context(), currentUser(c), input.ConversationId, input.Content, providerId)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message content is required"})
		case errors.Is(err, model.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		case errors.Is(err, model.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		default:
			logger.Warnf("[%s] send message error, %s", c.GetString("requestId"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ownedMessage loads a message and enforces ownership through its owning
// conversation, writing the 404/403 response itself on failure.
func ownedMessage(c *gin.Context, id string) (*model.Message, bool) {
	message, err := messageStore.Get(id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Message not found"})
		} else {
			logger.Warnf("[%s] fetch message error, %s", c.GetString("requestId"), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return nil, false
	}

	conversation, err := conversationStore.Get(message.ConversationId)
	if err != nil {
		// A missing owning conversation reads as not-owned, but a store
		// failure is not an authorization verdict.
		if errors.Is(err, model.ErrNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
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
	return message, true
}

// Update edits message content. Role is immutable and not accepted here.
func (ctrl *MessageController) Update(c *gin.Context) {
	var input struct {
		Content string `json:"content" binding:"required,max=10000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	message, ok := ownedMessage(c, c.Param("id"))
	if !ok {
		return
	}

	if err := messageStore.UpdateContent(message.ID, input.Content); err != nil {
		logger.Warnf("[%s] update message error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	message.Content = input.Content
	c.JSON(http.StatusOK, message)
}

func (ctrl *MessageController) Delete(c *gin.Context) {
	message, ok := ownedMessage(c, c.Param("id"))
	if !ok {
		return
	}

	if err := messageStore.Delete(message.ID); err != nil {
		logger.Warnf("[%s] delete message error, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
