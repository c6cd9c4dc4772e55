package controller

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"sheabot/service"
)

const defaultFAQFile = "data/faqs.json"

// FAQController handles the FAQ bulk-import boundary.
type FAQController struct {
	faq *service.FAQService
}

func NewFAQController(faq *service.FAQService) *FAQController {
	return &FAQController{faq: faq}
}

func (ctrl *FAQController) Import(c *gin.Context) {
	var input struct {
		FilePath string `json:"file_path"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		logger.Warnf("[%s] Invalid input, %s", c.GetString("requestId"), err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if input.FilePath == "" {
		input.FilePath = defaultFAQFile
	}

	result, err := ctrl.faq.ImportFromFile(c.Request.Context(), input.FilePath)
	if err != nil {
		logger.Warnf("[%s] FAQ import error, %s", c.GetString("requestId"), err)
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "FAQ file not found at " + input.FilePath})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "FAQ import finished",
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"pending":  result.Pending,
	})
}
