package main

import (
	"fmt"
	"os"
	"time"

	_uuid "github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"sheabot/controller"
	"sheabot/model"
	"sheabot/platform"
	"sheabot/service"
)

// CORSMiddleware ...
// CORS (Cross-Origin Resource Sharing)
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Origin, Authorization, Accept, Client-Security-Token, Accept-Encoding, x-access-token")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
		} else {
			c.Next()
		}
	}
}

// RequestIDMiddleware ...
// Generate a unique ID and attach it to each request for future reference or use
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uuid := _uuid.New()
		c.Writer.Header().Set("X-Request-Id", uuid.String())
		c.Set("requestId", uuid.String())
		c.Next()
	}
}

func LogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery
		if raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		clientIP := c.ClientIP()
		method := c.Request.Method
		userAgent := c.Request.UserAgent()
		requestId := c.GetString("requestId")

		logrus.Infof(
			" [%s] %d | %v | %s | %s | %s | %s ",
			requestId,
			status,
			latency,
			clientIP,
			method,
			path,
			userAgent,
		)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	fmt.Println("Server started...")

	//Load the .env file
	err := godotenv.Load(".env")
	if err != nil {
		fmt.Println("failed to load the env file")
	}

	r := gin.Default()
	r.Use(CORSMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LogMiddleware())

	//init database
	platform.InitDB()
	model.InstallDB()

	// Provider clients. Gemini is reached through its OpenAI-compatible
	// endpoint, so both providers share one client implementation.
	openaiClient := platform.NewLLMClient(os.Getenv("OPENAI_BASE_URL"), os.Getenv("OPENAI_API_KEY"))
	geminiClient := platform.NewLLMClient(
		envOr("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		os.Getenv("GEMINI_API_KEY"))

	embedder := service.NewOpenAIEmbedder(openaiClient, os.Getenv("OPENAI_EMBEDDING_MODEL"))
	retrieval := service.NewRetrievalEngine(embedder, model.FAQStore{})
	providers := map[service.ProviderID]service.CompletionProvider{
		service.ProviderOpenAI: service.NewLLMProvider(service.ProviderOpenAI, openaiClient, envOr("OPENAI_MODEL", "gpt-4o-mini")),
		service.ProviderGemini: service.NewLLMProvider(service.ProviderGemini, geminiClient, envOr("GEMINI_MODEL", "gemini-2.0-flash-exp")),
	}

	chatService := service.NewChatService(model.ConversationStore{}, model.MessageStore{}, retrieval, providers)
	faqService := service.NewFAQService(model.FAQStore{}, embedder)
	userService := service.NewUserService(service.NewMailService())

	auth := new(controller.AuthController)
	user := controller.NewUserController(userService)
	conversation := new(controller.ConversationController)
	message := controller.NewMessageController(chatService)
	faq := controller.NewFAQController(faqService)

	v1 := r.Group("/v1")
	v1.Use(auth.Identity())
	{
		v1.POST("/user/register", user.Register)
		v1.POST("/user/login", user.Login)
		v1.POST("/user/reset-password", user.ResetRequest)
		v1.POST("/user/reset-password/confirm", user.ResetConfirm)

		//Refresh the token
		v1.POST("/token/refresh", auth.Refresh)

		v1.GET("/conversations", conversation.List)
		v1.POST("/conversations", conversation.Create)
		v1.GET("/conversations/:id", conversation.Get)
		v1.PATCH("/conversations/:id", conversation.Rename)
		v1.DELETE("/conversations/:id", conversation.Delete)

		v1.POST("/messages", message.Send)
		v1.PATCH("/messages/:id", message.Update)
		v1.DELETE("/messages/:id", message.Delete)

		v1.POST("/faq/import", faq.Import)
	}

	c := cron.New()
	c.AddFunc("17 3 * * *", func() {
		service.ReembedPendingFAQsTask(faqService)
	})
	c.Start()

	port := os.Getenv("PORT")
	r.Run(":" + port)
}
