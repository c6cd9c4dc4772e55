package service

import (
	"context"
	"time"
)

// ReembedPendingFAQsTask is the cron entry point: FAQ entries whose import
// failed to produce an embedding regain retrieval candidacy here.
func ReembedPendingFAQsTask(faqService *FAQService) {
	logger.Infof("[%s] Start scheduled task ReembedPendingFAQsTask", "scheduled task")
	startTime := time.Now()

	embedded, err := faqService.ReembedPending(context.Background())
	if err != nil {
		logger.Warnf("[%s] re-embed task error, %s", "scheduled task", err)
		return
	}

	duration := time.Since(startTime)
	logger.Infof("[%s] Finished scheduled task ReembedPendingFAQsTask, embedded %d entries in %v",
		"scheduled task", embedded, duration)
}
