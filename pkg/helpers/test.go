package helpers

import (
	"context"

	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

// TestCtx returns a context carrying a test logger.
func TestCtx() context.Context {
	return logger.ToContext(context.Background(), logger.Discard())
}
