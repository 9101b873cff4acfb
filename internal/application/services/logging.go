package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/safetrail/server/internal/infrastructure/observability"
)

func logFromCtx(ctx context.Context) *zerolog.Logger {
	return observability.LoggerFromContext(ctx)
}
