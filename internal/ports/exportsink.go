package ports

import (
	"context"

	"peopledir/internal/domain"
)

// ExportSink stores export files somewhere the user can pick them up
type ExportSink interface {
	// Write stores the file and returns where it ended up (path or URL)
	Write(ctx context.Context, file domain.ExportFile) (string, error)
}
