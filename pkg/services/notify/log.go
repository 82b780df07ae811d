package notify

import (
	"context"

	"github.com/de-tools/tagwarden/pkg/models/domain"
	"github.com/rs/zerolog"
)

type logNotifier struct{}

// NewLogNotifier writes the rendered report to the context logger; used when no topic is configured
func NewLogNotifier() *logNotifier {
	return &logNotifier{}
}

func (n *logNotifier) Publish(ctx context.Context, run *domain.RunReport) error {
	body, err := Render(run)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("report", body).Msg("no notification topic configured, report logged")
	return nil
}
