package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// LogHooks returns lifecycle hooks that write an audit trail of a run.
// Step entries and restarts are logged at Info, the rest at Debug.
// Failures are not repeated here: the engine already logs them.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	at := func(level slog.Level) func(*domain.StepEvent) {
		return func(e *domain.StepEvent) {
			logger.Log(context.Background(), level, string(e.Type), "step_id", e.StepID, "kind", e.StepKind)
		}
	}
	return domain.LifecycleHooks{
		OnStepEnter: at(slog.LevelInfo),
		OnStepLeave: at(slog.LevelDebug),
		OnBack:      at(slog.LevelDebug),
		OnRestart:   at(slog.LevelInfo),
	}
}
