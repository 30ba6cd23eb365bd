package service

import (
	"context"
	"fmt"
	"time"

	"github.com/JamesCAlger/social-media-sub002/internal/domain"
	"github.com/JamesCAlger/social-media-sub002/internal/logger"
	"github.com/JamesCAlger/social-media-sub002/internal/repository"
)

// LayerResult carries the artifact columns a layer produced. The runner
// writes them on the content row together with the layer's target status.
type LayerResult struct {
	Fields map[string]interface{}
}

// LayerExecutor runs one pipeline layer for a content item. Executors do
// not write content status themselves; the runner owns all bookkeeping.
type LayerExecutor interface {
	Layer() domain.Layer
	Execute(ctx context.Context, content *domain.Content, account *domain.Account) (*LayerResult, error)
}

// LayerRunner wraps layer execution with processing log and status
// bookkeeping.
type LayerRunner struct {
	contents *repository.ContentRepository
	logs     *repository.ProcessingLogRepository
}

// NewLayerRunner creates a LayerRunner.
func NewLayerRunner(contents *repository.ContentRepository, logs *repository.ProcessingLogRepository) *LayerRunner {
	return &LayerRunner{
		contents: contents,
		logs:     logs,
	}
}

// Run executes one layer for a content item.
//
// On success the order is fixed: append a running log row, execute, write
// artifacts together with the target status on the content, then mark the
// log row completed. The content write lands before the log completion so
// a crash between the two re-runs the layer instead of skipping it.
//
// On failure the log row is marked failed, the content moves to failed
// carrying the failure reason, and the returned error wraps
// domain.ErrStageExecution.
func (r *LayerRunner) Run(ctx context.Context, content *domain.Content, account *domain.Account, exec LayerExecutor) error {
	layer := exec.Layer()
	target, ok := domain.LayerTarget(layer)
	if !ok {
		return fmt.Errorf("unknown layer %q", layer)
	}

	ctx = logger.SetLayer(ctx, string(layer))
	logRow, err := r.logs.Append(ctx, content.ID, layer)
	if err != nil {
		return fmt.Errorf("failed to append processing log: %w", err)
	}

	logger.CtxInfo(ctx, "Layer started")
	start := time.Now()

	result, execErr := exec.Execute(ctx, content, account)
	if execErr != nil {
		return r.fail(ctx, content, logRow.ID, layer, execErr)
	}

	var fields map[string]interface{}
	if result != nil {
		fields = result.Fields
	}
	if content.Status == target {
		// Crash recovery: the status write landed but the log row never
		// completed, so the layer ran again. Re-apply artifacts only.
		if len(fields) > 0 {
			if err := r.contents.UpdateFields(ctx, content.ID, fields); err != nil {
				return r.fail(ctx, content, logRow.ID, layer, err)
			}
		}
	} else if err := r.contents.Transition(ctx, content, target, fields); err != nil {
		return r.fail(ctx, content, logRow.ID, layer, err)
	}
	if err := r.logs.Complete(ctx, logRow.ID); err != nil {
		return fmt.Errorf("failed to complete processing log: %w", err)
	}

	logger.With(logger.Fields{
		logger.FieldStatus: string(content.Status),
	}).WithDuration(time.Since(start).Milliseconds()).Info(ctx, "Layer completed")

	return nil
}

// fail records the failure on both the log row and the content. Bookkeeping
// errors are logged rather than returned so the execution error survives.
func (r *LayerRunner) fail(ctx context.Context, content *domain.Content, logID uint, layer domain.Layer, cause error) error {
	if err := r.logs.Fail(ctx, logID, cause.Error()); err != nil {
		logger.CtxError(ctx, "Failed to mark log row failed: %v", err)
	}
	if content.Status != domain.ContentStatusFailed {
		err := r.contents.Transition(ctx, content, domain.ContentStatusFailed, map[string]interface{}{
			"failure_reason": cause.Error(),
		})
		if err != nil {
			logger.CtxError(ctx, "Failed to move content to failed: %v", err)
		}
	}

	logger.CtxError(ctx, "Layer failed: %v", cause)
	return fmt.Errorf("%w: %s: %v", domain.ErrStageExecution, layer, cause)
}
