package jobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tigranv/moneta/internal/store"
)

// NewBulkDeleteHandler returns a JobHandler that runs bulk delete jobs
// against the given sink. Ids already deleted in a previous attempt are
// skipped on retry, so a retried job only re-touches its failures.
func NewBulkDeleteHandler(sink store.MutationSink, log zerolog.Logger) JobHandler {
	return func(ctx context.Context, job Job) error {
		bd, ok := job.(*BulkDeleteJob)
		if !ok {
			return fmt.Errorf("unexpected job type %q", job.GetType())
		}

		done := make(map[string]bool, len(bd.Deleted))
		for _, id := range bd.Deleted {
			done[id] = true
		}
		pending := make([]string, 0, len(bd.TransactionIDs))
		for _, id := range bd.TransactionIDs {
			if !done[id] {
				pending = append(pending, id)
			}
		}

		result := sink.BulkDeleteTransactions(ctx, pending, bd.Policy)
		bd.Deleted = append(bd.Deleted, result.Deleted...)
		bd.Failures = result.Failures

		log.Info().
			Str("job_id", bd.JobID).
			Int("deleted", len(result.Deleted)).
			Int("failed", len(result.Failures)).
			Msg("bulk delete attempt finished")

		if !result.Succeeded() {
			return fmt.Errorf("bulk delete: %s", result.FirstFailureMessage())
		}
		return nil
	}
}
