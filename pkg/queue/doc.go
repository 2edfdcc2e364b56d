// Package queue implements a database-backed task queue with typed
// handlers, retries with backoff, a dead letter queue, and periodic
// scheduling.
//
// Payload types double as routing keys: enqueueing a value routes it to the
// handler registered for that type, with no string constants to keep in
// sync:
//
//	type SendCampaign struct {
//		CampaignID string `json:"campaign_id"`
//	}
//
//	enqueuer, _ := queue.NewEnqueuer(repo)
//	_ = enqueuer.Enqueue(ctx, SendCampaign{CampaignID: id})
//
//	worker, _ := queue.NewWorker(repo, queue.WithMaxConcurrentTasks(10))
//	_ = worker.RegisterHandler(queue.NewTaskHandler(
//		func(ctx context.Context, payload SendCampaign) error {
//			// deliver the campaign
//			return nil
//		}))
//
// PostgresRepository is the production backend; claims go through FOR
// UPDATE SKIP LOCKED so any number of workers can share one table.
// MemoryStorage backs tests and local development. A Scheduler creates
// periodic tasks (hourly, daily, weekly, or fixed interval) that workers
// process like any other task.
//
// Failed tasks retry with linear backoff until MaxRetries, then land in the
// dead letter queue for inspection and manual requeueing.
package queue
