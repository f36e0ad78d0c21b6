// Package tasq provides a broker-backed, typed task queue.
//
// Producers submit typed task invocations (signatures) to a broker; workers
// pull them, rebuild the typed task, run it and store the result under the
// invocation id. Brokers are pluggable:
//
//   - memory   – in-process, for tests and single binaries
//   - fs       – any viant/afs storage (local files, mem://, cloud buckets)
//   - postgres – tables polled with SKIP LOCKED
//   - redis    – lists and hashes
//
// A typical application registers tasks, then shares the frozen registry
// between producers and workers:
//
//	srv, _ := tasq.New(ctx, tasq.WithConfig(cfg))
//	_ = tasq.Register[[]int, int](srv, sum)
//	w, _ := srv.NewWorker(ctx)
//	go w.Listen(ctx)
//	id, _ := tasq.Submit[[]int, int](ctx, srv, sum, []int{1, 2, 3})
//	result, _ := srv.App().WaitResult(ctx, id, 0)
package tasq
