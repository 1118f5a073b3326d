package reactive

// Batch groups multiple reactive writes into a single notification phase.
// Triggers raised inside fn are collected, deduplicated by subscriber ID,
// and delivered once when the outermost batch completes.
//
// Batches nest; notifications fire only when the outermost batch exits.
//
// Example:
//
//	Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	    age.Set(36)
//	})
//	// Dependents are notified once with all three changes applied.
func Batch(fn func()) {
	incrementBatchDepth()

	defer func() {
		if decrementBatchDepth() {
			deliverPendingTriggers()
		}
	}()

	fn()
}

// deliverPendingTriggers deduplicates and notifies the queued subscribers.
func deliverPendingTriggers() {
	pending := drainPendingTriggers()
	if len(pending) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(pending))
	for _, sub := range pending {
		id := sub.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		sub.Invalidate()
	}
}
