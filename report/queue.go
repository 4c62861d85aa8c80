package report

import "context"

// DefaultQueueSize is the number of reports that can be pending.
const DefaultQueueSize = 64

// Queue carries reports from any number of producers to a single consumer, in FIFO order.
type Queue struct {
	ch chan string
}

// NewQueue returns a queue holding up to size pending reports.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{ch: make(chan string, size)}
}

// Put enqueues a report, waiting for room until ctx is done.
func (q *Queue) Put(ctx context.Context, report string) error {
	select {
	case q.ch <- report:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PutAll enqueues reports in order.
func (q *Queue) PutAll(ctx context.Context, reports ...string) error {
	for _, report := range reports {
		if err := q.Put(ctx, report); err != nil {
			return err
		}
	}
	return nil
}

// TryGet dequeues a report if one is pending.
func (q *Queue) TryGet() (string, bool) {
	select {
	case report := <-q.ch:
		return report, true
	default:
		return "", false
	}
}

// Get dequeues a report, waiting until one is available or ctx is done.
func (q *Queue) Get(ctx context.Context) (string, error) {
	select {
	case report := <-q.ch:
		return report, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Len is the number of pending reports.
func (q *Queue) Len() int {
	return len(q.ch)
}
