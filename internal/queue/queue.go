// Package queue holds the ordered set of pending consultation requests and the
// cursor the operator moves across them. It is only ever touched from the tick
// goroutine, so it carries no locking.
package queue

import "faculty-desk-unit/internal/model"

// Queue is an insertion-ordered, id-deduplicated sequence of requests plus a
// cursor used for local display selection.
type Queue struct {
	items  []model.ConsultationRequest
	cursor int
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Upsert inserts a new request or replaces an existing one in place. A request
// with a known id keeps its position and the cursor does not move; a brand-new
// id is appended and the cursor snaps to it. Returns true for an insert,
// false for an in-place update.
func (q *Queue) Upsert(req model.ConsultationRequest) bool {
	for i := range q.items {
		if q.items[i].ID == req.ID {
			q.items[i] = req
			return false
		}
	}
	q.items = append(q.items, req)
	q.cursor = len(q.items) - 1
	return true
}

// AdvanceCursor moves the selection to the next request, wrapping around.
// No-op on an empty queue.
func (q *Queue) AdvanceCursor() {
	if len(q.items) == 0 {
		return
	}
	q.cursor = (q.cursor + 1) % len(q.items)
}

// Current returns the request under the cursor, or false when empty.
func (q *Queue) Current() (model.ConsultationRequest, bool) {
	if len(q.items) == 0 {
		return model.ConsultationRequest{}, false
	}
	return q.items[q.cursor], true
}

// CompleteCurrent removes the request under the cursor and returns its id so
// the caller can emit a completion notification. The cursor is clamped to
// cursor mod max(1, new length). Returns false when the queue is empty.
func (q *Queue) CompleteCurrent() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	id := q.items[q.cursor].ID
	q.items = append(q.items[:q.cursor], q.items[q.cursor+1:]...)
	if len(q.items) == 0 {
		q.cursor = 0
	} else {
		q.cursor = q.cursor % len(q.items)
	}
	return id, true
}

// Len reports the number of pending requests.
func (q *Queue) Len() int {
	return len(q.items)
}

// Cursor reports the current selection index. Only meaningful when Len() > 0.
func (q *Queue) Cursor() int {
	return q.cursor
}
