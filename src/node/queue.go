package node

// DutyQueue buffers the elder duties that arrive while a node is being
// promoted. It is drained exactly once, in arrival order.
type DutyQueue struct {
	duties  []ElderDuty
	drained bool
}

// NewDutyQueue ...
func NewDutyQueue() *DutyQueue {
	return &DutyQueue{}
}

// Enqueue appends a duty. It returns false once the queue was drained.
func (q *DutyQueue) Enqueue(d ElderDuty) bool {
	if q.drained {
		return false
	}
	q.duties = append(q.duties, d)
	return true
}

// Len ...
func (q *DutyQueue) Len() int {
	return len(q.duties)
}

// DrainInto feeds the queued duties to process, oldest first, and collects
// the duties it produces. A duty that fails is handed to failed and skipped;
// the rest of the queue is still drained.
func (q *DutyQueue) DrainInto(process func(ElderDuty) (NetworkDuties, error), failed func(ElderDuty, error)) NetworkDuties {
	if q.drained {
		return nil
	}

	var res NetworkDuties
	for _, d := range q.duties {
		out, err := process(d)
		if err != nil {
			failed(d, err)
			continue
		}
		res = append(res, out...)
	}

	q.duties = nil
	q.drained = true

	return res
}
