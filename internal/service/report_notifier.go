package service

import "sync"

// ReportNotifier wakes waiting report viewers the moment synthesis
// publishes a finished report, so they do not sit out a full poll
// interval.
type ReportNotifier struct {
	mu      sync.Mutex
	waiters map[uint][]chan struct{}
}

func NewReportNotifier() *ReportNotifier {
	return &ReportNotifier{waiters: make(map[uint][]chan struct{})}
}

// Subscribe returns a channel that closes when the report for the given
// interview is published, plus a cancel func the caller must invoke when
// it stops waiting.
func (n *ReportNotifier) Subscribe(interviewID uint) (<-chan struct{}, func()) {
	ch := make(chan struct{})
	n.mu.Lock()
	n.waiters[interviewID] = append(n.waiters[interviewID], ch)
	n.mu.Unlock()

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		chans := n.waiters[interviewID]
		for i, c := range chans {
			if c == ch {
				n.waiters[interviewID] = append(chans[:i], chans[i+1:]...)
				break
			}
		}
		if len(n.waiters[interviewID]) == 0 {
			delete(n.waiters, interviewID)
		}
	}
	return ch, cancel
}

// Publish releases every waiter for the interview. Safe to call with no
// subscribers.
func (n *ReportNotifier) Publish(interviewID uint) {
	n.mu.Lock()
	chans := n.waiters[interviewID]
	delete(n.waiters, interviewID)
	n.mu.Unlock()

	for _, ch := range chans {
		close(ch)
	}
}
