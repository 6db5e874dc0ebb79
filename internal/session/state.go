package session

import "sync"

// State is a snapshot of a Session's observable values.
type State struct {
	// Text is the text of the most recent successful recognition.
	Text string `json:"text"`

	// Confidence is the confidence of the most recent successful
	// recognition (0-100).
	Confidence float64 `json:"confidence"`

	// Recognizing is true while a Recognize call is running.
	Recognizing bool `json:"recognizing"`

	// Initialized is true while the Session holds a worker.
	Initialized bool `json:"initialized"`

	// Languages is the language spec of the current worker, if any.
	Languages string `json:"languages,omitempty"`

	// WorkerID identifies the current worker. Every Initialize, and every
	// lazy initialization, produces a new ID.
	WorkerID string `json:"worker_id,omitempty"`
}

// Subscribe returns a channel that receives a State snapshot after every
// change, starting with the current state, and a function that ends the
// subscription and closes the channel.
//
// Delivery keeps only the latest snapshot: a slow reader sees the most
// recent state, not every intermediate one. Sends never block the Session.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = ch
	ch <- s.state
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.observers, id)
			close(ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel
}

// publish delivers the current state to every observer. Caller holds s.mu.
func (s *Session) publish() {
	for _, ch := range s.observers {
		select {
		case ch <- s.state:
		default:
			// Replace the stale snapshot. Only publish sends, and it runs
			// under s.mu, so the buffer has room after the drain.
			select {
			case <-ch:
			default:
			}
			ch <- s.state
		}
	}
}
