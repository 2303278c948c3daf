package search

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"greptui/internal/domain"
	"greptui/internal/eventbus"
	"greptui/internal/logging"
)

// Service runs searches in the background and hands their outcomes back to
// the UI loop. Submit and Poll must be called from one goroutine;
// only the search goroutines run elsewhere and they communicate through
// channels.
type Service struct {
	search SearchFunc
	bus    eventbus.EventBus
	log    *logrus.Entry

	latest uint64
	cancel context.CancelFunc

	outcomes chan domain.SearchOutcome
	ready    chan struct{}
	done     chan struct{}
	closed   bool
}

// NewService creates a runner around fn
func NewService(fn SearchFunc, bus eventbus.EventBus) *Service {
	if bus == nil {
		bus = eventbus.NullBus{}
	}
	return &Service{
		search:   fn,
		bus:      bus,
		log:      logging.NewLogger("search"),
		outcomes: make(chan domain.SearchOutcome, 8),
		ready:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Submit starts req in the background and returns immediately. The previous
// request, if still running, is cancelled and its outcome will never be
// returned by Poll.
func (s *Service) Submit(req domain.SearchRequest) {
	if s.closed {
		return
	}
	if s.cancel != nil {
		s.cancel()
	}
	if req.Seq <= s.latest {
		s.log.WithFields(logrus.Fields{"seq": req.Seq, "latest": s.latest}).Warn("non-increasing sequence number")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.latest = req.Seq
	q := req.Query.Clone()

	s.log.WithFields(logrus.Fields{"seq": req.Seq, "pattern": q.Pattern, "flags": q.Flags.List()}).Debug("search submitted")
	s.bus.Publish(eventbus.SearchSubmittedEvent{Seq: req.Seq, Query: q})

	go s.run(ctx, req.Seq, q)
}

func (s *Service) run(ctx context.Context, seq uint64, q domain.Query) {
	outcome := s.execute(ctx, seq, q)
	if ctx.Err() != nil {
		// superseded or closed; nobody wants this outcome
		s.log.WithField("seq", seq).Debug("search abandoned")
		return
	}

	select {
	case s.outcomes <- outcome:
	case <-s.done:
		return
	}
	select {
	case s.ready <- struct{}{}:
	default:
	}
}

func (s *Service) execute(ctx context.Context, seq uint64, q domain.Query) (outcome domain.SearchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("seq", seq).Errorf("search panic: %v\n%s", r, debug.Stack())
			outcome = domain.SearchOutcome{Seq: seq, Status: domain.OutcomeFailed, Message: fmt.Sprintf("internal error: %v", r)}
		}
	}()

	res, err := s.search(ctx, q)
	if err != nil {
		return domain.SearchOutcome{Seq: seq, Status: domain.OutcomeFailed, Message: err.Error()}
	}
	return domain.SearchOutcome{Seq: seq, Status: domain.OutcomeSuccess, Lines: res.Lines, Truncated: res.Truncated}
}

// Poll returns the outcome of the latest request if it has arrived. Outcomes
// of superseded requests are dropped. It never blocks.
func (s *Service) Poll() (domain.SearchOutcome, bool) {
	var (
		found  domain.SearchOutcome
		gotOne bool
	)
	for {
		select {
		case o := <-s.outcomes:
			if o.Seq != s.latest {
				s.log.WithFields(logrus.Fields{"seq": o.Seq, "latest": s.latest}).Debug("dropping stale outcome")
				s.bus.Publish(eventbus.SearchDiscardedEvent{Seq: o.Seq, Latest: s.latest})
				continue
			}
			found, gotOne = o, true
		default:
			if !gotOne {
				return domain.SearchOutcome{}, false
			}
			s.log.WithFields(logrus.Fields{"seq": found.Seq, "status": found.Status, "lines": len(found.Lines)}).Debug("search outcome")
			return found, true
		}
	}
}

// Ready signals that an outcome may be waiting. A receive does not
// guarantee that Poll returns one: the outcome may have been stale.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Done is closed by Close
func (s *Service) Done() <-chan struct{} {
	return s.done
}

// Close cancels the running search and stops delivering outcomes
func (s *Service) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	close(s.done)
}
