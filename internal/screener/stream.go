package screener

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the streaming screen's event kinds.
type EventType string

const (
	EventStart         EventType = "start"
	EventResult        EventType = "result"
	EventBatchComplete EventType = "batch_complete"
	EventComplete      EventType = "complete"
)

// Event is one streaming screen emission.
type Event struct {
	Type       EventType  `json:"type"`
	RunID      string     `json:"run_id"`
	Total      int        `json:"total,omitempty"`       // start: universe size
	Result     *Candidate `json:"result,omitempty"`      // result events
	BatchIndex int        `json:"batch_index,omitempty"` // batch_complete events
	Checked    int        `json:"checked,omitempty"`
	Found      int        `json:"found,omitempty"`
	Batch      *Batch     `json:"batch,omitempty"` // complete event
}

// DefaultStreamBatchSize is the sub-batch size when the caller passes zero.
const DefaultStreamBatchSize = 10

// StreamScreen runs the scan incrementally and emits events on the
// returned channel: one start, a result per passing instrument, a
// batch_complete after every sub-batch, and a final complete carrying the
// sorted batch. The channel is closed after complete. Cancellation is
// observed between sub-batches; an in-flight sub-batch finishes first.
//
// Streaming paces itself with a light per-instrument delay instead of the
// strict global gate, trading rate-budget precision for latency; the
// StreamUseGate knob restores the strict gate for deployments that need it.
func (s *Screener) StreamScreen(ctx context.Context, f Filters, batchSize int) <-chan Event {
	f = f.withDefaults()
	if batchSize <= 0 {
		batchSize = DefaultStreamBatchSize
	}

	events := make(chan Event)

	go func() {
		defer close(events)

		symbols := s.universe.Symbols()
		if s.cfg.MaxPerScreen > 0 && len(symbols) > s.cfg.MaxPerScreen {
			symbols = symbols[:s.cfg.MaxPerScreen]
		}

		start := s.now()
		batch := &Batch{
			RunID:       uuid.NewString(),
			Period:      f.Period,
			GeneratedAt: start.UTC(),
		}

		if !emit(ctx, events, Event{Type: EventStart, RunID: batch.RunID, Total: len(symbols)}) {
			return
		}

		ungated := !s.cfg.StreamUseGate
		batchIndex := 0

		for offset := 0; offset < len(symbols); offset += batchSize {
			if ctx.Err() != nil {
				return
			}

			end := offset + batchSize
			if end > len(symbols) {
				end = len(symbols)
			}

			for _, symbol := range symbols[offset:end] {
				if len(batch.Results) >= f.MaxResults {
					break
				}

				batch.Checked++
				candidate, err := s.examine(ctx, symbol, f, ungated)
				if err != nil {
					batch.Failed++
					s.log.Debug().Err(err).Str("symbol", symbol).Msg("Skipping symbol in stream")
				} else if candidate != nil {
					batch.Results = append(batch.Results, *candidate)
					if !emit(ctx, events, Event{
						Type:    EventResult,
						RunID:   batch.RunID,
						Result:  candidate,
						Checked: batch.Checked,
						Found:   len(batch.Results),
					}) {
						return
					}
				}

				if ungated {
					select {
					case <-ctx.Done():
						return
					case <-time.After(s.cfg.StreamDelay):
					}
				}
			}

			batchIndex++
			if !emit(ctx, events, Event{
				Type:       EventBatchComplete,
				RunID:      batch.RunID,
				BatchIndex: batchIndex,
				Checked:    batch.Checked,
				Found:      len(batch.Results),
			}) {
				return
			}

			if len(batch.Results) >= f.MaxResults {
				break
			}
		}

		sort.Slice(batch.Results, func(i, j int) bool {
			return batch.Results[i].DeclinePct < batch.Results[j].DeclinePct
		})
		batch.Found = len(batch.Results)
		elapsed := s.now().Sub(start)
		batch.ElapsedSec = elapsed.Seconds()
		if elapsed > 0 {
			batch.CallsPerMin = float64(batch.Checked) / elapsed.Minutes()
		}

		emit(ctx, events, Event{Type: EventComplete, RunID: batch.RunID, Batch: batch,
			Checked: batch.Checked, Found: batch.Found})
	}()

	return events
}

// emit sends unless the consumer is gone. Reports whether the send
// happened.
func emit(ctx context.Context, ch chan<- Event, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- ev:
		return true
	}
}
