package submitter

import (
	"context"

	"crpt-hq/ismp/pkg/documents"

	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one envelope in a batch.
type Outcome struct {
	// Index is the envelope's position in the input
	Index int

	// DocID is the envelope's document identifier
	DocID string

	// Result is set when the submission was accepted
	Result *Result

	// Err is set when it was not
	Err error
}

// OK reports whether the submission was accepted.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// SubmitAll submits envelopes with at most workers concurrent calls to
// Submit and returns one Outcome per envelope, in input order.
//
// Workers share the Submitter's limiter, so the batch as a whole never
// exceeds the rate limit. Once ctx is done, the remaining envelopes fail
// with ratelimit.ErrWaitCanceled without being sent.
func (s *Submitter) SubmitAll(ctx context.Context, envelopes []documents.Envelope, workers int) []Outcome {
	return s.SubmitEach(ctx, envelopes, workers, nil)
}

// SubmitEach is SubmitAll with a callback invoked as each envelope settles.
// Callbacks run on worker goroutines, in completion order.
func (s *Submitter) SubmitEach(ctx context.Context, envelopes []documents.Envelope, workers int, onOutcome func(Outcome)) []Outcome {
	if workers < 1 {
		workers = 1
	}

	outcomes := make([]Outcome, len(envelopes))

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range envelopes {
		env := &envelopes[i]
		outcomes[i] = Outcome{Index: i, DocID: env.Document.DocID}

		g.Go(func() error {
			result, err := s.Submit(ctx, &env.Document, env.Signature)
			outcomes[i].Result = result
			outcomes[i].Err = err
			if onOutcome != nil {
				onOutcome(outcomes[i])
			}
			// Failures are per envelope; never abort the group.
			return nil
		})
	}

	_ = g.Wait()
	return outcomes
}

// Failed counts the outcomes that were not accepted.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}
