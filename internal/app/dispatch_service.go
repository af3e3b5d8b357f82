// internal/app/dispatch_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	domainEmail "quiet_hours_notifier/internal/domain/email"
	"quiet_hours_notifier/internal/domain/profile"
	"quiet_hours_notifier/internal/domain/schedule"
	idb "quiet_hours_notifier/internal/infra/database" // Alias for repository sentinel errors

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrRunInProgress is returned when Run is invoked while a previous run in
// this process has not finished. The caller should treat it as "come back
// next tick", not as a dispatch failure.
var ErrRunInProgress = errors.New("reminder dispatch already in progress")

// FailureKind tags which stage of a block's pipeline failed.
type FailureKind string

const (
	FailureResolve FailureKind = "resolve"
	FailureDeliver FailureKind = "deliver"
	FailureMark    FailureKind = "mark"
)

// ItemFailure records a single block's failure without failing the batch.
type ItemFailure struct {
	BlockID string
	Title   string
	Kind    FailureKind
	Err     error
}

// Summary aggregates one dispatch run. Sent counts blocks whose email went
// out, including the two benign post-send cases (block deleted before the
// mark, mark update failed); the latter also appears in Failures because the
// block may be re-sent on the next tick.
type Summary struct {
	RunID    string
	Found    int
	Sent     int
	Errored  int
	Failures []ItemFailure
}

// Message returns the human-readable outcome line used in logs and in the
// HTTP trigger's JSON response.
func (s *Summary) Message() string {
	if s.Found == 0 {
		return "No reminders to send"
	}
	return "Email reminders processed successfully"
}

// DispatchOptions bound the selection window and the per-run resource use.
type DispatchOptions struct {
	Lookahead    time.Duration // Forward window; blocks starting inside it are due
	CatchUpGrace time.Duration // Backward widening for blocks missed on earlier ticks
	CallTimeout  time.Duration // Bound on each external call
	Workers      int           // Concurrent block pipelines; 1 means sequential
}

// DispatchService coordinates one reminder run: select due blocks, then per
// block resolve the owner's profile, render the email, send it, and mark the
// block notified. Block pipelines are isolated from each other; only a
// failure to select at all fails the run.
type DispatchService struct {
	blocks   schedule.Repository
	profiles profile.Repository
	mailer   domainEmail.Client
	renderer *Renderer
	logger   *logrus.Entry
	opts     DispatchOptions

	runMu sync.Mutex // single-flight guard for overlapping invocations
}

func NewDispatchService(
	blocks schedule.Repository,
	profiles profile.Repository,
	mailer domainEmail.Client,
	renderer *Renderer,
	logger *logrus.Entry,
	opts DispatchOptions,
) *DispatchService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	return &DispatchService{
		blocks:   blocks,
		profiles: profiles,
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
		opts:     opts,
	}
}

// Run executes one dispatch tick for the window anchored at now.
func (s *DispatchService) Run(ctx context.Context, now time.Time) (*Summary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	log := s.logger.WithField("run_id", runID)

	from := now.Add(-s.opts.CatchUpGrace)
	until := now.Add(s.opts.Lookahead)
	log.WithFields(logrus.Fields{
		"from":  from.Format(time.RFC3339),
		"until": until.Format(time.RFC3339),
	}).Info("Checking for study blocks due for a reminder")

	listCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	blocks, err := s.blocks.ListDue(listCtx, from, until)
	cancel()
	if err != nil {
		log.WithError(err).Error("Failed to list due study blocks")
		return nil, fmt.Errorf("failed to list due study blocks: %w", err)
	}

	summary := &Summary{RunID: runID, Found: len(blocks)}
	if len(blocks) == 0 {
		log.Info("No reminders to send")
		return summary, nil
	}
	log.WithField("found", len(blocks)).Info("Found study blocks needing reminders")

	workers := s.opts.Workers
	if workers > len(blocks) {
		workers = len(blocks)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		jobs = make(chan *schedule.StudyBlock)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for block := range jobs {
				sent, failure := s.processBlock(ctx, log, block, now)
				mu.Lock()
				if sent {
					summary.Sent++
				}
				if failure != nil {
					summary.Failures = append(summary.Failures, *failure)
					if !sent {
						summary.Errored++
					}
				}
				mu.Unlock()
			}
		}()
	}
	for _, block := range blocks {
		jobs <- block
	}
	close(jobs)
	wg.Wait()

	log.WithFields(logrus.Fields{
		"found":   summary.Found,
		"sent":    summary.Sent,
		"errored": summary.Errored,
	}).Info("Reminder dispatch run completed")
	return summary, nil
}

// processBlock runs one block's resolve -> render -> send -> mark pipeline.
// It reports whether the email went out and, if anything went wrong, a tagged
// failure for the summary. It never returns a batch-level error.
func (s *DispatchService) processBlock(ctx context.Context, log *logrus.Entry, block *schedule.StudyBlock, now time.Time) (bool, *ItemFailure) {
	blockLog := log.WithFields(logrus.Fields{
		"block_id": block.ID,
		"title":    block.Title,
		"user_id":  block.UserID,
	})

	resolveCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	recipient, err := s.profiles.GetByUserID(resolveCtx, block.UserID)
	cancel()
	if err != nil {
		blockLog.WithError(err).Error("Failed to resolve recipient profile")
		return false, &ItemFailure{BlockID: block.ID, Title: block.Title, Kind: FailureResolve, Err: err}
	}

	msg := s.renderer.Render(block, recipient, now)

	sendCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	receiptID, err := s.mailer.Send(sendCtx, msg)
	cancel()
	if err != nil {
		// The flag stays untouched so the block remains eligible next tick.
		blockLog.WithError(err).Error("Failed to send reminder email")
		return false, &ItemFailure{BlockID: block.ID, Title: block.Title, Kind: FailureDeliver, Err: err}
	}
	blockLog.WithField("receipt_id", receiptID).Info("Reminder email sent")

	markCtx, cancel := context.WithTimeout(ctx, s.opts.CallTimeout)
	err = s.blocks.MarkNotified(markCtx, block.ID)
	cancel()
	if err != nil {
		if errors.Is(err, idb.ErrBlockNotFound) {
			// Deleted between selection and marking. The reminder went out
			// and there is no row left to flag, so nothing more to do.
			blockLog.Info("Study block deleted before marking; treating as complete")
			return true, nil
		}
		blockLog.WithError(err).Error("Reminder sent but marking notified failed; block may be re-sent next tick")
		return true, &ItemFailure{BlockID: block.ID, Title: block.Title, Kind: FailureMark, Err: err}
	}
	return true, nil
}
