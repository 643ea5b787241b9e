package hub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/event"
	"github.com/yashveerji/LinkedIn-B/internal/model"
	"github.com/yashveerji/LinkedIn-B/internal/repo"
	"go.uber.org/zap"
)

var errInvalidTransition = errors.New("invalid call status transition")

// -----------------------------------------------------------------
// Call Log Lifecycle
// -----------------------------------------------------------------

// recordCall inserts the call log for a new attempt. An unavailable attempt is
// closed immediately: started and ended at the same instant.
func (ch *CallHandler) recordCall(call *event.CallUser, status model.CallStatus, at time.Time) {
	log := &model.CallLog{
		From:      call.From,
		To:        call.To,
		CallType:  call.CallType,
		Status:    status,
		StartedAt: at,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if status == model.CallStatusUnavailable {
		endedAt := at
		log.EndedAt = &endedAt
	}

	_ = ch.hub.effects.run("insert_call_log", func(ctx context.Context) error {
		_, err := ch.hub.store.InsertCallLog(ctx, log)
		return err
	})
}

// transitionLatest moves the most recently started log matching filter to
// next, stamping answeredAt or endedAt with the hub clock. The update only
// applies while the log still has the status it was read with; a log that is
// missing or was moved on by the peer's worker in between is logged and
// ignored.
func (ch *CallHandler) transitionLatest(filter model.CallLogFilter, next model.CallStatus) {
	at := ch.hub.now()

	_ = ch.hub.effects.run("call_log_"+string(next), func(ctx context.Context) error {
		current, err := ch.hub.store.FindLatestCallLog(ctx, filter)
		if errors.Is(err, repo.ErrNotFound) {
			ch.hub.logger.Debug("no call log to transition",
				zap.String("from", filter.From),
				zap.String("to", filter.To),
				zap.String("status", string(next)),
			)
			return nil
		}
		if err != nil {
			return err
		}

		if !current.Status.CanTransition(next) {
			return fmt.Errorf("%w: %s -> %s", errInvalidTransition, current.Status, next)
		}

		update := stampFor(next, at)
		update.Expect = current.Status
		err = ch.hub.store.UpdateCallLog(ctx, current.ID, update)
		if errors.Is(err, repo.ErrStatusChanged) {
			ch.hub.logger.Info("call log moved on before transition",
				zap.String("call_id", current.ID),
				zap.String("read_status", string(current.Status)),
				zap.String("status", string(next)),
			)
			return nil
		}
		return err
	})
}

func stampFor(next model.CallStatus, at time.Time) model.CallLogUpdate {
	update := model.CallLogUpdate{Status: next, UpdatedAt: at}
	switch next {
	case model.CallStatusAnswered:
		update.AnsweredAt = &at
	case model.CallStatusEnded, model.CallStatusRejected, model.CallStatusMissed, model.CallStatusUnavailable:
		update.EndedAt = &at
	}
	return update
}
