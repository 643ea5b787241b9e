package hub

import (
	"context"
	"time"

	"github.com/yashveerji/LinkedIn-B/internal/presence"
)

const mirrorQueueSize = 256

type mirrorJob struct {
	userID string
	online bool
	seenAt time.Time
}

// mirrorQueue applies presence transitions to the mirror one at a time, in the
// order they were pushed. A job whose transition was overtaken by a newer one
// for the same user is skipped: the newer job is already queued behind it and
// the directory, not the job, decides the state that lands in the mirror.
type mirrorQueue struct {
	mirror    presence.Mirror
	directory *presence.Directory
	effects   *effectRunner
	jobs      chan mirrorJob
	done      chan struct{}
}

func newMirrorQueue(mirror presence.Mirror, directory *presence.Directory, effects *effectRunner) *mirrorQueue {
	q := &mirrorQueue{
		mirror:    mirror,
		directory: directory,
		effects:   effects,
		jobs:      make(chan mirrorJob, mirrorQueueSize),
		done:      make(chan struct{}),
	}
	go q.loop()
	return q
}

func (q *mirrorQueue) loop() {
	defer close(q.done)
	for job := range q.jobs {
		q.apply(job)
	}
}

func (q *mirrorQueue) apply(job mirrorJob) {
	if q.directory.IsOnline(job.userID) != job.online {
		return
	}

	if job.online {
		_ = q.effects.run("presence_online", func(ctx context.Context) error {
			return q.mirror.Online(ctx, job.userID)
		})
		return
	}
	_ = q.effects.run("presence_offline", func(ctx context.Context) error {
		return q.mirror.Offline(ctx, job.userID, job.seenAt)
	})
}

// push must be called after the directory transition it reports.
func (q *mirrorQueue) push(job mirrorJob) {
	q.jobs <- job
}

// close drains queued jobs. No push may follow it.
func (q *mirrorQueue) close() {
	close(q.jobs)
	<-q.done
}
