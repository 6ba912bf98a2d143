package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumenhair/storefront-api/internal/api/metrics"
	"github.com/lumenhair/storefront-api/internal/core/ports"
)

const (
	defaultWorkers = 2
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
)

// Dispatcher delivers password reset notices on a fixed set of workers so
// the request that triggered the reset never waits on the mail server.
// Notices for the same user always land on the same worker.
type Dispatcher struct {
	workers []chan ports.PasswordResetNotice
	mailer  ports.Mailer
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.PasswordResetNotice, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.PasswordResetNotice, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx does not abandon
// queued notices: workers exit only once Stop has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Stop closes the worker channels and waits for pending notices to be sent.
// Enqueue must not be called after Stop.
func (d *Dispatcher) Stop() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// NotifyPasswordReset enqueues notice without blocking. A full worker
// channel drops the notice; the user can ask for another link.
func (d *Dispatcher) NotifyPasswordReset(notice ports.PasswordResetNotice) {
	idx := d.shardIndex(notice.UserID)
	select {
	case d.workers[idx] <- notice:
		metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.PasswordResetNotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("user_id", notice.UserID).Int("worker_id", idx).Msg("notification queue full, dropping notice")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.PasswordResetNotice) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for notice := range ch {
		metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
		d.deliver(ctx, id, notice)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, worker int, notice ports.PasswordResetNotice) {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := d.mailer.SendPasswordReset(sendCtx, notice); err != nil {
		metrics.PasswordResetNotificationsTotal.WithLabelValues("failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", notice.UserID).
			Int("worker_id", worker).
			Msg("password reset notification failed")
		return
	}
	metrics.PasswordResetNotificationsTotal.WithLabelValues("sent").Inc()
	d.log.Info().Str("user_id", notice.UserID).Int("worker_id", worker).Msg("password reset notification sent")
}
