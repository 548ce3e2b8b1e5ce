package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ewillweb/internal/logger"
	"golang.org/x/sync/errgroup"
)

// ErrQueueClosed 在 Close 之后入队时返回。
var ErrQueueClosed = errors.New("notify queue closed")

// ErrQueueFull 在缓冲已满时返回，通知被丢弃。
var ErrQueueFull = errors.New("notify queue full")

// SendError 描述某条通知最终发送失败。
type SendError struct {
	SubmissionID string
	Err          error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.SubmissionID, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Stats 是队列的累计计数。
type Stats struct {
	Enqueued int64 `json:"enqueued"`
	Sent     int64 `json:"sent"`
	Failed   int64 `json:"failed"`
	Skipped  int64 `json:"skipped"`
	Dropped  int64 `json:"dropped"`
	Pending  int   `json:"pending"`
}

// QueueConfig 控制队列容量、并发和单封邮件的超时。
type QueueConfig struct {
	From        string
	To          string
	Workers     int
	Size        int
	SendTimeout time.Duration
}

// Queue 是有界的通知队列。提交请求只负责入队，发送由后台 worker 完成，
// 失败通过 Errors() 暴露而不会影响已经返回的 HTTP 响应。
type Queue struct {
	cfg    QueueConfig
	mailer Mailer
	log    *logger.Logger

	jobs chan ContactNotification
	errs chan error

	mu     sync.RWMutex
	closed bool
	group  *errgroup.Group

	finished chan struct{}
	waitErr  error

	enqueued atomic.Int64
	sent     atomic.Int64
	failed   atomic.Int64
	skipped  atomic.Int64
	dropped  atomic.Int64
}

// NewQueue 创建队列并启动 worker。
func NewQueue(cfg QueueConfig, mailer Mailer, log *logger.Logger) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Size <= 0 {
		cfg.Size = 1
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if mailer == nil {
		mailer = DisabledMailer{}
	}
	if log == nil {
		log = logger.Nop()
	}

	q := &Queue{
		cfg:    cfg,
		mailer: mailer,
		log:    log,
		jobs:   make(chan ContactNotification, cfg.Size),
		errs:   make(chan error, cfg.Size),
		group:  &errgroup.Group{},

		finished: make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		q.group.Go(q.worker)
	}
	return q
}

// Enqueue 非阻塞入队。
func (q *Queue) Enqueue(n ContactNotification) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return ErrQueueClosed
	}
	select {
	case q.jobs <- n:
		q.enqueued.Add(1)
		return nil
	default:
		q.dropped.Add(1)
		q.log.Warn("notify queue full, dropping notification", "submission_id", n.SubmissionID)
		return ErrQueueFull
	}
}

// Errors 返回发送失败的通道。通道满时新的错误只记录日志。
func (q *Queue) Errors() <-chan error {
	return q.errs
}

func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued: q.enqueued.Load(),
		Sent:     q.sent.Load(),
		Failed:   q.failed.Load(),
		Skipped:  q.skipped.Load(),
		Dropped:  q.dropped.Load(),
		Pending:  len(q.jobs),
	}
}

// Close 停止接收并等待已入队的通知发送完毕，ctx 到期则提前返回。
// 所有 worker 退出后关闭 Errors() 通道。可重复调用。
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
		go func() {
			q.waitErr = q.group.Wait()
			close(q.errs)
			close(q.finished)
		}()
	}
	q.mu.Unlock()

	select {
	case <-q.finished:
		return q.waitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) worker() error {
	for n := range q.jobs {
		q.deliver(n)
	}
	return nil
}

func (q *Queue) deliver(n ContactNotification) {
	msg, err := BuildContactEmail(q.cfg.From, q.cfg.To, n)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), q.cfg.SendTimeout)
		err = q.mailer.Send(ctx, msg)
		cancel()
	}

	switch {
	case err == nil:
		q.sent.Add(1)
		q.log.Info("contact notification sent", "submission_id", n.SubmissionID)
	case errors.Is(err, ErrMailerDisabled):
		q.skipped.Add(1)
		q.log.Warn("email service not configured, skipping notification", "submission_id", n.SubmissionID)
	default:
		q.failed.Add(1)
		q.log.Error("contact notification failed", "submission_id", n.SubmissionID, "error", err)
		select {
		case q.errs <- &SendError{SubmissionID: n.SubmissionID, Err: err}:
		default:
		}
	}
}
