package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/crowdspark/crowdspark-backend/pkg/logger"
	"github.com/crowdspark/crowdspark-backend/pkg/metrics"
)

const (
	defaultOrderTTL    = 24 * time.Hour
	defaultBatchSize   = 200
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
)

// donationExpirer fails stale created orders; one call sweeps one batch and
// reports how many rows it expired.
type donationExpirer interface {
	ExpireCreatedBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
}

// OrderExpiryJobParams configure the stale order sweep.
type OrderExpiryJobParams struct {
	Logger      *logger.Logger
	Donations   donationExpirer
	Metrics     *metrics.JobMetrics
	OrderTTL    time.Duration
	BatchSize   int
	MaxAttempts int
	Backoff     time.Duration
}

// NewOrderExpiryJob constructs the job that fails donation orders stuck in
// the created state past their TTL.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Donations == nil {
		return nil, fmt.Errorf("donations service required")
	}
	if params.OrderTTL <= 0 {
		params.OrderTTL = defaultOrderTTL
	}
	if params.BatchSize <= 0 {
		params.BatchSize = defaultBatchSize
	}
	if params.MaxAttempts <= 0 {
		params.MaxAttempts = defaultMaxAttempts
	}
	if params.Backoff <= 0 {
		params.Backoff = defaultBackoff
	}
	return &orderExpiryJob{
		logg:        params.Logger,
		donations:   params.Donations,
		metrics:     params.Metrics,
		orderTTL:    params.OrderTTL,
		batchSize:   params.BatchSize,
		maxAttempts: params.MaxAttempts,
		backoff:     params.Backoff,
		now:         time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg        *logger.Logger
	donations   donationExpirer
	metrics     *metrics.JobMetrics
	orderTTL    time.Duration
	batchSize   int
	maxAttempts int
	backoff     time.Duration
	now         func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

// Run sweeps batches until a batch comes back short. Transient batch
// failures retry with constant backoff; a batch that keeps failing ends the
// cycle and the remainder is picked up next interval.
func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.orderTTL)
	total := 0
	var errs error

	for {
		expired, err := j.expireBatch(ctx, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire batch: %w", err))
			break
		}
		total += expired
		j.metrics.AddExpiredOrders(j.Name(), expired)
		if expired < j.batchSize {
			break
		}
	}

	if total > 0 {
		logCtx := j.logg.WithField(ctx, "expired_orders", total)
		j.logg.Info(logCtx, "stale donation orders expired")
	}
	return errs
}

func (j *orderExpiryJob) expireBatch(ctx context.Context, cutoff time.Time) (int, error) {
	backoff := retry.WithMaxRetries(uint64(j.maxAttempts-1), retry.NewConstant(j.backoff))
	expired := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		n, err := j.donations.ExpireCreatedBefore(ctx, cutoff, j.batchSize)
		if err != nil {
			return retry.RetryableError(err)
		}
		expired = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
