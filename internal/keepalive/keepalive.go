package keepalive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stockfolio/pkg/clients"
)

const pingTimeout = 30 * time.Second

type HTTPClient interface {
	Get(ctx context.Context, url string, headers http.Header) (*clients.Response, error)
}

// Job pings the tracker endpoint on a cron schedule so the hosting
// platform doesn't put the instance to sleep.
type Job struct {
	cron   *cron.Cron
	client HTTPClient
	url    string
}

func New(client HTTPClient, url string) *Job {
	return &Job{
		cron:   cron.New(),
		client: client,
		url:    url,
	}
}

func (j *Job) Start(schedule string) error {
	if _, err := j.cron.AddFunc(schedule, func() { _ = j.Ping(context.Background()) }); err != nil {
		return fmt.Errorf("invalid keep-alive schedule %q: %w", schedule, err)
	}
	j.cron.Start()
	zap.L().Info("keep-alive job started", zap.String("url", j.url), zap.String("schedule", schedule))
	return nil
}

// Stop waits for a running ping to finish.
func (j *Job) Stop() {
	<-j.cron.Stop().Done()
	zap.L().Info("keep-alive job stopped")
}

func (j *Job) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	res, err := j.client.Get(ctx, j.url, nil)
	if err != nil {
		zap.L().Error("keep-alive request failed", zap.String("url", j.url), zap.Error(err))
		return err
	}
	if res.StatusCode != http.StatusOK {
		zap.L().Warn("keep-alive got unexpected status", zap.String("url", j.url), zap.Int("status", res.StatusCode))
		return fmt.Errorf("keep-alive status %d", res.StatusCode)
	}
	zap.L().Debug("keep-alive ok", zap.String("url", j.url))
	return nil
}
