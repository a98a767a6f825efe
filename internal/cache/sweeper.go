package cache

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/pkg/logger"
)

// Sweeper is implemented by backends that keep stale entries around until
// they are read again.
type Sweeper interface {
	Sweep() int
}

// StartSweeper runs s.Sweep on the cron spec and returns a stop function
// that waits for a running sweep to finish.
func StartSweeper(s Sweeper, spec string) (func(context.Context) error, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := s.Sweep(); n > 0 {
			logger.Debug("page cache swept", zap.Int("evicted", n))
		}
	}); err != nil {
		return nil, fmt.Errorf("schedule sweeper %q: %w", spec, err)
	}
	c.Start()
	return func(ctx context.Context) error {
		select {
		case <-c.Stop().Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}, nil
}
