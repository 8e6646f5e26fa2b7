package server

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/logging"
	"github.com/infrahq/unpublished/internal/server/data"
)

type job func(ctx context.Context, db *gorm.DB) error

// deleteExpiredTokens returns a job that removes tokens which expired more
// than grace ago.
func deleteExpiredTokens(grace time.Duration) job {
	return func(ctx context.Context, db *gorm.DB) error {
		deleted, err := data.DeleteExpiredAccessTokens(db.WithContext(ctx), time.Now(), grace)
		if err != nil {
			return fmt.Errorf("delete expired tokens: %w", err)
		}

		if deleted > 0 {
			logging.Infof("deleted %d expired access tokens", deleted)
		}

		return nil
	}
}

// jobWrapper runs job once, then every interval until ctx is done. A job that
// fails or panics is logged and retried on the next tick.
func jobWrapper(ctx context.Context, db *gorm.DB, job job, interval time.Duration) func() error {
	return func() error {
		t := time.NewTicker(interval)
		defer t.Stop()

		name := jobName(job)

		run := func() {
			defer func() {
				if r := recover(); r != nil {
					logging.Errorf("panic in background job %s: %v", name, r)
				}
			}()

			startAt := time.Now()
			if err := job(ctx, db); err != nil {
				logging.Errorf("background job %s error: %s", name, err.Error())
				return
			}

			logging.Debugf("background job %s successful, elapsed: %s", name, time.Since(startAt))
		}

		run()

		for {
			select {
			case <-t.C:
				run()
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func jobName(job job) string {
	name := runtime.FuncForPC(reflect.ValueOf(job).Pointer()).Name()
	name = name[strings.LastIndex(name, "/")+1:]
	return strings.TrimSuffix(name, ".func1")
}
