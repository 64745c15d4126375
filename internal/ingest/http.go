package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/AngelCh415/spark-report/internal/utils"
)

var retryPolicy = utils.NewBackoff(100*time.Millisecond, 2).WithJitter(150 * time.Millisecond)

// GetJSONWithRetry fetches url into dst, retrying transport errors and 5xx
// responses with exponential backoff and jitter. 4xx responses fail at once.
func GetJSONWithRetry(ctx context.Context, c HTTPClient, url string, dst any) error {
	var permanent error
	err := retryPolicy.Do(ctx, func(int) error {
		err := getJSON(ctx, c, url, dst)
		var se *statusError
		if errors.As(err, &se) && se.code < 500 {
			permanent = err
			return nil
		}
		return err
	})
	if permanent != nil {
		return permanent
	}
	return err
}
