package adapter

import (
	"context"

	"go.uber.org/zap"

	"github.com/JakeFAU/showcrawl/internal/metrics"
	"github.com/JakeFAU/showcrawl/internal/settle"
	"github.com/JakeFAU/showcrawl/internal/show"
)

// DetailFunc enriches a listing stub from its detail document.
type DetailFunc func(ctx context.Context, stub show.CandidateRecord) (show.CandidateRecord, error)

// FetchDetails runs detail on every stub in fixed-size concurrent batches with
// a pause between batches. The output is positional: out[i] is the enriched
// form of stubs[i], or stubs[i] itself when its detail fetch failed.
func (c *Client) FetchDetails(ctx context.Context, stubs []show.CandidateRecord, detail DetailFunc) []show.CandidateRecord {
	out := make([]show.CandidateRecord, len(stubs))
	copy(out, stubs)

	size := c.cfg.BatchSize
	for start := 0; start < len(stubs); start += size {
		if start > 0 {
			if err := c.sleep(ctx, c.cfg.BatchPause); err != nil {
				c.logger.Warn("detail batches interrupted; keeping stubs",
					zap.Int("remaining", len(stubs)-start),
					zap.Error(err),
				)
				break
			}
		}
		end := min(start+size, len(stubs))
		batch := stubs[start:end]
		results := settle.All(ctx, len(batch), func(ctx context.Context, i int) (show.CandidateRecord, error) {
			return detail(ctx, batch[i])
		})
		for i, res := range results {
			if res.Err != nil {
				url := show.Value(batch[i].EventURL)
				metrics.ObserveDetailFallback(url)
				c.logger.Warn("detail fetch failed; keeping listing stub",
					zap.String("url", url),
					zap.Error(res.Err),
				)
				continue
			}
			out[start+i] = res.Value
		}
	}
	return out
}
