package commands

import (
	"context"
	"fmt"
	"io"

	"jobscribe/internal/background"
	"jobscribe/pkg/models"
	"jobscribe/pkg/utils"
)

// runBatch runs urls in the foreground, streaming status lines to out
func runBatch(ctx context.Context, out io.Writer, urls []string, opts models.BatchOptions) (models.BatchSnapshot, error) {
	deps, cleanup, err := buildDependencies(appConfig)
	if err != nil {
		return models.BatchSnapshot{}, err
	}
	defer cleanup()

	batch := background.NewBatch(utils.GenerateRequestID(), urls, deps.BatchConfigFor(opts))
	batch.OnLog(func(line string) {
		fmt.Fprintln(out, line)
	})

	return batch.Run(ctx), nil
}
