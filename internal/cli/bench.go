package cli

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/rawlunge/internal/rate"
	"github.com/wesleyorama2/rawlunge/internal/stats"
)

type benchOptions struct {
	requestOptions
	requests int
	vus      int
	rate     float64
	method   string
	data     string
}

func newBenchCmd() *cobra.Command {
	var opts benchOptions
	cmd := &cobra.Command{
		Use:   "bench URL",
		Short: "Send a fixed number of requests and report latency statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args[0])
		},
	}
	opts.register(cmd)
	cmd.Flags().IntVarP(&opts.requests, "requests", "n", 100, "Total number of requests to send")
	cmd.Flags().IntVar(&opts.vus, "vus", 10, "Number of concurrent virtual users")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "Requests per second across all users (0 for no limit)")
	cmd.Flags().StringVarP(&opts.method, "method", "X", "GET", "Request method")
	cmd.Flags().StringVarP(&opts.data, "data", "d", "", "Request body")
	return cmd
}

func (o *benchOptions) run(cmd *cobra.Command, target string) error {
	if o.requests < 1 {
		return fmt.Errorf("--requests must be at least 1")
	}
	if o.vus < 1 {
		return fmt.Errorf("--vus must be at least 1")
	}
	if o.rate < 0 {
		return fmt.Errorf("--rate cannot be negative")
	}
	if o.vus > o.requests {
		o.vus = o.requests
	}

	var body []byte
	if o.data != "" {
		body = []byte(o.data)
	}
	method := strings.ToUpper(o.method)

	// Fail fast on a bad URL or header before starting workers
	if _, err := o.buildRequest(method, target, body); err != nil {
		return err
	}
	client, err := o.newClient(cmd, o.timeout)
	if err != nil {
		return err
	}
	formatter, _, err := o.formatter(cmd)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	recorder := stats.NewRecorder()
	jobs := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < o.vus; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				// Do mutates the request, so every iteration builds its own.
				req, err := o.buildRequest(method, target, body)
				if err != nil {
					recorder.RecordError()
					continue
				}
				start := time.Now()
				resp, err := client.Do(ctx, req)
				if err != nil {
					recorder.RecordError()
					continue
				}
				recorder.Record(stats.Sample{
					StatusCode:      resp.StatusCode,
					Total:           time.Since(start),
					TimeToFirstByte: resp.Timing.TimeToFirstByte,
					BodyBytes:       len(resp.Body),
				})
			}
		}()
	}

	var pacer *rate.Pacer
	if o.rate > 0 {
		pacer = rate.NewPacer(o.rate)
	}

dispatch:
	for i := 0; i < o.requests; i++ {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				break dispatch
			}
		}
		select {
		case jobs <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBenchmark(normalizeURL(target), recorder.Summary()))
	return ctx.Err()
}
