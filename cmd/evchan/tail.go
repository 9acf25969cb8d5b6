package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/baxromumarov/evchan"
	"github.com/baxromumarov/evchan/buffer"
	"github.com/baxromumarov/evchan/chanx"
	"github.com/baxromumarov/evchan/internal/config"
	"github.com/baxromumarov/evchan/internal/tailsource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var tailCmd = &cobra.Command{
	Use:   "tail [FILE|-]",
	Short: "Print the lines of a file or stdin as they arrive",
	Long: `Reads lines from FILE (or stdin when FILE is "-" or missing) through an
event channel. Lines rejected by --match are dropped at the source; lines the
consumer cannot keep up with are handled by the --buffer policy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		return runTail(cmd.Context(), cfg, path, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	},
}

func init() {
	fs := tailCmd.Flags()
	fs.StringVar(&flagValues.Buffer, "buffer", flagValues.Buffer, "Buffer policy: none, fixed, dropping, sliding, expanding")
	fs.IntVar(&flagValues.Size, "size", flagValues.Size, "Buffer size (initial size for expanding)")
	fs.StringVar(&flagValues.Match, "match", "", "Only forward lines matching this regular expression")
	fs.BoolVarP(&flagValues.Follow, "follow", "f", false, "Keep reading as the file grows")
	fs.BoolVar(&flagValues.FromEnd, "from-end", false, "Start at the end of the file")
	fs.BoolVar(&flagValues.Poll, "poll", false, "Poll for file changes instead of using inotify")
}

func runTail(ctx context.Context, cfg config.Config, path string, stdin io.Reader, stdout io.Writer, log *logrus.Logger) (err error) {
	buf, err := newBuffer(cfg)
	if err != nil {
		return err
	}
	filter, err := newFilter(cfg.Match)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src, wait, err := openSource(ctx, path, cfg, stdin, log)
	if err != nil {
		return err
	}

	metrics := evchan.NewMetrics("")
	reg := prometheus.NewRegistry()
	reg.MustRegister(metrics)

	ec, err := evchan.NewEventChannel(src, buf, filter,
		evchan.WithName("tail"),
		evchan.WithLogger(log),
		evchan.WithMetrics(metrics),
	)
	if err != nil {
		return multierr.Append(fmt.Errorf("creating event channel: %w", err), wait())
	}
	defer func() {
		err = multierr.Combine(err, ec.Close(), wait())
		logStats(log, ec.Stats())
	}()

	g, ctx := errgroup.WithContext(ctx)
	if cfg.MetricsAddr != "" {
		srv := newMetricsServer(cfg.MetricsAddr, reg)
		g.Go(func() error {
			log.WithField("addr", cfg.MetricsAddr).Info("serving metrics")
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}
	g.Go(func() error {
		defer cancel()
		return printLines(ctx, ec, stdout)
	})
	return g.Wait()
}

// printLines writes every received line to w until the channel ends or ctx
// is done.
func printLines(ctx context.Context, r chanx.Receiver[string], w io.Writer) error {
	for {
		line, err := chanx.Recv(ctx, r)
		switch {
		case err == nil:
			if _, err := fmt.Fprintln(w, line); err != nil {
				return fmt.Errorf("writing line: %w", err)
			}
		case evchan.IsEnd(err), ctx.Err() != nil:
			return nil
		default:
			return err
		}
	}
}

// openSource returns the line source for path and a function that waits for
// the source to stop. "-" reads stdin.
func openSource(ctx context.Context, path string, cfg config.Config, stdin io.Reader, log *logrus.Logger) (evchan.Source[string], func() error, error) {
	if path == "-" {
		lines := make(chan string)
		go scanLines(ctx, stdin, lines, log)
		return chanx.FromChan(lines), func() error { return nil }, nil
	}

	f, err := tailsource.Open(path, tailsource.Options{
		Follow:  cfg.Follow,
		FromEnd: cfg.FromEnd,
		Poll:    cfg.Poll,
		Logger:  log,
	})
	if err != nil {
		return nil, nil, err
	}
	return f.Source(), f.Wait, nil
}

// scanLines sends the lines of r to out and closes out at EOF.
func scanLines(ctx context.Context, r io.Reader, out chan<- string, log logrus.FieldLogger) {
	defer close(out)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := chanx.Send(ctx, out, sc.Text()); err != nil {
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.WithError(err).Warn("reading stdin")
	}
}

func newBuffer(cfg config.Config) (buffer.Buffer[string], error) {
	switch cfg.Buffer {
	case config.BufferNone:
		return buffer.None[string](), nil
	case config.BufferFixed:
		return buffer.Fixed[string](cfg.Size), nil
	case config.BufferDropping:
		return buffer.Dropping[string](cfg.Size), nil
	case config.BufferSliding:
		return buffer.Sliding[string](cfg.Size), nil
	case config.BufferExpanding:
		return buffer.Expanding[string](cfg.Size), nil
	}
	return nil, fmt.Errorf("unknown buffer %q", cfg.Buffer)
}

func newFilter(expr string) (evchan.Matcher[string], error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compiling --match: %w", err)
	}
	return re.MatchString, nil
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}
}

func logStats(log logrus.FieldLogger, s evchan.Stats) {
	log.WithFields(logrus.Fields{
		"puts":      s.Puts,
		"delivered": s.Delivered,
		"buffered":  s.Buffered,
		"discarded": s.Discarded,
		"dropped":   s.BufferDropped,
	}).Info("tail finished")
}
