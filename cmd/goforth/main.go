// Command goforth runs an interactive Forth system over the terminal.
//
// Any files named on the command line are INCLUDEd, and any -e lines
// evaluated, before entering the QUIT loop over standard input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/goforth"
	"github.com/jcorbin/goforth/internal/logio"
	"github.com/jcorbin/goforth/internal/stdterm"
)

var errInterrupted = errors.New("interrupted")

func main() {
	var log logio.Logger
	log.SetOutput(os.Stderr)

	cfg, err := parseConfig(flag.CommandLine, os.Args[1:])
	if err == nil {
		log.TimeFormat = cfg.LogTime
		err = run(context.Background(), &log, cfg)
	}
	if err != nil && !errors.Is(err, errInterrupted) {
		log.Errorf("%v", err)
	}
	os.Exit(log.ExitCode())
}

func run(ctx context.Context, log *logio.Logger, cfg config) (err error) {
	t, err := stdterm.Open(os.Stdin, os.Stdout, cfg.Charset)
	if err != nil {
		return err
	}

	opts := append(cfg.options(),
		goforth.WithTerminal(t),
		goforth.WithLineInput(t),
		goforth.WithFileSystem(goforth.OSFileSystem{}),
		goforth.WithCloser(t),
	)
	if w := t.Width(); w > 0 {
		opts = append(opts, goforth.WithTerminalWidth(w))
	}
	if cfg.Trace {
		opts = append(opts, goforth.WithLogf(log.Leveledf("TRACE")))
	}
	vm := goforth.New(opts...)
	defer func() {
		if cerr := vm.Close(); err == nil {
			err = cerr
		}
	}()

	if cfg.Timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	eg, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	eg.Go(func() error {
		defer close(done)
		return runVM(ctx, vm, cfg)
	})
	eg.Go(func() error {
		return watchSignals(done, log)
	})
	return eg.Wait()
}

func runVM(ctx context.Context, vm *goforth.VM, cfg config) error {
	for _, name := range cfg.Include {
		if err := vm.Include(ctx, name); err != nil {
			return fmt.Errorf("%v: %w", name, err)
		}
	}
	for _, line := range cfg.Evaluate {
		if err := vm.Interpret(ctx, line); err != nil {
			return fmt.Errorf("evaluating %q: %w", line, err)
		}
	}
	return vm.Run(ctx)
}

// watchSignals translates an interrupt into an error, cancelling the VM's
// context; the VM notices at its next context check.
func watchSignals(done <-chan struct{}, log *logio.Logger) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	select {
	case sig := <-sigs:
		log.Printf("INFO", "received %v, stopping", sig)
		return errInterrupted
	case <-done:
		return nil
	}
}
