// Command atm runs the ATM, bank and display actors and feeds them
// keystrokes read from stdin.
//
//	0-9  press a digit
//	i    insert the configured card
//	w    withdraw the offered amount
//	b    show the balance
//	c    cancel
//	q    quit
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codewandler/csp-go/adapters/nats"
	promadapter "github.com/codewandler/csp-go/adapters/prometheus"
	"github.com/codewandler/csp-go/core/actor"
	"github.com/codewandler/csp-go/core/messaging"
	"github.com/codewandler/csp-go/internal/atm"
	"github.com/codewandler/csp-go/internal/config"
	"github.com/codewandler/csp-go/ports/ledger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string, in io.Reader, out io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := promadapter.New(reg)

	if cfg.MetricsAddr != "" {
		srv := serveMetrics(cfg.MetricsAddr, reg, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	store, closeStore, err := openLedger(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	accounts := make([]atm.Account, 0, len(cfg.Accounts))
	for _, acc := range cfg.Accounts {
		accounts = append(accounts, atm.Account{ID: acc.ID, Pin: acc.Pin, Balance: acc.Balance})
	}

	bank := atm.NewBank(atm.BankOptions{
		Accounts:  accounts,
		Store:     store,
		Logger:    log,
		Messaging: m.Messaging,
		Metrics:   m.Actor,
	})
	ui := atm.NewUI(atm.UIOptions{
		Out:            out,
		WithdrawAmount: cfg.WithdrawAmount,
		Logger:         log,
		Messaging:      m.Messaging,
		Metrics:        m.Actor,
	})
	machine := atm.NewATM(atm.ATMOptions{
		PinLength: cfg.PinLength,
		Bank:      bank.Sender(),
		UI:        ui.Sender(),
		Logger:    log,
		Messaging: m.Messaging,
		Metrics:   m.Actor,
	})

	sys := actor.NewSystem(actor.SystemOptions{Logger: log, Metrics: m.Actor})
	err = spawnAll(sys, []member{
		{"bank", bank.Sender(), bank},
		{"ui", ui.Sender(), ui},
		{"atm", machine.Sender(), machine},
	})
	if err != nil {
		return err
	}

	feedCtx, cancelFeed := context.WithCancel(ctx)
	keys := make(chan rune)
	go readKeys(feedCtx, in, keys)

	feed(feedCtx, keys, machine.Sender(), cfg)
	cancelFeed()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return sys.Shutdown(shutdownCtx)
}

type member struct {
	name  string
	inbox messaging.Sender
	r     actor.Runnable
}

// spawnAll starts members in order. If one fails, the ones already running
// are shut down before the error is returned.
func spawnAll(sys *actor.System, members []member) error {
	for _, m := range members {
		if _, err := sys.Spawn(m.name, m.inbox, m.r); err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return errors.Join(err, sys.Shutdown(ctx))
		}
	}
	return nil
}

// feed translates keys into ATM input until q, end of input or ctx is done.
func feed(ctx context.Context, keys <-chan rune, to messaging.Sender, cfg *config.Config) {
	for {
		var (
			key rune
			ok  bool
		)
		select {
		case <-ctx.Done():
			return
		case key, ok = <-keys:
			if !ok {
				return
			}
		}

		switch {
		case key >= '0' && key <= '9':
			to.Send(atm.DigitPressed{Digit: byte(key)})
		case key == 'i':
			to.Send(atm.CardInserted{Account: cfg.CardAccount})
		case key == 'w':
			to.Send(atm.WithdrawPressed{Amount: cfg.WithdrawAmount})
		case key == 'b':
			to.Send(atm.BalancePressed{})
		case key == 'c':
			to.Send(atm.CancelPressed{})
		case key == 'q':
			return
		}
	}
}

func readKeys(ctx context.Context, in io.Reader, keys chan<- rune) {
	defer close(keys)
	r := bufio.NewReader(in)
	for {
		key, _, err := r.ReadRune()
		if err != nil {
			return
		}
		select {
		case keys <- key:
		case <-ctx.Done():
			return
		}
	}
}

func openLedger(ctx context.Context, cfg *config.Config, log *slog.Logger) (ledger.Store, func(), error) {
	if cfg.Ledger.Backend != config.LedgerNats {
		return ledger.NewMemStore(), func() {}, nil
	}

	connect := nats.ConnectDefault()
	if cfg.Ledger.NatsURL != "" {
		connect = nats.ConnectURL(cfg.Ledger.NatsURL)
	}
	store, err := nats.NewLedgerStore(ctx, nats.LedgerConfig{
		Connect: connect,
		Bucket:  cfg.Ledger.Bucket,
		Logger:  log,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open nats ledger: %w", err)
	}
	return store, store.Close, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", slog.Any("error", err))
		}
	}()
	log.Info("serving metrics", slog.String("addr", addr))
	return srv
}
