package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/codewandler/csp-go/ports/ledger"
)

const DefaultLedgerBucket = "csp_ledger"

var ErrInvalidAccount = errors.New("nats: account id is not a valid key")

type LedgerConfig struct {
	Connect Connector
	Bucket  string
	Logger  *slog.Logger
}

// LedgerStore keeps one KV entry per account in a JetStream bucket.
type LedgerStore struct {
	kv    jetstream.KeyValue
	close closeFunc
	log   *slog.Logger
}

func NewLedgerStore(ctx context.Context, cfg LedgerConfig) (*LedgerStore, error) {
	connect := cfg.Connect
	if connect == nil {
		connect = ConnectDefault()
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = DefaultLedgerBucket
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	nc, closeConn, err := connect()
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		closeConn()
		return nil, err
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "account balances",
		Storage:     jetstream.FileStorage,
		History:     1,
	})
	if err != nil {
		closeConn()
		return nil, fmt.Errorf("create bucket %s: %w", bucket, err)
	}

	return &LedgerStore{
		kv:    kv,
		close: closeConn,
		log:   log.With(slog.String("bucket", bucket)),
	}, nil
}

func (s *LedgerStore) Get(ctx context.Context, account string) (ledger.Entry, error) {
	key, err := ledgerKey(account)
	if err != nil {
		return ledger.Entry{}, err
	}

	v, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return ledger.Entry{}, ledger.ErrNotFound
		}
		return ledger.Entry{}, fmt.Errorf("get %s: %w", account, err)
	}
	return ledger.Unmarshal(v.Value())
}

func (s *LedgerStore) Put(ctx context.Context, e ledger.Entry) error {
	key, err := ledgerKey(e.Account)
	if err != nil {
		return err
	}

	data, err := ledger.Marshal(e)
	if err != nil {
		return err
	}

	rev, err := s.kv.Put(ctx, key, data)
	if err != nil {
		return fmt.Errorf("put %s: %w", e.Account, err)
	}
	s.log.Debug("balance stored", slog.String("account", e.Account), slog.Uint64("revision", rev))
	return nil
}

// Close releases the connection lease.
func (s *LedgerStore) Close() {
	if s.close != nil {
		s.close()
	}
}

// ledgerKey maps an account id onto the NATS key alphabet.
func ledgerKey(account string) (string, error) {
	if account == "" {
		return "", ErrInvalidAccount
	}
	for _, c := range account {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '=':
		default:
			return "", fmt.Errorf("%w: %q", ErrInvalidAccount, account)
		}
	}
	return "account." + account, nil
}

var _ ledger.Store = (*LedgerStore)(nil)
