// Package ledger is the port between the bank actor and whatever keeps
// account balances durable. The bank owns balances in memory; a Store only
// receives the result of each completed withdrawal and supplies balances on
// start-up.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrNotFound = errors.New("ledger: account not found")

// Entry is the persisted balance of one account.
type Entry struct {
	Account   string    `json:"account"`
	Balance   uint64    `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Store interface {
	Get(ctx context.Context, account string) (Entry, error)
	Put(ctx context.Context, entry Entry) error
}

// Marshal encodes an entry for byte-oriented stores.
func Marshal(e Entry) ([]byte, error) { return json.Marshal(e) }

// Unmarshal decodes an entry written by Marshal.
func Unmarshal(data []byte) (e Entry, err error) {
	err = json.Unmarshal(data, &e)
	return
}
