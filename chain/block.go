package chain

import (
	"context"
	"time"
)

// Block is a finalized block with its extrinsics in on-chain order.
type Block struct {
	Number     int64       `json:"number"`
	Hash       string      `json:"hash"`
	Timestamp  time.Time   `json:"timestamp"`
	Extrinsics []Extrinsic `json:"extrinsics"`
}

// BlockSource gives access to the ledger's blocks.
type BlockSource interface {
	Head(ctx context.Context) (int64, error)
	Block(ctx context.Context, number int64) (*Block, error)
}
