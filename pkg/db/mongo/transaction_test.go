package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/mongo/readconcern"
)

func TestTransactionOptions(t *testing.T) {
	opts := TransactionOptions()

	if opts.ReadConcern == nil || opts.ReadConcern.Level != readconcern.Snapshot().Level {
		t.Errorf("expected snapshot read concern, got %+v", opts.ReadConcern)
	}
	if opts.WriteConcern == nil || !opts.WriteConcern.Acknowledged() {
		t.Errorf("expected acknowledged write concern, got %+v", opts.WriteConcern)
	}
	if opts.WriteConcern.W != "majority" {
		t.Errorf("expected majority write concern, got %v", opts.WriteConcern.W)
	}
}
