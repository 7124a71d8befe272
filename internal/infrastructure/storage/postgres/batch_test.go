package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchExecutor_RequiresTransaction(t *testing.T) {
	e := NewBatchExecutor(NewTxManagerFromRawPool(nil))

	err := e.ExecuteBatch(context.Background(), []BatchQuery{
		{SQL: "DELETE FROM doc_purchase_lines WHERE document_id = $1", Args: []any{"id"}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires transaction context")
}

func TestBatchInserter_RequiresTransaction(t *testing.T) {
	b := NewBatchInserter(NewTxManagerFromRawPool(nil))

	_, err := b.CopyFromSlice(context.Background(), "stock_ledger", []string{"entry_id"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires transaction context")
}
