package repository

import (
	"context"
	"time"

	"github.com/tradequest/rewards-backend/internal/rewards/repository/queries"
	"github.com/tradequest/rewards-backend/internal/rewards/types"
	"github.com/tradequest/rewards-backend/pkg/database"
)

type scyllaTransactions ScyllaStore

var _ TransactionRepository = (*scyllaTransactions)(nil)

func (r *scyllaTransactions) store() *ScyllaStore { return (*ScyllaStore)(r) }

// ApplyTransaction appends the immutable ledger row, then folds the deltas
// into the profile under the version-guarded update. The ledger row is the
// source of truth; a profile lagging one write reconciles on the next
// mutation cycle.
func (r *scyllaTransactions) ApplyTransaction(ctx context.Context, tx *types.Transaction) (*types.UserProfile, error) {
	err := r.conn.Session().Query(queries.CreateTransactionQuery, transactionValues(tx)...).
		WithContext(ctx).Exec()
	if err != nil {
		return nil, database.ClassifyError("transactions.insert", err)
	}

	return r.store().mutateProfile(ctx, tx.UserAddress, func(p *types.UserProfile) {
		p.TotalPoints += tx.Points
		p.TotalTransactions++
		switch tx.Type {
		case types.TxTypeBuy:
			p.TokenBalance += tx.Amount
		case types.TxTypeSell:
			p.TokenBalance -= tx.Amount
			if p.TokenBalance < 0 {
				p.TokenBalance = 0
			}
		}
		p.LastActiveAt = tx.Timestamp
	})
}

func (r *scyllaTransactions) ListByUser(ctx context.Context, address string, limit int) ([]*types.Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	iter := r.conn.Session().Query(queries.ListTransactionsByUserQuery, address, limit).
		WithContext(ctx).Iter()

	var transactions []*types.Transaction
	for {
		tx, ok := scanTransaction(iter)
		if !ok {
			break
		}
		transactions = append(transactions, tx)
	}
	if err := iter.Close(); err != nil {
		return nil, database.ClassifyError("transactions.list", err)
	}
	return transactions, nil
}

func (r *scyllaTransactions) CountByUserSince(ctx context.Context, address string, since time.Time) (int64, error) {
	var count int64
	err := r.conn.Session().Query(queries.CountTransactionsByUserSinceQuery, address, since).
		WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, database.ClassifyError("transactions.count_since", err)
	}
	return count, nil
}

func (r *scyllaTransactions) SumPointsByUser(ctx context.Context, address string) (int64, error) {
	var sum int64
	err := r.conn.Session().Query(queries.SumTransactionPointsByUserQuery, address).
		WithContext(ctx).Scan(&sum)
	if err != nil {
		return 0, database.ClassifyError("transactions.sum_points", err)
	}
	return sum, nil
}

func (r *scyllaTransactions) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.conn.Session().Query(queries.CountAllTransactionsQuery).WithContext(ctx).Scan(&count)
	if err != nil {
		return 0, database.ClassifyError("transactions.count", err)
	}
	return count, nil
}
