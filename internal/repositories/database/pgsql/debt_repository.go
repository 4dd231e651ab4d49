package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	"github.com/splitkit/settlement_app/internal/models"
	"github.com/splitkit/settlement_app/internal/utils/mapping"
)

type PgxDebtRepository struct {
	BaseRepository
}

// newPgxDebtRepository creates a new repository for debt data.
func newPgxDebtRepository(pool *pgxpool.Pool) portsrepo.DebtRepositoryFacade {
	return &PgxDebtRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.DebtRepositoryFacade = (*PgxDebtRepository)(nil)

// ListDebtsByGroup retrieves every raw debt edge for a group, ordered
// for deterministic aggregation input.
func (r *PgxDebtRepository) ListDebtsByGroup(ctx context.Context, groupID string) ([]domain.Debt, error) {
	query := `
		SELECT debt_id, group_id, from_member_id, to_member_id, amount, currency_code,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM debts
		WHERE group_id = $1
		ORDER BY from_member_id ASC, to_member_id ASC, debt_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list debts for group "+groupID, err)
	}
	defer rows.Close()

	var out []models.Debt
	for rows.Next() {
		var m models.Debt
		if err := rows.Scan(
			&m.DebtID,
			&m.GroupID,
			&m.FromMemberID,
			&m.ToMemberID,
			&m.Amount,
			&m.CurrencyCode,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
		); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan debt row", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "debt row iteration failed", err)
	}
	return mapping.ToDomainDebts(out), nil
}

// ReplaceGroupDebts swaps the group's entire debt set inside one
// transaction. Readers either see the old set or the new one, never a
// mix.
func (r *PgxDebtRepository) ReplaceGroupDebts(ctx context.Context, groupID string, debts []domain.Debt) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if _, err := tx.Exec(ctx, `DELETE FROM debts WHERE group_id = $1;`, groupID); err != nil {
		return apperrors.NewAppError(500, "failed to clear debts for group "+groupID, err)
	}

	if len(debts) > 0 {
		rows := make([][]any, len(debts))
		for i, d := range debts {
			m := mapping.ToModelDebt(d)
			rows[i] = []any{
				m.DebtID, m.GroupID, m.FromMemberID, m.ToMemberID, m.Amount, m.CurrencyCode,
				m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
			}
		}
		_, err := tx.CopyFrom(ctx,
			pgx.Identifier{"debts"},
			[]string{"debt_id", "group_id", "from_member_id", "to_member_id", "amount", "currency_code",
				"created_at", "created_by", "last_updated_at", "last_updated_by"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return apperrors.NewAppError(500, "failed to insert debts for group "+groupID, err)
		}
	}

	return r.Commit(ctx, tx)
}
