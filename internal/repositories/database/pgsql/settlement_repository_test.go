package pgsql

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	"github.com/splitkit/settlement_app/internal/models"
)

func strPtr(s string) *string { return &s }

func TestMapCreateError_InFlightConstraint(t *testing.T) {
	settlement := domain.Settlement{
		SettlementID: "stl-1",
		GroupID:      "group-1",
		FromMemberID: "alice",
		ToMemberID:   "bob",
	}
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: inFlightConstraint}

	err := mapCreateError(pgErr, settlement)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSettlementInFlight)
	assert.Contains(t, err.Error(), "alice -> bob")
}

func TestMapCreateError_OtherUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "settlements_pkey"}

	err := mapCreateError(pgErr, domain.Settlement{SettlementID: "stl-1"})

	assert.ErrorIs(t, err, apperrors.ErrDuplicate)
	assert.NotErrorIs(t, err, apperrors.ErrSettlementInFlight)
}

func TestMapCreateError_UnrelatedError(t *testing.T) {
	err := mapCreateError(errors.New("connection reset by peer"), domain.Settlement{SettlementID: "stl-1"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrSettlementInFlight)
	assert.NotErrorIs(t, err, apperrors.ErrDuplicate)
}

func TestIsRepeatFailure(t *testing.T) {
	tests := []struct {
		name    string
		current models.Settlement
		reason  string
		want    bool
	}{
		{
			name:    "same reason on a failed row",
			current: models.Settlement{Status: models.SettlementFailed, FailureReason: strPtr("processor timeout")},
			reason:  "processor timeout",
			want:    true,
		},
		{
			name:    "different reason on a failed row",
			current: models.Settlement{Status: models.SettlementFailed, FailureReason: strPtr("processor timeout")},
			reason:  "insufficient funds",
			want:    false,
		},
		{
			name:    "failed row without a recorded reason",
			current: models.Settlement{Status: models.SettlementFailed},
			reason:  "processor timeout",
			want:    false,
		},
		{
			name:    "same reason on a processing row",
			current: models.Settlement{Status: models.SettlementProcessing, FailureReason: strPtr("processor timeout")},
			reason:  "processor timeout",
			want:    false,
		},
		{
			name:    "same reason on a pending row",
			current: models.Settlement{Status: models.SettlementPending},
			reason:  "processor timeout",
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRepeatFailure(tt.current, tt.reason))
		})
	}
}

// stubTx overrides only Rollback; unembedded methods are never called.
type stubTx struct {
	pgx.Tx
	rollbackErr error
}

func (t stubTx) Rollback(context.Context) error { return t.rollbackErr }

func TestBaseRepositoryRollback_IgnoresClosedTx(t *testing.T) {
	repo := BaseRepository{}

	err := repo.Rollback(context.Background(), stubTx{rollbackErr: pgx.ErrTxClosed})

	assert.NoError(t, err)
}

func TestBaseRepositoryRollback_ReportsRealFailure(t *testing.T) {
	repo := BaseRepository{}

	err := repo.Rollback(context.Background(), stubTx{rollbackErr: errors.New("broken pipe")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to rollback transaction")
}
