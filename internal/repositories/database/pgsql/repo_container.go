package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	settlementRepo := newPgxSettlementRepository(dbPool)
	debtRepo := newPgxDebtRepository(dbPool)
	memberRepo := newPgxMemberRepository(dbPool)
	outboxRepo := newPgxOutboxRepository(dbPool)

	return portsrepo.RepositoryProvider{
		SettlementRepo: settlementRepo,
		DebtRepo:       debtRepo,
		MemberRepo:     memberRepo,
		OutboxRepo:     outboxRepo,
	}
}
