package services

import (
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
	"github.com/splitkit/settlement_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, processor portssvc.PaymentProcessor, notifier portssvc.RealtimeNotifier) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Notifier = notifier
	container.Members = NewMemberService(repos.MemberRepo)
	container.Balance = NewBalanceService(repos.DebtRepo, repos.SettlementRepo, repos.MemberRepo, notifier)
	container.Netting = NewNettingService()
	container.Settlement = NewSettlementService(repos.SettlementRepo, repos.MemberRepo)
	container.Coordinator = NewCoordinatorService(
		container.Balance,
		container.Netting,
		container.Settlement,
		processor,
		notifier,
		WithProcessorTimeout(cfg.ProcessorTimeout),
		WithMaxChargeAttempts(cfg.ProcessorMaxAttempts),
	)

	return container
}

// Compile-time interface checks for the concrete services.
var (
	_ portssvc.BalanceSvcFacade    = (*balanceService)(nil)
	_ portssvc.NettingSvc          = (*nettingService)(nil)
	_ portssvc.SettlementSvcFacade = (*settlementService)(nil)
	_ portssvc.CoordinatorSvc      = (*coordinatorService)(nil)
)
