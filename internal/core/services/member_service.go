package services

import (
	"context"

	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	portssvc "github.com/splitkit/settlement_app/internal/core/ports/services"
)

// memberService exposes the read-only member directory for display
// enrichment.
type memberService struct {
	memberRepo portsrepo.MemberReader
}

// NewMemberService creates a new MemberService.
func NewMemberService(memberRepo portsrepo.MemberReader) portssvc.MemberDirectorySvc {
	return &memberService{memberRepo: memberRepo}
}

var _ portssvc.MemberDirectorySvc = (*memberService)(nil)

func (s *memberService) GetMember(ctx context.Context, memberID string) (*domain.Member, error) {
	return s.memberRepo.FindMemberByID(ctx, memberID)
}

func (s *memberService) ListGroupMembers(ctx context.Context, groupID string) ([]domain.Member, error) {
	return s.memberRepo.ListMembersByGroup(ctx, groupID)
}
