package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/splitkit/settlement_app/internal/apperrors"
	"github.com/splitkit/settlement_app/internal/core/domain"
	portsrepo "github.com/splitkit/settlement_app/internal/core/ports/repositories"
	"github.com/splitkit/settlement_app/internal/models"
	"github.com/splitkit/settlement_app/internal/utils/mapping"
)

// PgxMemberRepository is the read-only member directory. Membership is
// maintained by the group service upstream; this core only looks it up.
type PgxMemberRepository struct {
	BaseRepository
}

// newPgxMemberRepository creates a new repository for member directory data.
func newPgxMemberRepository(pool *pgxpool.Pool) portsrepo.MemberReader {
	return &PgxMemberRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MemberReader = (*PgxMemberRepository)(nil)

// FindMemberByID retrieves a single member.
func (r *PgxMemberRepository) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	query := `
		SELECT member_id, group_id, display_name, avatar_ref
		FROM group_members
		WHERE member_id = $1;
	`
	var m models.Member
	err := r.Pool.QueryRow(ctx, query, memberID).Scan(&m.MemberID, &m.GroupID, &m.DisplayName, &m.AvatarRef)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find member "+memberID, err)
	}
	d := mapping.ToDomainMember(m)
	return &d, nil
}

// ListMembersByGroup retrieves the group's members sorted by member id.
func (r *PgxMemberRepository) ListMembersByGroup(ctx context.Context, groupID string) ([]domain.Member, error) {
	query := `
		SELECT member_id, group_id, display_name, avatar_ref
		FROM group_members
		WHERE group_id = $1
		ORDER BY member_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, groupID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list members for group "+groupID, err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m models.Member
		if err := rows.Scan(&m.MemberID, &m.GroupID, &m.DisplayName, &m.AvatarRef); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan member row", err)
		}
		out = append(out, mapping.ToDomainMember(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "member row iteration failed", err)
	}
	return out, nil
}
