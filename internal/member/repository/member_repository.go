package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"community_chat_service/internal/member/domain"
)

// ErrMemberNotFound no row matched the query
var ErrMemberNotFound = errors.New("no member found with given criteria")

// MemberRepository definition get Member info
type MemberRepository interface {
	EnsureSchema(ctx context.Context) error
	CreateMember(ctx context.Context, member *domain.Member) error
	FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error)
}

type memberRepository struct {
	db *pgxpool.Pool
}

// NewMemberRepository create a MemberRepository
func NewMemberRepository(db *pgxpool.Pool) MemberRepository {
	return &memberRepository{db: db}
}

const memberSchema = `
CREATE TABLE IF NOT EXISTS member (
	id          BIGSERIAL PRIMARY KEY,
	member_id   VARCHAR(64)  NOT NULL UNIQUE,
	username    VARCHAR(64)  NOT NULL,
	email       VARCHAR(255) NOT NULL UNIQUE,
	password    VARCHAR(255) NOT NULL,
	name_color  VARCHAR(16)  NOT NULL DEFAULT '',
	role        VARCHAR(16)  NOT NULL DEFAULT 'user',
	avatar_key  VARCHAR(255) NOT NULL DEFAULT ''
)`

func (r *memberRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, memberSchema)
	return err
}

func (r *memberRepository) CreateMember(ctx context.Context, member *domain.Member) error {
	if member.Role == "" {
		member.Role = domain.RoleUser
	}
	row := r.db.QueryRow(ctx,
		`INSERT INTO member(member_id, username, email, password, name_color, role, avatar_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		member.MemberID, member.Username, member.Email, member.Password, member.NameColor, string(member.Role), member.AvatarKey)
	return row.Scan(&member.ID)
}

func (r *memberRepository) FindByMember(ctx context.Context, memberQuery *domain.MemberQuery) (*domain.Member, error) {
	queryStr := "SELECT id, member_id, username, email, password, name_color, role, avatar_key FROM member WHERE 1=1"
	params := []interface{}{}
	paramCount := 1

	if memberQuery.Email != nil {
		queryStr += fmt.Sprintf(" AND email = $%d", paramCount)
		params = append(params, *memberQuery.Email)
		paramCount++
	}
	if memberQuery.MemberID != nil {
		queryStr += fmt.Sprintf(" AND member_id = $%d", paramCount)
		params = append(params, *memberQuery.MemberID)
		paramCount++
	}
	if memberQuery.ID != nil {
		queryStr += fmt.Sprintf(" AND id = $%d", paramCount)
		params = append(params, *memberQuery.ID)
		paramCount++
	}
	if memberQuery.Role != nil {
		queryStr += fmt.Sprintf(" AND role = $%d", paramCount)
		params = append(params, string(*memberQuery.Role))
	}
	queryStr += " ORDER BY id LIMIT 1"

	var member domain.Member
	var role string
	err := r.db.QueryRow(ctx, queryStr, params...).Scan(
		&member.ID, &member.MemberID, &member.Username, &member.Email, &member.Password,
		&member.NameColor, &role, &member.AvatarKey,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	member.Role = domain.Role(role)

	return &member, nil
}
