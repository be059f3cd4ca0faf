package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// MemberService owns member and identifier mutations. It is the single
// invalidation site for the mapping cache: every successful mutation goes
// through afterMutation, so no handler can forget to invalidate and serve
// stale identity mappings.
type MemberService struct {
	store store.Store
	cache *mapping.Cache
	log   zerolog.Logger
}

func NewMemberService(s store.Store, cache *mapping.Cache, log zerolog.Logger) *MemberService {
	return &MemberService{store: s, cache: cache, log: log}
}

func (s *MemberService) afterMutation() {
	s.cache.Invalidate()
}

func (s *MemberService) CreateMember(ctx context.Context, m *model.Member) (*model.Member, error) {
	if strings.TrimSpace(m.Name) == "" {
		return nil, model.ErrValidation
	}
	out, err := s.store.Members().Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.afterMutation()
	return out, nil
}

func (s *MemberService) GetMember(ctx context.Context, memberID string) (*model.Member, error) {
	return s.store.Members().Get(ctx, memberID)
}

func (s *MemberService) ListMembers(ctx context.Context) ([]*model.Member, error) {
	return s.store.Members().List(ctx)
}

func (s *MemberService) RenameMember(ctx context.Context, memberID, name string) (*model.Member, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.ErrValidation
	}
	out, err := s.store.Members().Rename(ctx, memberID, name)
	if err != nil {
		return nil, err
	}
	s.afterMutation()
	return out, nil
}

func (s *MemberService) DeleteMember(ctx context.Context, memberID string) error {
	if err := s.store.Members().Delete(ctx, memberID); err != nil {
		return err
	}
	s.afterMutation()
	return nil
}

func (s *MemberService) ListIdentifiers(ctx context.Context, memberID string) ([]*model.Identifier, error) {
	return s.store.Identifiers().ListByMember(ctx, memberID)
}

// AddIdentifier attaches a source identifier to a member. The duplicate
// check is advisory: it runs against a scan of the current rows before
// insert, not a unique index, and compares per the source's case rule.
func (s *MemberService) AddIdentifier(ctx context.Context, memberID string, src model.Source, typ, value string) (*model.Identifier, error) {
	if !model.IsIdentifierSource(src) || value == "" {
		return nil, model.ErrValidation
	}
	m, err := s.store.Members().Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, src, value, ""); err != nil {
		return nil, err
	}
	out, err := s.store.Identifiers().Create(ctx, &model.Identifier{
		MemberID:   m.MemberID,
		MemberName: m.Name,
		Source:     src,
		Type:       typ,
		Value:      value,
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation()
	return out, nil
}

// UpdateIdentifier replaces the member's identifier of the given source and
// type in place (creating it when absent).
func (s *MemberService) UpdateIdentifier(ctx context.Context, memberID string, src model.Source, typ, value string) (*model.Identifier, error) {
	if !model.IsIdentifierSource(src) || value == "" {
		return nil, model.ErrValidation
	}
	m, err := s.store.Members().Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if err := s.checkDuplicate(ctx, src, value, m.MemberID); err != nil {
		return nil, err
	}
	out, err := s.store.Identifiers().Upsert(ctx, &model.Identifier{
		MemberID:   m.MemberID,
		MemberName: m.Name,
		Source:     src,
		Type:       typ,
		Value:      value,
	})
	if err != nil {
		return nil, err
	}
	s.afterMutation()
	return out, nil
}

func (s *MemberService) DeleteIdentifier(ctx context.Context, identifierID string) error {
	if err := s.store.Identifiers().Delete(ctx, identifierID); err != nil {
		return err
	}
	s.afterMutation()
	return nil
}

// checkDuplicate rejects a value already on file for the source under a
// different member. ownMemberID, when set, allows the member's own rows to
// match (the update-in-place path).
func (s *MemberService) checkDuplicate(ctx context.Context, src model.Source, value, ownMemberID string) error {
	all, err := s.store.Identifiers().List(ctx)
	if err != nil {
		return err
	}
	key := mapping.NormalizeKey(src, value)
	for _, id := range all {
		if id.Source != src {
			continue
		}
		if mapping.NormalizeKey(src, id.Value) == key && id.MemberID != ownMemberID {
			return model.ErrDuplicateIdentifier
		}
	}
	return nil
}
