// Package storetest holds the compliance suite every store backend must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/model"
	"github.com/pulseboard/pulseboard/internal/store"
)

// Run exercises a store.Store implementation end to end. makeStore must
// return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Members
	name := "Member-" + uuid.New().String()[:8]
	m, err := s.Members().Create(ctx, &model.Member{Name: name})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if m.MemberID == "" {
		t.Fatalf("CreateMember: empty member id")
	}
	if got, err := s.Members().Get(ctx, m.MemberID); err != nil || got.Name != name {
		t.Fatalf("GetMember: got=%v err=%v", got, err)
	}
	if lst, err := s.Members().List(ctx); err != nil || len(lst) == 0 {
		t.Fatalf("ListMembers: n=%d err=%v", len(lst), err)
	}
	if _, err := s.Members().Get(ctx, "missing-"+uuid.New().String()); err != model.ErrNotFound {
		t.Fatalf("GetMember missing: want ErrNotFound, got %v", err)
	}

	// Identifiers
	id1, err := s.Identifiers().Create(ctx, &model.Identifier{
		MemberID: m.MemberID, MemberName: m.Name,
		Source: model.SourceGitHub, Type: "username", Value: "octo-" + uuid.New().String()[:8],
	})
	if err != nil {
		t.Fatalf("CreateIdentifier: %v", err)
	}
	if _, err := s.Identifiers().Create(ctx, &model.Identifier{
		MemberID: m.MemberID, MemberName: m.Name,
		Source: model.SourceSlack, Type: "user_id", Value: "U" + uuid.New().String()[:8],
	}); err != nil {
		t.Fatalf("CreateIdentifier slack: %v", err)
	}
	if all, err := s.Identifiers().List(ctx); err != nil || len(all) < 2 {
		t.Fatalf("ListIdentifiers: n=%d err=%v", len(all), err)
	}
	if mine, err := s.Identifiers().ListByMember(ctx, m.MemberID); err != nil || len(mine) != 2 {
		t.Fatalf("ListByMember: n=%d err=%v", len(mine), err)
	}

	// Upsert replaces in place on (member, source, type)
	up, err := s.Identifiers().Upsert(ctx, &model.Identifier{
		MemberID: m.MemberID, MemberName: m.Name,
		Source: model.SourceGitHub, Type: "username", Value: "octo-renamed",
	})
	if err != nil {
		t.Fatalf("UpsertIdentifier: %v", err)
	}
	if up.IdentifierID != id1.IdentifierID || up.Value != "octo-renamed" {
		t.Fatalf("UpsertIdentifier: expected in-place update of %s, got %+v", id1.IdentifierID, up)
	}
	if mine, err := s.Identifiers().ListByMember(ctx, m.MemberID); err != nil || len(mine) != 2 {
		t.Fatalf("ListByMember after upsert: n=%d err=%v", len(mine), err)
	}

	// Rename propagates to identifier rows
	renamed, err := s.Members().Rename(ctx, m.MemberID, name+"-v2")
	if err != nil || renamed.Name != name+"-v2" {
		t.Fatalf("RenameMember: got=%v err=%v", renamed, err)
	}
	mine, err := s.Identifiers().ListByMember(ctx, m.MemberID)
	if err != nil {
		t.Fatalf("ListByMember after rename: %v", err)
	}
	for _, id := range mine {
		if id.MemberName != name+"-v2" {
			t.Fatalf("identifier member_name not synced after rename: %+v", id)
		}
	}

	// Activities
	at := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		ts := at.Add(-time.Duration(i) * time.Hour)
		if err := s.Activities().Insert(ctx, &model.RawActivity{
			Source:       model.SourceGitHub,
			ActivityType: "commit",
			Actor:        model.ActorRef{ID: "octo-renamed"},
			Timestamp:    ts.Format(time.RFC3339),
			OccurredAt:   &ts,
		}); err != nil {
			t.Fatalf("InsertActivity %d: %v", i, err)
		}
	}
	recs, err := s.Activities().ListBySource(ctx, model.SourceGitHub, model.ActivityFilter{
		Identifiers: []string{"octo-renamed"},
	}, 0)
	if err != nil || len(recs) != 3 {
		t.Fatalf("ListBySource: n=%d err=%v", len(recs), err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i-1].OccurredAt.Before(*recs[i].OccurredAt) {
			t.Fatalf("ListBySource: not sorted descending")
		}
	}
	if recs, err := s.Activities().ListBySource(ctx, model.SourceGitHub, model.ActivityFilter{
		Identifiers: []string{"octo-renamed"},
	}, 2); err != nil || len(recs) != 2 {
		t.Fatalf("ListBySource limit: n=%d err=%v", len(recs), err)
	}
	from := at.Add(-90 * time.Minute)
	if recs, err := s.Activities().ListBySource(ctx, model.SourceGitHub, model.ActivityFilter{
		Identifiers: []string{"octo-renamed"},
		From:        &from,
	}, 0); err != nil || len(recs) != 2 {
		t.Fatalf("ListBySource from-filter: n=%d err=%v", len(recs), err)
	}

	// Display-name catch-all matches case-insensitive prefixes
	if err := s.Activities().Insert(ctx, &model.RawActivity{
		Source:       model.SourceSlack,
		ActivityType: "message",
		Actor:        model.ActorRef{Name: "unmapped person"},
		Timestamp:    at.Format(time.RFC3339),
		OccurredAt:   &at,
	}); err != nil {
		t.Fatalf("InsertActivity slack: %v", err)
	}
	if recs, err := s.Activities().ListBySource(ctx, model.SourceSlack, model.ActivityFilter{
		MemberName: "Unmapped",
	}, 0); err != nil || len(recs) != 1 {
		t.Fatalf("ListBySource name catch-all: n=%d err=%v", len(recs), err)
	}

	// Identifier delete
	if err := s.Identifiers().Delete(ctx, id1.IdentifierID); err != nil {
		t.Fatalf("DeleteIdentifier: %v", err)
	}
	if err := s.Identifiers().Delete(ctx, id1.IdentifierID); err != model.ErrNotFound {
		t.Fatalf("DeleteIdentifier twice: want ErrNotFound, got %v", err)
	}

	// Member delete cascades
	if err := s.Members().Delete(ctx, m.MemberID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}
	if left, err := s.Identifiers().ListByMember(ctx, m.MemberID); err != nil || len(left) != 0 {
		t.Fatalf("identifiers not cascaded on member delete: n=%d err=%v", len(left), err)
	}
}
