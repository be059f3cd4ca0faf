package identity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/model"
)

func buildIndex(t *testing.T, rows ...*model.Identifier) *mapping.Index {
	t.Helper()
	return mapping.BuildIndex(rows)
}

func TestResolveMemberName(t *testing.T) {
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceGitHub, Value: "octocat", MemberName: "alice"},
		&model.Identifier{Source: model.SourceDrive, Value: "bob@example.com", MemberName: "Bob"},
	)

	// Mapped, case-folded per the source rule, first letter capitalized.
	require.Equal(t, "Alice", ResolveMemberName(ix, model.SourceGitHub, "OctoCat"))
	require.Equal(t, "Bob", ResolveMemberName(ix, model.SourceDrive, "BOB@EXAMPLE.COM"))

	// Unmapped falls back to the raw value, capitalized.
	require.Equal(t, "Stranger", ResolveMemberName(ix, model.SourceGitHub, "stranger"))

	// Empty and unknown-source inputs pass through.
	require.Equal(t, "", ResolveMemberName(ix, model.SourceGitHub, ""))
	require.Equal(t, "raw-value", ResolveMemberName(ix, "jira", "raw-value"))
}

func TestResolveActorGitHub(t *testing.T) {
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceGitHub, Value: "octocat", MemberName: "alice"},
	)

	got := ResolveActor(ix, model.SourceGitHub, model.ActorRef{ID: "OctoCat"})
	require.Equal(t, "Alice", got)

	// Unmapped login surfaces as itself.
	got = ResolveActor(ix, model.SourceGitHub, model.ActorRef{ID: "drifter"})
	require.Equal(t, "Drifter", got)

	// No login at all falls through to the display name, then Unknown.
	require.Equal(t, "Casey", ResolveActor(ix, model.SourceGitHub, model.ActorRef{Name: "casey"}))
	require.Equal(t, "Unknown", ResolveActor(ix, model.SourceGitHub, model.ActorRef{}))
}

func TestResolveActorSlack(t *testing.T) {
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceSlack, Value: "U0ALICE", MemberName: "alice"},
		&model.Identifier{Source: model.SourceSlack, Value: "bob@example.com", MemberName: "Bob"},
		&model.Identifier{Source: model.SourceSlack, Value: "loop@example.com", MemberName: "loop@example.com"},
	)

	// Tier 1: user ID.
	require.Equal(t, "Alice", ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0ALICE"}))

	// Tier 2: email, only when it resolves to a real display name.
	require.Equal(t, "Bob", ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0NOPE", Email: "Bob@Example.com"}))

	// An email that maps back to an email is treated as unmapped.
	got := ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0NOPE", Email: "loop@example.com", Name: "loopy"})
	require.Equal(t, "Loopy", got)

	// Tier 3: capitalized raw handle.
	require.Equal(t, "Dana", ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0NOPE", Name: "dana"}))

	// Tier 4: raw user ID when nothing else exists.
	require.Equal(t, "U0NOPE", ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0NOPE"}))
	require.Equal(t, "Unknown", ResolveActor(ix, model.SourceSlack, model.ActorRef{}))
}

func TestResolveActorSlackRejectsSelfMappedID(t *testing.T) {
	// A legacy row stored as a bare value self-maps the user ID at index
	// build; the ID tier must treat it as unmapped so the email tier can win.
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceSlack, Value: "U0ALICE"},
		&model.Identifier{Source: model.SourceSlack, Value: "alice@example.com", MemberName: "alice"},
	)
	got := ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0ALICE", Email: "alice@example.com"})
	require.Equal(t, "Alice", got)

	// An ID mapped to an email is likewise no mapping.
	ix = buildIndex(t,
		&model.Identifier{Source: model.SourceSlack, Value: "U0BOB", MemberName: "bob@example.com"},
	)
	got = ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0BOB", Name: "bobby"})
	require.Equal(t, "Bobby", got)

	// With nothing better on the record the raw ID still surfaces.
	ix = buildIndex(t, &model.Identifier{Source: model.SourceSlack, Value: "U0CAROL"})
	require.Equal(t, "U0CAROL", ResolveActor(ix, model.SourceSlack, model.ActorRef{ID: "U0CAROL"}))
}

func TestResolveActorNotion(t *testing.T) {
	const aliceUUID = "11111111-2222-3333-4444-555555555555"
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceNotion, Value: "alice@example.com", MemberName: "alice"},
		&model.Identifier{Source: model.SourceNotion, Value: aliceUUID, MemberName: "Bob"},
		&model.Identifier{Source: model.SourceNotion, Value: "self@example.com", MemberName: "self@example.com"},
	)

	// (a) email wins when it maps to a non-email name.
	require.Equal(t, "Alice", ResolveActor(ix, model.SourceNotion, model.ActorRef{
		Email: "alice@example.com", ID: aliceUUID, Name: "someone else",
	}))

	// (b) UUID is next when the email tier rejects.
	require.Equal(t, "Bob", ResolveActor(ix, model.SourceNotion, model.ActorRef{
		Email: "self@example.com", ID: aliceUUID,
	}))

	// (c) first word of the profile name.
	require.Equal(t, "Grace", ResolveActor(ix, model.SourceNotion, model.ActorRef{
		Name: "grace hopper",
	}))

	// (d) synthetic Notion-<uuid prefix> identity.
	require.Equal(t, "Notion-99999999", ResolveActor(ix, model.SourceNotion, model.ActorRef{
		ID: "99999999-aaaa-bbbb-cccc-dddddddddddd",
	}))

	// (e) Unknown when the record is completely bare.
	require.Equal(t, "Unknown", ResolveActor(ix, model.SourceNotion, model.ActorRef{}))
}

func TestResolveActorNotionRejectsSelfAndUUIDMappings(t *testing.T) {
	const selfUUID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
	const otherUUID = "ffffffff-0000-1111-2222-333333333333"
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceNotion, Value: selfUUID, MemberName: selfUUID},
		&model.Identifier{Source: model.SourceNotion, Value: otherUUID, MemberName: "12121212-3434-5656-7878-909090909090"},
	)

	// A UUID mapped to itself or to another UUID placeholder is no mapping.
	require.Equal(t, "Notion-aaaaaaaa", ResolveActor(ix, model.SourceNotion, model.ActorRef{ID: selfUUID}))
	require.Equal(t, "Notion-ffffffff", ResolveActor(ix, model.SourceNotion, model.ActorRef{ID: otherUUID}))
}

func TestResolveActorDriveAndRecordings(t *testing.T) {
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceDrive, Value: "alice@example.com", MemberName: "alice"},
	)

	require.Equal(t, "Alice", ResolveActor(ix, model.SourceDrive, model.ActorRef{Email: "Alice@Example.com"}))

	// Unmapped email degrades to the capitalized local part.
	require.Equal(t, "Carol", ResolveActor(ix, model.SourceDrive, model.ActorRef{Email: "carol@example.com"}))

	// Recordings resolve through the Drive mappings.
	require.Equal(t, "Alice", ResolveActor(ix, model.SourceRecordings, model.ActorRef{Email: "alice@example.com"}))

	require.Equal(t, "Unknown", ResolveActor(ix, model.SourceDrive, model.ActorRef{}))
}

func TestResolveActorDailyAnalysis(t *testing.T) {
	ix := buildIndex(t)
	require.Equal(t, model.SystemMember, ResolveActor(ix, model.SourceDailyAnalysis, model.ActorRef{}))
	require.Equal(t, model.SystemMember, ResolveActor(ix, model.SourceDailyAnalysis, model.ActorRef{ID: "whatever"}))
}

func TestIdentifiersForMember(t *testing.T) {
	ix := buildIndex(t,
		&model.Identifier{Source: model.SourceGitHub, Value: "OctoCat", MemberName: "Alice"},
		&model.Identifier{Source: model.SourceGitHub, Value: "alice-work", MemberName: "alice"},
		&model.Identifier{Source: model.SourceSlack, Value: "U0ALICE", MemberName: "Alice"},
		&model.Identifier{Source: model.SourceGitHub, Value: "bobcat", MemberName: "Bob"},
	)

	got := IdentifiersForMember(ix, model.SourceGitHub, "ALICE")
	require.ElementsMatch(t, []string{"OctoCat", "alice-work"}, got)

	require.Nil(t, IdentifiersForMember(ix, model.SourceGitHub, ""))
	require.Nil(t, IdentifiersForMember(ix, "jira", "Alice"))
	require.Empty(t, IdentifiersForMember(ix, model.SourceDrive, "Alice"))
}

func TestCapitalizeFirst(t *testing.T) {
	require.Equal(t, "", capitalizeFirst(""))
	require.Equal(t, "Alice", capitalizeFirst("alice"))
	require.Equal(t, "Alice Smith", capitalizeFirst("alice Smith"))
	require.Equal(t, "Élodie", capitalizeFirst("élodie"))
	require.Equal(t, "U0123", capitalizeFirst("u0123"))
}

func TestLooksLikeUUID(t *testing.T) {
	require.True(t, looksLikeUUID("11111111-2222-3333-4444-555555555555"))
	require.True(t, looksLikeUUID("AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE"))
	require.False(t, looksLikeUUID("not-a-uuid"))
	require.False(t, looksLikeUUID("11111111222233334444555555555555"))
	require.False(t, looksLikeUUID("gggggggg-2222-3333-4444-555555555555"))
}
