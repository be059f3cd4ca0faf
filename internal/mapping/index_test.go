package mapping

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/model"
)

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		src  model.Source
		in   string
		want string
	}{
		{model.SourceGitHub, "OctoCat", "octocat"},
		{model.SourceDrive, "Alice@Example.COM", "alice@example.com"},
		{model.SourceSlack, "U0123ABC", "U0123ABC"},
		{model.SourceNotion, "A1B2-C3D4", "A1B2-C3D4"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, NormalizeKey(c.src, c.in), "source %s", c.src)
	}
}

func TestBuildIndexLookup(t *testing.T) {
	ix := BuildIndex([]*model.Identifier{
		{Source: model.SourceGitHub, Value: "OctoCat", MemberName: "Alice"},
		{Source: model.SourceSlack, Value: "U0123ABC", MemberName: "Bob"},
		{Source: model.SourceDrive, Value: "alice@example.com", MemberName: "Alice"},
	})
	require.Equal(t, 3, ix.Len())

	// GitHub lookups are case-insensitive.
	e, ok := ix.Lookup(model.SourceGitHub, "OCTOCAT")
	require.True(t, ok)
	require.Equal(t, "Alice", e.MemberName)
	require.Equal(t, "OctoCat", e.Original)

	// Slack IDs are case-sensitive.
	_, ok = ix.Lookup(model.SourceSlack, "u0123abc")
	require.False(t, ok)
	_, ok = ix.Lookup(model.SourceSlack, "U0123ABC")
	require.True(t, ok)
}

func TestBuildIndexSkipsBadRows(t *testing.T) {
	ix := BuildIndex([]*model.Identifier{
		nil,
		{Source: model.SourceGitHub, Value: "", MemberName: "Alice"},
		{Source: "jira", Value: "someone", MemberName: "Alice"},
		{Source: model.SourceRecordings, Value: "x@y.z", MemberName: "Alice"},
		{Source: model.SourceGitHub, Value: "real", MemberName: "Alice"},
	})
	require.Equal(t, 1, ix.Len())
}

func TestBuildIndexIsDeterministic(t *testing.T) {
	rows := []*model.Identifier{
		{Source: model.SourceGitHub, Value: "OctoCat", MemberName: "Alice"},
		{Source: model.SourceSlack, Value: "U0123ABC", MemberName: "Bob"},
		{Source: model.SourceNotion, Value: "a1b2c3", MemberName: "Carol"},
		{Source: model.SourceDrive, Value: "dave@example.com", MemberName: "Dave"},
	}
	a, b := BuildIndex(rows), BuildIndex(rows)
	require.Equal(t, a.Len(), b.Len())
	for _, src := range model.IdentifierSources() {
		require.Equal(t, a.Entries(src), b.Entries(src), "source %s", src)
	}
}

func TestBuildIndexLastWriteWins(t *testing.T) {
	ix := BuildIndex([]*model.Identifier{
		{Source: model.SourceGitHub, Value: "Shared", MemberName: "First"},
		{Source: model.SourceGitHub, Value: "shared", MemberName: "Second"},
	})
	e, ok := ix.Lookup(model.SourceGitHub, "SHARED")
	require.True(t, ok)
	require.Equal(t, "Second", e.MemberName)
	require.Equal(t, "shared", e.Original)
	require.Equal(t, 1, ix.Len())
}

func TestBuildIndexUpgradesLegacyRows(t *testing.T) {
	// Rows written before member names were denormalized have no MemberName;
	// the value itself becomes the display name.
	ix := BuildIndex([]*model.Identifier{
		{Source: model.SourceSlack, Value: "U0LEGACY"},
	})
	e, ok := ix.Lookup(model.SourceSlack, "U0LEGACY")
	require.True(t, ok)
	require.Equal(t, "U0LEGACY", e.MemberName)
}

func TestNewIndexLookupOnEmpty(t *testing.T) {
	ix := NewIndex()
	_, ok := ix.Lookup(model.SourceGitHub, "anyone")
	require.False(t, ok)
	require.Zero(t, ix.Len())
	require.NotNil(t, ix.Entries(model.SourceDrive))
}
