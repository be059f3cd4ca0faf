// Package identity translates between raw source identifiers and canonical
// member names, in both directions.
//
// Each source has its own deliberate fallback chain, expressed as an ordered
// list of steps evaluated until one yields a name. The chains mirror how the
// sources actually surface user objects: GitHub always has a login, Slack
// may give a user ID, an email, or only a handle, Notion is inconsistent
// enough to need five tiers, and Drive only ever has an email.
package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pulseboard/pulseboard/internal/mapping"
	"github.com/pulseboard/pulseboard/internal/model"
)

// ResolveMemberName is the plain forward lookup: normalize raw per the
// source's case rule, look it up, and fall back to raw itself when unmapped.
// Empty input and unknown sources pass through unchanged. The first letter
// of the result is upper-cased for display consistency; nothing else is
// touched.
func ResolveMemberName(ix *mapping.Index, src model.Source, raw string) string {
	if raw == "" {
		return ""
	}
	if !model.IsIdentifierSource(src) {
		return raw
	}
	name := raw
	if e, ok := ix.Lookup(src, raw); ok {
		name = e.MemberName
	}
	return capitalizeFirst(name)
}

// step is one tier of a source's fallback chain. It returns the resolved
// display name and whether this tier produced an answer.
type step func(ix *mapping.Index, actor model.ActorRef) (string, bool)

// ResolveActor resolves a raw activity actor through the source's fallback
// chain. It never returns an empty name: when every tier comes up dry the
// result is the "Unknown" sentinel.
func ResolveActor(ix *mapping.Index, src model.Source, actor model.ActorRef) string {
	var chain []step
	switch src {
	case model.SourceGitHub:
		chain = githubChain
	case model.SourceSlack:
		chain = slackChain
	case model.SourceNotion:
		chain = notionChain
	case model.SourceDrive, model.SourceRecordings:
		// Recording participants are referenced by their Drive email.
		chain = driveChain
	case model.SourceDailyAnalysis:
		return model.SystemMember
	default:
		if actor.Name != "" {
			return capitalizeFirst(actor.Name)
		}
		return capitalizeFirst(actor.ID)
	}
	for _, s := range chain {
		if name, ok := s(ix, actor); ok && name != "" {
			return name
		}
	}
	return "Unknown"
}

var githubChain = []step{
	// Mapped login, or the login itself when unmapped.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.ID == "" {
			return "", false
		}
		return ResolveMemberName(ix, model.SourceGitHub, a.ID), true
	},
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		return capitalizeFirst(a.Name), a.Name != ""
	},
}

var slackChain = []step{
	// User ID is the most stable Slack reference. A legacy row that
	// self-maps the ID, or one that resolves to an unmapped email, is not a
	// real mapping; fall through to the email tier.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.ID == "" {
			return "", false
		}
		e, ok := ix.Lookup(model.SourceSlack, a.ID)
		if !ok || e.MemberName == a.ID || strings.Contains(e.MemberName, "@") {
			return "", false
		}
		return capitalizeFirst(e.MemberName), true
	},
	// Email, lower-cased before lookup. Only accepted when the result
	// actually changed and is no longer an email: a resolution that still
	// contains "@" is treated as unmapped. (A legitimately mapped display
	// name containing "@" would be misclassified; preserved as-is.)
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.Email == "" {
			return "", false
		}
		raw := strings.ToLower(a.Email)
		e, ok := ix.Lookup(model.SourceSlack, raw)
		if !ok {
			return "", false
		}
		if e.MemberName == raw || strings.Contains(e.MemberName, "@") {
			return "", false
		}
		return capitalizeFirst(e.MemberName), true
	},
	// Capitalized raw handle as the last resort when nothing is on file.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		return capitalizeFirst(a.Name), a.Name != ""
	},
	// No name either: surface the raw user ID rather than nothing.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		return capitalizeFirst(a.ID), a.ID != ""
	},
}

var notionChain = []step{
	// (a) email, accepted only when it maps to a non-email display name.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.Email == "" {
			return "", false
		}
		e, ok := ix.Lookup(model.SourceNotion, a.Email)
		if !ok || strings.Contains(e.MemberName, "@") {
			return "", false
		}
		return capitalizeFirst(e.MemberName), true
	},
	// (b) user UUID, accepted when it maps to something other than itself
	// and the mapped value is not a UUID placeholder.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.ID == "" {
			return "", false
		}
		e, ok := ix.Lookup(model.SourceNotion, a.ID)
		if !ok || e.MemberName == a.ID || looksLikeUUID(e.MemberName) {
			return "", false
		}
		return capitalizeFirst(e.MemberName), true
	},
	// (c) first word of the raw profile name, capitalized.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.Name == "" {
			return "", false
		}
		first := strings.Fields(a.Name)
		if len(first) == 0 {
			return "", false
		}
		return capitalizeFirst(first[0]), true
	},
	// (d) synthetic identity from the UUID prefix.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.ID == "" {
			return "", false
		}
		short := a.ID
		if len(short) > 8 {
			short = short[:8]
		}
		return "Notion-" + short, true
	},
	// (e) nothing at all on the record.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		return "Unknown", true
	},
}

var driveChain = []step{
	// Email-derived mapping; when the result is still an email (or empty)
	// fall back to the capitalized local part.
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		if a.Email == "" {
			return "", false
		}
		name := ResolveMemberName(ix, model.SourceDrive, a.Email)
		if name != "" && !strings.Contains(name, "@") {
			return name, true
		}
		local, _, _ := strings.Cut(a.Email, "@")
		return capitalizeFirst(local), local != ""
	},
	func(ix *mapping.Index, a model.ActorRef) (string, bool) {
		return capitalizeFirst(a.Name), a.Name != ""
	},
}

// IdentifiersForMember is the reverse lookup: all original (un-normalized)
// identifiers on file for the member in the given source, matched by display
// name case-insensitively. Empty name or unknown source yields no matches.
func IdentifiersForMember(ix *mapping.Index, src model.Source, memberName string) []string {
	if memberName == "" || !model.IsIdentifierSource(src) {
		return nil
	}
	var out []string
	for _, e := range ix.Entries(src) {
		if strings.EqualFold(e.MemberName, memberName) {
			out = append(out, e.Original)
		}
	}
	return out
}

// looksLikeUUID reports whether s has the 8-4-4-4-12 hex shape Notion uses
// for user IDs.
func looksLikeUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	for i, r := range s {
		switch i {
		case 8, 13, 18, 23:
			if r != '-' {
				return false
			}
		default:
			isHex := (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
			if !isHex {
				return false
			}
		}
	}
	return true
}

// capitalizeFirst upper-cases only the first rune. Full title-casing is
// deliberately not applied.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size <= 1 {
		return s
	}
	up := unicode.ToUpper(r)
	if up == r {
		return s
	}
	return string(up) + s[size:]
}
