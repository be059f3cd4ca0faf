package model

import "time"

// Source identifies a third-party system contributing activity data.
type Source string

const (
	SourceGitHub Source = "github"
	SourceSlack  Source = "slack"
	SourceNotion Source = "notion"
	SourceDrive  Source = "drive"

	// SourceRecordings contributes meeting-recording activity. Recordings
	// carry no identifier rows of their own; participants are referenced by
	// their Drive email.
	SourceRecordings Source = "recordings"

	// SourceDailyAnalysis is the system-generated digest pseudo-source. Its
	// records have no member association and always resolve to SystemMember.
	SourceDailyAnalysis Source = "daily_analysis"
)

// SystemMember is the sentinel display name stamped on daily-analysis records.
const SystemMember = "System"

// IdentifierSources lists the sources that may own identifier rows.
func IdentifierSources() []Source {
	return []Source{SourceGitHub, SourceSlack, SourceNotion, SourceDrive}
}

// IsIdentifierSource reports whether s is one of the four mapped sources.
func IsIdentifierSource(s Source) bool {
	switch s {
	case SourceGitHub, SourceSlack, SourceNotion, SourceDrive:
		return true
	}
	return false
}

// IsActivitySource reports whether s names a fetchable activity source.
func IsActivitySource(s Source) bool {
	return IsIdentifierSource(s) || s == SourceRecordings || s == SourceDailyAnalysis
}

// ActivitySources lists every source the aggregator can fan out to.
func ActivitySources() []Source {
	return []Source{SourceGitHub, SourceSlack, SourceNotion, SourceDrive, SourceRecordings, SourceDailyAnalysis}
}

// Member is a canonical person in the organization.
type Member struct {
	MemberID     string     `json:"memberId"`
	Name         string     `json:"name"`
	Role         *string    `json:"role,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
	UpdateTime   *time.Time `json:"updateTime,omitempty"`
}

// Identifier links one source-specific raw user reference to a member.
// MemberName is denormalized for fast index builds and must track the owning
// member's current name.
type Identifier struct {
	IdentifierID string    `json:"identifierId"`
	MemberID     string    `json:"memberId"`
	MemberName   string    `json:"memberName"`
	Source       Source    `json:"source"`
	Type         string    `json:"type"` // username | user_id | email
	Value        string    `json:"value"`
	CreationTime time.Time `json:"creationTime"`
}

// ActorRef carries the identifier-bearing fields of a raw activity document.
// Sources populate only the fields they surface: GitHub sets ID (the login),
// Slack sets ID and sometimes Email/Name, Notion any combination of the
// three, Drive and recordings set Email.
type ActorRef struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// RawActivity is a per-source activity document as fetched from storage.
// Timestamp is the raw source value and may be timezone-naive; OccurredAt is
// the parsed instant used by stores for range filters and native sorting
// (nil when the source gave nothing parseable).
type RawActivity struct {
	ID           string                 `json:"id"`
	Source       Source                 `json:"source"`
	ActivityType string                 `json:"activityType"`
	Actor        ActorRef               `json:"actor"`
	Timestamp    string                 `json:"timestamp,omitempty"`
	OccurredAt   *time.Time             `json:"occurredAt,omitempty"`
	TargetDate   string                 `json:"targetDate,omitempty"` // daily_analysis only, YYYY-MM-DD
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ResolvedActivity is a raw activity stamped with a canonical member name and
// an explicit-UTC timestamp, ready for cross-source merge and pagination.
type ResolvedActivity struct {
	ID           string                 `json:"id"`
	SourceType   Source                 `json:"sourceType"`
	ActivityType string                 `json:"activityType"`
	Timestamp    string                 `json:"timestamp"`
	MemberName   string                 `json:"memberName"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// ActivityFilter is the source-native filter the aggregator hands a fetcher.
// Identifiers are matched OR-wise against the document's identifier-bearing
// fields; MemberName, when set, is an additional case-insensitive prefix
// catch-all on the raw display-name field for members with no identifier on
// record yet.
type ActivityFilter struct {
	Identifiers []string
	MemberName  string
	From        *time.Time
	To          *time.Time
}

// ListActivitiesRequest captures the aggregation parameters.
type ListActivitiesRequest struct {
	Sources    []Source
	MemberName string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}
