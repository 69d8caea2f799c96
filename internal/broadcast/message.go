package broadcast

import "strings"

// Kind tags a Message. Payload fields are only meaningful for their kind.
type Kind string

const (
	KindLoadCommunityReady Kind = "load community ready"
	KindUserStatusChanged  Kind = "user status changed"
)

// Message is a status notification delivered to every subscriber.
type Message struct {
	Kind           Kind            `json:"type"`
	CommunityReady *CommunityReady `json:"community_ready,omitempty"`
}

// CommunityReady announces that the managed community finished loading.
// CommunityID may be empty when the sender does not know it.
type CommunityReady struct {
	CommunityID string `json:"community_id,omitempty"`
}

func LoadCommunityReady(communityID string) Message {
	return Message{
		Kind:           KindLoadCommunityReady,
		CommunityReady: &CommunityReady{CommunityID: strings.TrimSpace(communityID)},
	}
}

// ParseKind maps a wire type onto a known Kind.
func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.TrimSpace(raw)) {
	case KindLoadCommunityReady:
		return KindLoadCommunityReady, true
	case KindUserStatusChanged:
		return KindUserStatusChanged, true
	default:
		return "", false
	}
}
