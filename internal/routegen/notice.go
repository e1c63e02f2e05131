package routegen

// Reasons a piece of input was left out of the generated routes.
const (
	// NoticeRateLimitDomain: labels for a domain other than the configured
	// rate-limit service domain. The data plane filter supports one domain.
	NoticeRateLimitDomain = "ratelimit_domain"

	// NoticeRateLimitInvalid: label groups the action builder rejected.
	NoticeRateLimitInvalid = "ratelimit_invalid"

	// NoticeShadow: shadow targets beyond the first. The data plane mirrors
	// to one cluster only.
	NoticeShadow = "shadow"
)

// Notice reports input of one group that was dropped on purpose.
type Notice struct {
	GroupID string
	Reason  string
	Count   int
	Detail  string
}

type noticeKey struct {
	groupID string
	reason  string
}

// noticeLog collects notices once per group and reason. Every mapping of a
// group sees the same group-level input, so repeats carry no information.
type noticeLog struct {
	notices []Notice
	seen    map[noticeKey]struct{}
}

func (l *noticeLog) add(notice Notice) {
	key := noticeKey{groupID: notice.GroupID, reason: notice.Reason}

	if l.seen == nil {
		l.seen = make(map[noticeKey]struct{})
	}

	if _, ok := l.seen[key]; ok {
		return
	}

	l.seen[key] = struct{}{}
	l.notices = append(l.notices, notice)
}
