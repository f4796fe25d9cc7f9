package types

// PolicyRule is an owner-chosen visibility or bookability rule attached to
// a content item. The same rule vocabulary gates recommendations (who can
// view) and bookable resources (who can book).
type PolicyRule string

const (
	RuleAnyone          PolicyRule = "anyone"
	RuleFriendsOnly     PolicyRule = "friends_only" // Alias for 1st degree
	RuleFirstDegree     PolicyRule = "1st_degree"
	RuleSecondDegree    PolicyRule = "2nd_degree"
	RuleThirdDegree     PolicyRule = "3rd_degree"
	RuleCustomCloseness PolicyRule = "custom_closeness"
)

// Known reports whether the rule is part of the recognized vocabulary.
// Unrecognized rules are treated as a policy misconfiguration and denied.
func (r PolicyRule) Known() bool {
	switch r {
	case RuleAnyone, RuleFriendsOnly, RuleFirstDegree,
		RuleSecondDegree, RuleThirdDegree, RuleCustomCloseness:
		return true
	}
	return false
}

// AccessPolicy is the rule attached to a content item, set by the item's
// owner at creation and consulted read-only by the engine.
type AccessPolicy struct {
	Rule PolicyRule `json:"rule"`

	// MinimumClosenessScore applies only when Rule is custom_closeness.
	MinimumClosenessScore int `json:"minimum_closeness_score,omitempty"`
}

// Decision is the outcome of an access-policy evaluation. Denials are a
// normal, reason-carrying result, not an error: Reason is surfaced
// directly to end users to explain why content is hidden or a booking
// was refused.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}
