package engine

import (
	"fmt"
	"log"

	"github.com/roamsocial/trustgraph/pkg/types"
)

// Evaluate applies an owner-set access policy to the viewer's connection
// info and returns an allow/deny decision.
//
// Precedence: the owner short-circuits everything — viewers always see
// their own content. Denial reasons name the unmet threshold; they are
// surfaced directly to end users to explain why content is hidden, so the
// wording here is a contract, not incidental logging.
//
// An unrecognized rule is a policy misconfiguration and denies access.
// The anomaly is logged: failing closed is the safe default when an
// owner's intent cannot be determined.
func Evaluate(viewerID, ownerID int64, policy types.AccessPolicy, info *types.ConnectionInfo) types.Decision {
	if viewerID == ownerID {
		return types.Decision{Allowed: true}
	}

	degree := info.ConnectionDegree

	switch policy.Rule {
	case types.RuleAnyone, "":
		// An unset rule means the owner never restricted access.
		return types.Decision{Allowed: true}

	case types.RuleFriendsOnly, types.RuleFirstDegree:
		if degree != nil && *degree == 1 {
			return types.Decision{Allowed: true}
		}
		return types.Decision{
			Allowed: false,
			Reason:  "only 1st degree connections (direct friends) can access this",
		}

	case types.RuleSecondDegree:
		if degree != nil && *degree <= 2 {
			return types.Decision{Allowed: true}
		}
		return types.Decision{
			Allowed: false,
			Reason:  "only connections within 2nd degree (friends of friends) can access this",
		}

	case types.RuleThirdDegree:
		if degree != nil && *degree <= 3 {
			return types.Decision{Allowed: true}
		}
		return types.Decision{
			Allowed: false,
			Reason:  "only connections within 3rd degree can access this",
		}

	case types.RuleCustomCloseness:
		if info.ClosenessScore >= policy.MinimumClosenessScore {
			return types.Decision{Allowed: true}
		}
		return types.Decision{
			Allowed: false,
			Reason: fmt.Sprintf("requires a closeness score of at least %d (yours is %d)",
				policy.MinimumClosenessScore, info.ClosenessScore),
		}

	default:
		log.Printf("engine: unrecognized policy rule %q (owner %d), denying access", policy.Rule, ownerID)
		return types.Decision{
			Allowed: false,
			Reason:  "this content has an unrecognized access rule and cannot be shown",
		}
	}
}

// EvaluateBooking applies the same rule table to a booking request and
// additionally denies a host booking their own resource. The self-booking
// guard is independent of the policy rule.
func EvaluateBooking(viewerID, hostID int64, policy types.AccessPolicy, info *types.ConnectionInfo) types.Decision {
	if viewerID == hostID {
		return types.Decision{
			Allowed: false,
			Reason:  "you cannot book your own resource",
		}
	}
	return Evaluate(viewerID, hostID, policy, info)
}
