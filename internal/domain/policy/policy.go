package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"bidding-service/internal/domain/shared"
)

// Action names a gated operation.
type Action string

const (
	BiddingCreate        Action = "bidding.create"
	BiddingModify        Action = "bidding.modify"
	BiddingStart         Action = "bidding.start"
	BiddingClose         Action = "bidding.close"
	BiddingCancel        Action = "bidding.cancel"
	BiddingInvite        Action = "bidding.invite"
	BiddingEvaluate      Action = "bidding.evaluate"
	BiddingSelectWinner  Action = "bidding.select_winner"
	ParticipationConfirm Action = "participation.confirm"
	ContractCreate       Action = "contract.create"
	ContractChangeStatus Action = "contract.change_status"
	ContractSignBuyer    Action = "contract.sign_buyer"
	OrderCreate          Action = "order.create"
	OrderApprove         Action = "order.approve"
)

// Rule grants an action to actors at or above MinRank while the entity is in
// one of Statuses. An empty Statuses set matches any status.
type Rule struct {
	Action   Action
	Statuses []string
	MinRank  shared.Rank
}

func (r Rule) matches(status string) bool {
	if len(r.Statuses) == 0 {
		return true
	}
	for _, s := range r.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Decision is the outcome of a policy lookup.
type Decision struct {
	Allowed  bool
	Required shared.Rank
	Reason   string
}

// DefaultRules is the built-in rank table.
func DefaultRules() []Rule {
	return []Rule{
		{Action: BiddingCreate, MinRank: shared.RankStaff},
		{Action: BiddingModify, Statuses: []string{"PENDING"}, MinRank: shared.RankStaff},
		{Action: BiddingModify, Statuses: []string{"ONGOING"}, MinRank: shared.RankManager},
		{Action: BiddingStart, Statuses: []string{"PENDING"}, MinRank: shared.RankManager},
		{Action: BiddingClose, Statuses: []string{"ONGOING"}, MinRank: shared.RankManager},
		{Action: BiddingCancel, Statuses: []string{"PENDING", "ONGOING"}, MinRank: shared.RankDirector},
		{Action: BiddingInvite, Statuses: []string{"PENDING", "ONGOING"}, MinRank: shared.RankManager},
		{Action: BiddingEvaluate, Statuses: []string{"CLOSED"}, MinRank: shared.RankSeniorManager},
		{Action: BiddingSelectWinner, Statuses: []string{"CLOSED"}, MinRank: shared.RankSeniorManager},
		{Action: ParticipationConfirm, Statuses: []string{"ONGOING", "CLOSED"}, MinRank: shared.RankManager},
		{Action: ContractCreate, Statuses: []string{"CLOSED"}, MinRank: shared.RankSeniorManager},
		{Action: ContractChangeStatus, MinRank: shared.RankManager},
		{Action: ContractSignBuyer, Statuses: []string{"IN_PROGRESS"}, MinRank: shared.RankManager},
		{Action: OrderCreate, Statuses: []string{"CLOSED"}, MinRank: shared.RankManager},
		{Action: OrderApprove, MinRank: shared.RankDirector},
	}
}

// Policy answers whether an actor may perform an action on an entity in a
// given status. It is immutable after construction.
type Policy struct {
	rules map[Action][]Rule
}

// New builds a policy from rules, replacing the minimum rank of every rule of
// an overridden action.
func New(rules []Rule, overrides map[Action]shared.Rank) *Policy {
	p := &Policy{rules: make(map[Action][]Rule)}
	for _, r := range rules {
		if rank, ok := overrides[r.Action]; ok {
			r.MinRank = rank
		}
		p.rules[r.Action] = append(p.rules[r.Action], r)
	}
	return p
}

// Default returns the policy built from DefaultRules with no overrides.
func Default() *Policy {
	return New(DefaultRules(), nil)
}

// Decide evaluates the rule table for the actor's rank.
func (p *Policy) Decide(actor shared.Actor, action Action, status string) Decision {
	rules, ok := p.rules[action]
	if !ok {
		return Decision{Reason: fmt.Sprintf("unknown action %s", action)}
	}
	if actor.IsSupplier() {
		return Decision{Reason: fmt.Sprintf("suppliers may not perform %s", action)}
	}

	for _, r := range rules {
		if !r.matches(status) {
			continue
		}
		if actor.Rank >= r.MinRank {
			return Decision{Allowed: true, Required: r.MinRank}
		}
		return Decision{
			Required: r.MinRank,
			Reason:   fmt.Sprintf("%s requires rank %s, actor has %s", action, r.MinRank, actor.Rank),
		}
	}

	return Decision{Reason: fmt.Sprintf("%s is not permitted while status is %s", action, status)}
}

// Allowed is the boolean form of Decide.
func (p *Policy) Allowed(actor shared.Actor, action Action, status string) bool {
	return p.Decide(actor, action, status).Allowed
}

// Check returns a permission error when the action is denied.
func (p *Policy) Check(actor shared.Actor, action Action, status string) error {
	d := p.Decide(actor, action, status)
	if !d.Allowed {
		return shared.Permission("%s", d.Reason)
	}
	return nil
}

// Actions lists every action known to the policy, sorted.
func (p *Policy) Actions() []Action {
	actions := make([]Action, 0, len(p.rules))
	for a := range p.rules {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// ParseOverrides reads "action=rank" pairs separated by commas.
func ParseOverrides(raw string) (map[Action]shared.Rank, error) {
	overrides := make(map[Action]shared.Rank)
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return overrides, nil
	}

	known := make(map[Action]bool)
	for _, r := range DefaultRules() {
		known[r.Action] = true
	}

	for _, pair := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(pair), "=")
		if !found {
			return nil, fmt.Errorf("policy override %q is not action=rank", pair)
		}
		action := Action(strings.TrimSpace(key))
		if !known[action] {
			return nil, fmt.Errorf("policy override names unknown action %q", action)
		}
		rank, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || rank < int(shared.RankStaff) || rank > int(shared.RankDirector) {
			return nil, fmt.Errorf("policy override for %s has invalid rank %q", action, value)
		}
		overrides[action] = shared.Rank(rank)
	}
	return overrides, nil
}
