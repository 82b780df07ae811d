package policy

import (
	"fmt"
	"slices"

	"github.com/de-tools/tagwarden/pkg/models/domain"
)

// DefaultRequiredTags is the mandatory tag set applied when none is configured
var DefaultRequiredTags = []string{"Owner", "Squad", "CostCenter", "Environment"}

// Policy is a fixed, ordered list of tag keys every resource must carry.
// Keys are case-sensitive.
type Policy struct {
	required []string
}

// Verdict is the result of evaluating a resource's tags against a Policy
type Verdict struct {
	Compliant bool
	Missing   []string // in policy order
}

func New(required []string) (Policy, error) {
	if len(required) == 0 {
		return Policy{}, fmt.Errorf("%w: at least one required tag must be provided", domain.ErrInvalidPolicy)
	}

	seen := make(map[string]struct{}, len(required))
	for _, key := range required {
		if key == "" {
			return Policy{}, fmt.Errorf("%w: empty tag key", domain.ErrInvalidPolicy)
		}
		if _, exists := seen[key]; exists {
			return Policy{}, fmt.Errorf("%w: duplicate tag key %q", domain.ErrInvalidPolicy, key)
		}
		seen[key] = struct{}{}
	}

	return Policy{required: slices.Clone(required)}, nil
}

// MustNew is New for static policies; it panics on an invalid key list
func MustNew(required []string) Policy {
	p, err := New(required)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Policy) Required() []string {
	return slices.Clone(p.required)
}

// Evaluate never fails. Nil and empty tag lists are treated the same way.
func (p Policy) Evaluate(tags domain.Tags) Verdict {
	if len(tags) == 0 {
		return Verdict{Compliant: false, Missing: p.Required()}
	}

	present := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		present[tag.Key] = struct{}{}
	}

	missing := make([]string, 0)
	for _, key := range p.required {
		if _, ok := present[key]; !ok {
			missing = append(missing, key)
		}
	}

	return Verdict{Compliant: len(missing) == 0, Missing: missing}
}

// TagValue looks up the value of key; keys are case-sensitive
func TagValue(tags domain.Tags, key string) (string, bool) {
	return tags.Value(key)
}
