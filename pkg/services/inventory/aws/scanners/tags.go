package scanners

import (
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

// toTags normalizes key/value pointer pairs, dropping nil keys and keeping the first of duplicated keys
func toTags[T any](in []T, kv func(T) (*string, *string)) domain.Tags {
	out := make(domain.Tags, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		k, v := kv(t)
		if k == nil {
			continue
		}
		key := aws.ToString(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, domain.Tag{Key: key, Value: aws.ToString(v)})
	}
	return out
}

// mapToTags orders map based tags by key so records are deterministic
func mapToTags(in map[string]string) domain.Tags {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make(domain.Tags, 0, len(keys))
	for _, k := range keys {
		out = append(out, domain.Tag{Key: k, Value: in[k]})
	}
	return out
}
