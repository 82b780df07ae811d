package domain

import "time"

type ResourceType string

const (
	ResourceTypeEC2    ResourceType = "EC2"
	ResourceTypeRDS    ResourceType = "RDS"
	ResourceTypeS3     ResourceType = "S3"
	ResourceTypeLambda ResourceType = "Lambda"
)

// ResourceTypes lists the governed families in report order
var ResourceTypes = []ResourceType{
	ResourceTypeEC2,
	ResourceTypeRDS,
	ResourceTypeS3,
	ResourceTypeLambda,
}

func (t ResourceType) String() string {
	return string(t)
}

// LifecycleState is the provider state string as reported by the listing call
type LifecycleState string

type Tag struct {
	Key   string
	Value string
}

// Tags keeps the provider order; keys are unique
type Tags []Tag

func (t Tags) Value(key string) (string, bool) {
	for _, tag := range t {
		if tag.Key == key {
			return tag.Value, true
		}
	}
	return "", false
}

func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for _, tag := range t {
		keys = append(keys, tag.Key)
	}
	return keys
}

// ResourceRecord is the normalized view of one provider resource for a single run
type ResourceRecord struct {
	Type      ResourceType
	ID        string
	ARN       string
	Tags      Tags
	CreatedAt *time.Time
	State     LifecycleState
	SizeClass string // t3.micro, db.t3.small, ...
}
