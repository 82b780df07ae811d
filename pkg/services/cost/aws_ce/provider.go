package aws_ce

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/smithy-go"
	"github.com/de-tools/tagwarden/pkg/models/domain"
)

const (
	costMetric = "BlendedCost"
	dateLayout = "2006-01-02"
	// Region is the only endpoint serving the Cost Explorer API
	Region = "us-east-1"
)

var unavailableErrorCodes = map[string]struct{}{
	"DataUnavailableException":         {},
	"BillingViewHealthStatusException": {},
}

type CostExplorerAPI interface {
	GetCostAndUsage(ctx context.Context, in *costexplorer.GetCostAndUsageInput, optFns ...func(*costexplorer.Options)) (*costexplorer.GetCostAndUsageOutput, error)
}

type provider struct {
	client CostExplorerAPI
}

func NewProvider(client CostExplorerAPI) *provider {
	return &provider{client: client}
}

// NewProviderFromConfig pins the client to the Cost Explorer region whatever the scanned region is
func NewProviderFromConfig(cfg aws.Config) *provider {
	return NewProvider(costexplorer.NewFromConfig(cfg, func(o *costexplorer.Options) {
		o.Region = Region
	}))
}

// GetCostAndUsage returns blended cost per dimension value over window, summed across
// billing periods in first-seen order. Tag values keep the provider's "Key$" prefix.
func (p *provider) GetCostAndUsage(
	ctx context.Context,
	window domain.DateRange,
	dimension domain.CostDimension,
) ([]domain.CostEntry, error) {
	if window.Empty() {
		return nil, fmt.Errorf("empty cost window %s..%s", window.Start.Format(dateLayout), window.End.Format(dateLayout))
	}

	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(window.Start.Format(dateLayout)),
			End:   aws.String(window.End.Format(dateLayout)),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     []string{costMetric},
		GroupBy:     []types.GroupDefinition{groupFor(dimension)},
	}

	var (
		order  []string
		totals = make(map[string]domain.CostEntry)
	)
	for {
		result, err := p.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, classify(dimension, err)
		}

		for _, resultByTime := range result.ResultsByTime {
			for _, group := range resultByTime.Groups {
				if len(group.Keys) == 0 {
					continue
				}
				metric, ok := group.Metrics[costMetric]
				if !ok {
					continue
				}
				amount, err := strconv.ParseFloat(aws.ToString(metric.Amount), 64)
				if err != nil {
					return nil, fmt.Errorf("failed to parse %s amount %q: %w", costMetric, aws.ToString(metric.Amount), err)
				}

				key := group.Keys[0]
				entry, seen := totals[key]
				if !seen {
					order = append(order, key)
					entry = domain.CostEntry{DimensionValue: key, Currency: aws.ToString(metric.Unit)}
				}
				entry.Cost += amount
				totals[key] = entry
			}
		}

		if aws.ToString(result.NextPageToken) == "" {
			break
		}
		input.NextPageToken = result.NextPageToken
	}

	entries := make([]domain.CostEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, totals[key])
	}
	return entries, nil
}

func groupFor(dimension domain.CostDimension) types.GroupDefinition {
	if dimension.IsTag() {
		return types.GroupDefinition{
			Type: types.GroupDefinitionTypeTag,
			Key:  aws.String(string(dimension)),
		}
	}
	return types.GroupDefinition{
		Type: types.GroupDefinitionTypeDimension,
		Key:  aws.String(string(types.DimensionService)),
	}
}

// classify maps provider errors meaning "no data for this grouping" to domain.ErrDimensionUnavailable.
// A tag grouping rejected as invalid means the cost allocation tag is not active.
func classify(dimension domain.CostDimension, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		_, unavailable := unavailableErrorCodes[apiErr.ErrorCode()]
		if unavailable || (dimension.IsTag() && apiErr.ErrorCode() == "ValidationException") {
			return fmt.Errorf("%w: %s: %s", domain.ErrDimensionUnavailable, dimension, apiErr.ErrorMessage())
		}
	}
	return fmt.Errorf("failed to get cost and usage by %s: %w", dimension, err)
}
