package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"golang.org/x/time/rate"

	"netbackup/internal/nb"
)

// Directory lists the subscriptions visible to a credential and opens
// per-subscription resource directories.
type Directory struct {
	cred    azcore.TokenCredential
	opts    *arm.ClientOptions
	subs    *armsubscriptions.Client
	limiter *rate.Limiter
}

// NewDirectory creates a Directory. A positive requestsPerSecond throttles
// every page fetch made through it and its resource directories.
func NewDirectory(cred azcore.TokenCredential, opts *arm.ClientOptions, requestsPerSecond float64) (*Directory, error) {
	subs, err := armsubscriptions.NewClient(cred, opts)
	if err != nil {
		return nil, fmt.Errorf("creating subscriptions client: %w", err)
	}

	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		burst := int(requestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}

	return &Directory{cred: cred, opts: opts, subs: subs, limiter: limiter}, nil
}

// ListSubscriptions returns every subscription in the order ARM reports them.
func (d *Directory) ListSubscriptions(ctx context.Context) ([]nb.Subscription, error) {
	items, err := collect(ctx, d.limiter, d.subs.NewListPager(nil),
		func(p armsubscriptions.ClientListResponse) []*armsubscriptions.Subscription { return p.Value })
	if err != nil {
		return nil, ClassifyError(err)
	}

	subs := make([]nb.Subscription, 0, len(items))
	for _, s := range items {
		subs = append(subs, nb.Subscription{
			ID:          toValue(s.SubscriptionID),
			DisplayName: toValue(s.DisplayName),
		})
	}
	return subs, nil
}

// ForSubscription returns a ResourceDirectory scoped to subscriptionID.
func (d *Directory) ForSubscription(subscriptionID string) (nb.ResourceDirectory, error) {
	rd := &ResourceDirectory{limiter: d.limiter}

	var err error
	if rd.groups, err = armresources.NewResourceGroupsClient(subscriptionID, d.cred, d.opts); err != nil {
		return nil, fmt.Errorf("creating resource groups client: %w", err)
	}
	if rd.vnets, err = armnetwork.NewVirtualNetworksClient(subscriptionID, d.cred, d.opts); err != nil {
		return nil, fmt.Errorf("creating virtual networks client: %w", err)
	}
	if rd.nsgs, err = armnetwork.NewSecurityGroupsClient(subscriptionID, d.cred, d.opts); err != nil {
		return nil, fmt.Errorf("creating security groups client: %w", err)
	}
	if rd.routes, err = armnetwork.NewRouteTablesClient(subscriptionID, d.cred, d.opts); err != nil {
		return nil, fmt.Errorf("creating route tables client: %w", err)
	}
	if rd.lbs, err = armnetwork.NewLoadBalancersClient(subscriptionID, d.cred, d.opts); err != nil {
		return nil, fmt.Errorf("creating load balancers client: %w", err)
	}
	if rd.pips, err = armnetwork.NewPublicIPAddressesClient(subscriptionID, d.cred, d.opts); err != nil {
		return nil, fmt.Errorf("creating public IP addresses client: %w", err)
	}
	return rd, nil
}

// ResourceDirectory enumerates one subscription.
type ResourceDirectory struct {
	limiter *rate.Limiter
	groups  *armresources.ResourceGroupsClient
	vnets   *armnetwork.VirtualNetworksClient
	nsgs    *armnetwork.SecurityGroupsClient
	routes  *armnetwork.RouteTablesClient
	lbs     *armnetwork.LoadBalancersClient
	pips    *armnetwork.PublicIPAddressesClient
}

// ListResourceGroups returns the names of every resource group.
func (r *ResourceDirectory) ListResourceGroups(ctx context.Context) ([]string, error) {
	items, err := collect(ctx, r.limiter, r.groups.NewListPager(nil),
		func(p armresources.ResourceGroupsClientListResponse) []*armresources.ResourceGroup { return p.Value })
	if err != nil {
		return nil, ClassifyError(err)
	}

	names := make([]string, 0, len(items))
	for _, g := range items {
		names = append(names, toValue(g.Name))
	}
	return names, nil
}

// ListResources returns every object of kind in resourceGroup.
func (r *ResourceDirectory) ListResources(ctx context.Context, resourceGroup string, kind nb.Kind) ([]nb.Resource, error) {
	var (
		res []nb.Resource
		err error
	)
	switch kind {
	case nb.KindVirtualNetwork:
		res, err = list(ctx, r.limiter, kind, r.vnets.NewListPager(resourceGroup, nil),
			func(p armnetwork.VirtualNetworksClientListResponse) []*armnetwork.VirtualNetwork { return p.Value },
			func(v *armnetwork.VirtualNetwork) *string { return v.Name })
	case nb.KindNetworkSecurityGroup:
		res, err = list(ctx, r.limiter, kind, r.nsgs.NewListPager(resourceGroup, nil),
			func(p armnetwork.SecurityGroupsClientListResponse) []*armnetwork.SecurityGroup { return p.Value },
			func(v *armnetwork.SecurityGroup) *string { return v.Name })
	case nb.KindRouteTable:
		res, err = list(ctx, r.limiter, kind, r.routes.NewListPager(resourceGroup, nil),
			func(p armnetwork.RouteTablesClientListResponse) []*armnetwork.RouteTable { return p.Value },
			func(v *armnetwork.RouteTable) *string { return v.Name })
	case nb.KindLoadBalancer:
		res, err = list(ctx, r.limiter, kind, r.lbs.NewListPager(resourceGroup, nil),
			func(p armnetwork.LoadBalancersClientListResponse) []*armnetwork.LoadBalancer { return p.Value },
			func(v *armnetwork.LoadBalancer) *string { return v.Name })
	case nb.KindPublicIP:
		res, err = list(ctx, r.limiter, kind, r.pips.NewListPager(resourceGroup, nil),
			func(p armnetwork.PublicIPAddressesClientListResponse) []*armnetwork.PublicIPAddress { return p.Value },
			func(v *armnetwork.PublicIPAddress) *string { return v.Name })
	default:
		return nil, fmt.Errorf("unsupported resource kind %q", kind)
	}
	if err != nil {
		return nil, ClassifyError(err)
	}
	return res, nil
}

// list drains a pager and converts each SDK model into an nb.Resource.
func list[R, T any](ctx context.Context, limiter *rate.Limiter, kind nb.Kind, pager *runtime.Pager[R], values func(R) []*T, name func(*T) *string) ([]nb.Resource, error) {
	items, err := collect(ctx, limiter, pager, values)
	if err != nil {
		return nil, err
	}

	out := make([]nb.Resource, 0, len(items))
	for _, item := range items {
		props, err := nb.NewPropertyBag(item)
		if err != nil {
			return nil, fmt.Errorf("converting %s: %w", kind, err)
		}
		out = append(out, nb.Resource{Name: toValue(name(item)), Kind: kind, Properties: props})
	}
	return out, nil
}

// collect drains a pager, skipping nil entries.
func collect[R, T any](ctx context.Context, limiter *rate.Limiter, pager *runtime.Pager[R], values func(R) []*T) ([]*T, error) {
	var result []*T
	for pager.More() {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		next, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, v := range values(next) {
			if v != nil {
				result = append(result, v)
			}
		}
	}
	return result, nil
}

func toValue[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

var (
	_ nb.Directory         = (*Directory)(nil)
	_ nb.ResourceDirectory = (*ResourceDirectory)(nil)
)
