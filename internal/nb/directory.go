package nb

import "context"

// SubscriptionLister lists every subscription the credential can see.
type SubscriptionLister interface {
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
}

// Directory is the authenticated entry point to the resource directory.
type Directory interface {
	SubscriptionLister

	// ForSubscription returns a ResourceDirectory scoped to one subscription.
	ForSubscription(subscriptionID string) (ResourceDirectory, error)
}

// ResourceDirectory enumerates resource groups and networking objects
// within a single subscription. Ordering is whatever the provider returns.
type ResourceDirectory interface {
	// ListResourceGroups returns the names of all resource groups.
	ListResourceGroups(ctx context.Context) ([]string, error)

	// ListResources returns every resource of the given kind in a resource group.
	ListResources(ctx context.Context, resourceGroup string, kind Kind) ([]Resource, error)
}

// Connector builds the authenticated capabilities a run needs.
// It is called once per run, during preflight, so credentials are
// constructed at run start and threaded through the pipeline.
type Connector interface {
	// Connect returns ErrConfiguration-class errors when required
	// settings are missing.
	Connect(ctx context.Context) (Directory, Vault, error)
}
