package nb

import (
	"context"
	"fmt"
	"strings"
)

// AllSubscriptions is the selector value that means "every subscription".
const AllSubscriptions = "all"

// ResolveSubscriptions returns the subscriptions a run should process.
// An empty selector or AllSubscriptions returns everything in listing order;
// otherwise the single subscription whose ID or display name matches the
// selector case-insensitively is returned. No match yields a *NotFoundError.
func ResolveSubscriptions(ctx context.Context, lister SubscriptionLister, selector string) ([]Subscription, error) {
	subs, err := lister.ListSubscriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}

	if selector == "" || selector == AllSubscriptions {
		return subs, nil
	}

	for _, sub := range subs {
		if strings.EqualFold(sub.ID, selector) || strings.EqualFold(sub.DisplayName, selector) {
			return []Subscription{sub}, nil
		}
	}

	available := make([]string, len(subs))
	for i, sub := range subs {
		available[i] = sub.DisplayName
	}
	return nil, &NotFoundError{Selector: selector, Available: available}
}
