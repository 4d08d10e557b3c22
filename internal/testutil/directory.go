package testutil

import (
	"context"
	"fmt"
	"sync"

	"netbackup/internal/nb"
)

// FakeDirectory is an in-memory nb.Directory. Subscriptions, resource groups
// and resources are returned in insertion order. Errors can be injected at
// each level.
type FakeDirectory struct {
	mu sync.Mutex

	subs   []nb.Subscription
	groups map[string][]string
	res    map[resourceKey][]nb.Resource

	ListErr     error
	GroupErrs   map[string]error
	ResourceErr map[string]error // keyed by "<subscription id>/<resource group>"
}

type resourceKey struct {
	sub  string
	rg   string
	kind nb.Kind
}

// NewFakeDirectory creates an empty FakeDirectory.
func NewFakeDirectory() *FakeDirectory {
	return &FakeDirectory{
		groups:      make(map[string][]string),
		res:         make(map[resourceKey][]nb.Resource),
		GroupErrs:   make(map[string]error),
		ResourceErr: make(map[string]error),
	}
}

// AddSubscription registers a subscription.
func (d *FakeDirectory) AddSubscription(id, displayName string) *FakeDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subs = append(d.subs, nb.Subscription{ID: id, DisplayName: displayName})
	return d
}

// AddResourceGroup registers an (initially empty) resource group.
func (d *FakeDirectory) AddResourceGroup(subID, rg string) *FakeDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.groups[subID] = append(d.groups[subID], rg)
	return d
}

// AddResource registers a resource in an existing resource group.
func (d *FakeDirectory) AddResource(subID, rg string, kind nb.Kind, name string, props nb.PropertyBag) *FakeDirectory {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := resourceKey{sub: subID, rg: rg, kind: kind}
	d.res[k] = append(d.res[k], nb.Resource{Name: name, Kind: kind, Properties: props})
	return d
}

func (d *FakeDirectory) ListSubscriptions(ctx context.Context) ([]nb.Subscription, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ListErr != nil {
		return nil, d.ListErr
	}
	out := make([]nb.Subscription, len(d.subs))
	copy(out, d.subs)
	return out, nil
}

func (d *FakeDirectory) ForSubscription(subID string) (nb.ResourceDirectory, error) {
	return &fakeResourceDirectory{dir: d, subID: subID}, nil
}

type fakeResourceDirectory struct {
	dir   *FakeDirectory
	subID string
}

func (r *fakeResourceDirectory) ListResourceGroups(ctx context.Context) ([]string, error) {
	r.dir.mu.Lock()
	defer r.dir.mu.Unlock()
	if err := r.dir.GroupErrs[r.subID]; err != nil {
		return nil, err
	}
	out := make([]string, len(r.dir.groups[r.subID]))
	copy(out, r.dir.groups[r.subID])
	return out, nil
}

func (r *fakeResourceDirectory) ListResources(ctx context.Context, rg string, kind nb.Kind) ([]nb.Resource, error) {
	r.dir.mu.Lock()
	defer r.dir.mu.Unlock()
	if err := r.dir.ResourceErr[fmt.Sprintf("%s/%s", r.subID, rg)]; err != nil {
		return nil, err
	}
	res := r.dir.res[resourceKey{sub: r.subID, rg: rg, kind: kind}]
	out := make([]nb.Resource, len(res))
	copy(out, res)
	return out, nil
}

// StaticConnector hands out a fixed directory and vault, or a fixed error.
type StaticConnector struct {
	Directory nb.Directory
	Vault     nb.Vault
	Err       error
}

func (c *StaticConnector) Connect(ctx context.Context) (nb.Directory, nb.Vault, error) {
	if c.Err != nil {
		return nil, nil, c.Err
	}
	return c.Directory, c.Vault, nil
}

var (
	_ nb.Directory = (*FakeDirectory)(nil)
	_ nb.Connector = (*StaticConnector)(nil)
)
