package nb

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind identifies one of the tracked networking resource categories.
// The string value is part of the on-disk file name contract.
type Kind string

const (
	KindVirtualNetwork       Kind = "vnet"
	KindNetworkSecurityGroup Kind = "nsg"
	KindRouteTable           Kind = "route_table"
	KindLoadBalancer         Kind = "load_balancer"
	KindPublicIP             Kind = "public_ip"
)

// Kinds lists every tracked kind in the order a resource group is walked.
var Kinds = []Kind{
	KindVirtualNetwork,
	KindNetworkSecurityGroup,
	KindRouteTable,
	KindLoadBalancer,
	KindPublicIP,
}

// Label returns the human readable plural used in log output.
func (k Kind) Label() string {
	switch k {
	case KindVirtualNetwork:
		return "Virtual Networks"
	case KindNetworkSecurityGroup:
		return "Network Security Groups"
	case KindRouteTable:
		return "Route Tables"
	case KindLoadBalancer:
		return "Load Balancers"
	case KindPublicIP:
		return "Public IPs"
	default:
		return string(k)
	}
}

// Subscription is a cloud subscription as reported by the directory.
type Subscription struct {
	ID          string
	DisplayName string
}

// PropertyBag is the opaque, provider-defined configuration of a resource.
// Values are restricted to what encoding/json produces when decoding into
// an interface: nil, bool, json.Number, string, []any and map[string]any.
type PropertyBag map[string]any

// NewPropertyBag converts any JSON-marshalable value into a PropertyBag.
// Fields that are not JSON-native (times, enums) end up as their string form.
func NewPropertyBag(v any) (PropertyBag, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshaling properties: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var bag PropertyBag
	if err := dec.Decode(&bag); err != nil {
		return nil, fmt.Errorf("decoding properties: %w", err)
	}
	if bag == nil {
		bag = PropertyBag{}
	}
	return bag, nil
}

// Resource is a read-only snapshot of one networking object.
type Resource struct {
	Name       string
	Kind       Kind
	Properties PropertyBag
}
