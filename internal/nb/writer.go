package nb

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
)

// networkDir is the per-resource-group directory holding resource files.
const networkDir = "network"

// WriteBackup serializes every networking object of one subscription into the
// staging area under <timestamp>/<safe subscription name>/<rg>/network/.
// It returns the subscription's backup root (relative to the staging root)
// and the number of resource files written.
//
// A resource group without networking objects still gets an empty network
// directory. The first enumeration or write error aborts the subscription.
func (s *Service) WriteBackup(ctx context.Context, rd ResourceDirectory, sub Subscription, timestamp string) (string, int, error) {
	root := path.Join(timestamp, SafeName(sub.DisplayName))
	if err := s.staging.MkdirAll(root); err != nil {
		return "", 0, fmt.Errorf("creating backup directory: %w", err)
	}

	groups, err := rd.ListResourceGroups(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("listing resource groups: %w", err)
	}

	total := 0
	for _, rg := range groups {
		rgDir := path.Join(root, rg, networkDir)
		if err := s.staging.MkdirAll(rgDir); err != nil {
			return "", 0, fmt.Errorf("creating directory for resource group %s: %w", rg, err)
		}
		s.logger.Info("resource group", "subscription", sub.DisplayName, "resource_group", rg)

		written := make(map[string]struct{})
		for _, kind := range Kinds {
			resources, err := rd.ListResources(ctx, rg, kind)
			if err != nil {
				return "", 0, fmt.Errorf("listing %s in %s: %w", kind.Label(), rg, err)
			}

			for _, res := range resources {
				name := fmt.Sprintf("%s_%s.json", SafeName(res.Name), kind)
				if _, dup := written[name]; dup {
					s.logger.Warn("sanitized name collision, overwriting", "resource_group", rg, "file", name, "resource", res.Name)
				}

				data, err := json.MarshalIndent(res.Properties, "", "  ")
				if err != nil {
					return "", 0, fmt.Errorf("serializing %s %s: %w", kind, res.Name, err)
				}
				if err := s.staging.WriteFile(path.Join(rgDir, name), data); err != nil {
					return "", 0, fmt.Errorf("writing %s: %w", name, err)
				}

				written[name] = struct{}{}
				s.metrics.ResourceWritten(kind)
				s.logger.Debug("resource written", "kind", kind.Label(), "name", res.Name)
				total++
			}
		}

		if len(written) == 0 {
			s.logger.Info("no network resources found", "resource_group", rg)
		}
	}

	s.logger.Info("subscription backed up", "subscription", sub.DisplayName, "resources", total, "location", path.Join(s.staging.Root(), root))
	return root, total, nil
}
