package nb

import "fmt"

// GetHistory returns the most recent backup runs, ordered newest first.
func (s *Service) GetHistory(limit int) ([]*RunRecord, error) {
	runs, err := s.database.ListRuns(limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}
