package filter

import "github.com/featherlab/rankline/internal/feed"

// Run applies a single filter to a candidate set. Candidates already marked
// filtered by an earlier stage pass straight into the filtered output
// without re-evaluation, so a drop decision can never be undone downstream.
// Unknown ids are deliberately a 100%-pass no-op: pipeline construction
// stays permissive, and the always-full pass rate makes the misconfiguration
// visible in the result.
func Run(id string, candidates []feed.Candidate, ctx feed.Context) feed.FilterResult {
	cfg, known := Lookup(id)
	name := cfg.Name
	if !known {
		name = id
	}

	result := feed.FilterResult{
		FilterID:   id,
		FilterName: name,
		InputCount: len(candidates),
	}

	fn := stageFuncs[id]
	if !known || fn == nil {
		result.OutputCount = len(candidates)
		result.PassedCandidates = candidates
		result.FilteredCandidates = []feed.Candidate{}
		return result
	}

	live := make([]feed.Candidate, 0, len(candidates))
	alreadyFiltered := make([]feed.Candidate, 0)
	for _, c := range candidates {
		if c.Filtered {
			alreadyFiltered = append(alreadyFiltered, c)
		} else {
			live = append(live, c)
		}
	}

	passed, dropped, anomalies := fn(live, ctx)

	filtered := alreadyFiltered
	for _, v := range dropped {
		c := v.cand
		c.Filtered = true
		c.FilteredBy = id
		c.FilterReason = v.reason
		if c.FilterReason == "" {
			c.FilterReason = cfg.Description
		}
		filtered = append(filtered, c)
	}

	result.OutputCount = len(passed)
	result.Anomalies = anomalies
	result.PassedCandidates = passed
	result.FilteredCandidates = filtered
	return result
}

// RunPhase runs every enabled filter of a phase in registry order, threading
// each stage's passed set into the next and accumulating everything dropped.
// Ids in enabled that match no registered filter are ignored.
func RunPhase(phase Phase, candidates []feed.Candidate, ctx feed.Context, enabled []string) ([]feed.FilterResult, []feed.Candidate, []feed.Candidate) {
	enabledSet := make(map[string]struct{}, len(enabled))
	for _, id := range enabled {
		enabledSet[id] = struct{}{}
	}

	var results []feed.FilterResult
	var droppedAll []feed.Candidate
	current := candidates

	for _, cfg := range ByPhase(phase) {
		if _, ok := enabledSet[cfg.ID]; !ok {
			continue
		}
		result := Run(cfg.ID, current, ctx)
		// The threaded input never contains filtered candidates, so every
		// entry here was dropped by this stage.
		droppedAll = append(droppedAll, result.FilteredCandidates...)
		results = append(results, result)
		current = result.PassedCandidates
	}

	return results, current, droppedAll
}
