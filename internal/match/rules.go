package match

import (
	"sort"
	"strings"

	"github.com/inodb/rgmatch/internal/genome"
)

// orderKeysByOccurrence returns group keys in order of first appearance in
// the candidate list. Keys present in the grouping but absent from the
// candidates are sorted and appended, so the iteration order is always
// deterministic.
func orderKeysByOccurrence(candidates []Candidate, grouped map[string][]int, keyFn func(*Candidate) string) []string {
	var order []string
	seen := make(map[string]bool, len(grouped))

	for i := range candidates {
		key := keyFn(&candidates[i])
		if _, ok := grouped[key]; ok && !seen[key] {
			seen[key] = true
			order = append(order, key)
		}
	}

	var remaining []string
	for key := range grouped {
		if !seen[key] {
			remaining = append(remaining, key)
		}
	}
	sort.Strings(remaining)
	return append(order, remaining...)
}

// groupBy builds an index-list grouping of candidates by the given key.
func groupBy(candidates []Candidate, keyFn func(*Candidate) string) map[string][]int {
	grouped := make(map[string][]int)
	for i := range candidates {
		grouped[keyFn(&candidates[i])] = append(grouped[keyFn(&candidates[i])], i)
	}
	return grouped
}

// ApplyRules picks the best candidate per group (normally per transcript).
//
// Within each group the filters narrow down the field in order: region
// overlap threshold, area overlap threshold, maximum region overlap, and
// finally the area priority list. A filter that leaves exactly one
// candidate decides immediately; a filter that eliminates everyone is
// undone and the next filter runs on the previous field. The priority scan
// reports every candidate tied on the winning area.
func ApplyRules(candidates []Candidate, grouped map[string][]int, percRegion, percArea float64, rules []genome.Area) []Candidate {
	var report []Candidate

	for _, key := range orderKeysByOccurrence(candidates, grouped, func(c *Candidate) string { return c.Transcript }) {
		positions := grouped[key]
		if len(positions) == 1 {
			report = append(report, candidates[positions[0]])
			continue
		}

		var byRegion []*Candidate
		for _, pos := range positions {
			if candidates[pos].PctRegion >= percRegion {
				byRegion = append(byRegion, &candidates[pos])
			}
		}
		if len(byRegion) == 1 {
			report = append(report, *byRegion[0])
			continue
		}
		if len(byRegion) == 0 {
			for _, pos := range positions {
				byRegion = append(byRegion, &candidates[pos])
			}
		}
		if len(byRegion) <= 1 {
			continue
		}

		var byArea []*Candidate
		for _, c := range byRegion {
			if c.PctArea >= percArea {
				byArea = append(byArea, c)
			}
		}
		if len(byArea) == 1 {
			report = append(report, *byArea[0])
			continue
		}
		if len(byArea) == 0 {
			byArea = byRegion
		}
		if len(byArea) <= 1 {
			continue
		}

		maxPct := 0.0
		for _, c := range byArea {
			if c.PctRegion > maxPct {
				maxPct = c.PctRegion
			}
		}
		var best []*Candidate
		for _, c := range byArea {
			if c.PctRegion == maxPct {
				best = append(best, c)
			}
		}
		if len(best) == 1 {
			report = append(report, *best[0])
			continue
		}

		// Priority order decides, keeping every tie on the winning area.
		for _, rule := range rules {
			found := false
			for _, c := range best {
				if c.Area == rule {
					report = append(report, *c)
					found = true
				}
			}
			if found {
				break
			}
		}
	}

	return report
}

// SelectTranscript picks the best transcript per gene after ApplyRules has
// reduced each transcript to one candidate. Transcripts tied on the winning
// area merge into a single row with comma-joined transcript IDs and labels
// and the maximum percentages.
func SelectTranscript(candidates []Candidate, grouped map[string][]int, rules []genome.Area) []Candidate {
	var report []Candidate

	for _, key := range orderKeysByOccurrence(candidates, grouped, func(c *Candidate) string { return c.Gene }) {
		positions := grouped[key]
		if len(positions) == 1 {
			report = append(report, candidates[positions[0]])
			continue
		}

		byArea := make(map[genome.Area][]int)
		for _, pos := range positions {
			a := candidates[pos].Area
			byArea[a] = append(byArea[a], pos)
		}

		winner := genome.Area(-1)
		for _, rule := range rules {
			if _, ok := byArea[rule]; ok {
				winner = rule
				break
			}
		}
		if winner < 0 {
			// Truncated rule lists may match nothing; fall back to the
			// first candidate's area.
			winner = candidates[positions[0]].Area
		}

		winners := byArea[winner]
		if len(winners) == 1 {
			report = append(report, candidates[winners[0]])
			continue
		}

		var transcripts, labels []string
		maxPctArea := 0.0
		maxPctRegion := 0.0
		for _, pos := range winners {
			c := &candidates[pos]
			transcripts = append(transcripts, c.Transcript)
			labels = append(labels, c.Label)
			if c.PctArea > maxPctArea {
				maxPctArea = c.PctArea
			}
			if c.PctRegion > maxPctRegion {
				maxPctRegion = c.PctRegion
			}
		}

		merged := candidates[winners[0]]
		merged.Transcript = strings.Join(transcripts, ",")
		merged.Label = strings.Join(labels, ",")
		merged.PctArea = maxPctArea
		merged.PctRegion = maxPctRegion
		report = append(report, merged)
	}

	return report
}

// Reduce applies the configured report level to a region's candidates.
// Exon level reports everything; transcript level keeps the best candidate
// per transcript; gene level additionally keeps the best transcript per
// gene.
func Reduce(candidates []Candidate, cfg *Config) []Candidate {
	if len(candidates) == 0 {
		return candidates
	}

	switch cfg.Level {
	case ReportTranscript:
		byTranscript := groupBy(candidates, func(c *Candidate) string { return c.Transcript })
		return ApplyRules(candidates, byTranscript, cfg.PercRegion, cfg.PercArea, cfg.Rules)

	case ReportGene:
		byTranscript := groupBy(candidates, func(c *Candidate) string { return c.Transcript })
		perTranscript := ApplyRules(candidates, byTranscript, cfg.PercRegion, cfg.PercArea, cfg.Rules)
		byGene := groupBy(perTranscript, func(c *Candidate) string { return c.Gene })
		return SelectTranscript(perTranscript, byGene, cfg.Rules)

	default:
		return candidates
	}
}
