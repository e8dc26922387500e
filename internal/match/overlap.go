package match

import (
	"math"
	"strconv"

	"github.com/inodb/rgmatch/internal/genome"
)

// overlapEntry records one intron or gene-body fragment before aggregation,
// keeping the raw lengths needed to recompute percentages over the union.
type overlapEntry struct {
	cand    Candidate
	areaLen int64
	overlap int64
}

// entryMap groups fragments per "geneID_transcriptID" key in insertion
// order, so aggregated candidates come out in discovery order.
type entryMap struct {
	order   []string
	entries map[string][]overlapEntry
}

func newEntryMap() *entryMap {
	return &entryMap{entries: make(map[string][]overlapEntry)}
}

func (em *entryMap) add(key string, e overlapEntry) {
	if _, ok := em.entries[key]; !ok {
		em.order = append(em.order, key)
	}
	em.entries[key] = append(em.entries[key], e)
}

// aggregate collapses each group into a single candidate. Groups with one
// fragment pass through unchanged; larger groups get comma-joined labels
// and percentages recomputed over the summed overlap.
func (em *entryMap) aggregate(regionLength int64) []Candidate {
	var results []Candidate

	for _, key := range em.order {
		entries := em.entries[key]
		if len(entries) == 1 {
			results = append(results, entries[0].cand)
			continue
		}

		var totalArea, totalOverlap int64
		label := ""
		for i, e := range entries {
			totalArea += e.areaLen
			totalOverlap += e.overlap
			if i > 0 {
				label += ","
			}
			label += e.cand.Label
		}

		merged := entries[0].cand
		merged.Label = label
		merged.PctRegion = float64(totalOverlap) / float64(regionLength) * 100.0
		merged.PctArea = float64(totalOverlap) / float64(totalArea) * 100.0
		results = append(results, merged)
	}

	return results
}

// intronNumber numbers the intron following exon index i. Positive-strand
// numbering counts from the 5' end, negative-strand from the 3' end.
func intronNumber(i, totalExons int, strand genome.Strand) int {
	if strand == genome.StrandPositive {
		return i + 1
	}
	return totalExons - 1 - i
}

// MatchRegion scans the sorted gene slice from startIndex and returns every
// candidate association for the region: exon and intron overlaps, zone hits
// around transcript boundaries, and the nearest upstream/downstream exon
// when nothing overlaps.
func MatchRegion(region genome.Region, genes []*genome.Gene, cfg *Config, startIndex int) []Candidate {
	start := region.Start
	end := region.End
	pm := region.Midpoint()
	regionLength := region.Length()

	// Nearest-neighbor state when the region overlaps no gene body.
	down := int64(math.MaxInt64)
	var exonDown *Candidate
	upst := int64(math.MaxInt64)
	var exonUp *Candidate

	// Once the region overlaps any gene body, proximity candidates are
	// no longer reported.
	flagGeneBody := false

	var out []Candidate
	introns := newEntryMap()
	geneBodies := newEntryMap()

	for gi := startIndex; gi < len(genes); gi++ {
		gene := genes[gi]

		distToGeneStart := gene.Start - pm
		if distToGeneStart < 0 {
			distToGeneStart = -distToGeneStart
		}

		// Genes are sorted by start, so once a gene begins past the
		// region end and nothing closer can still appear, stop.
		if gene.Start > end {
			if flagGeneBody || down < distToGeneStart || upst < distToGeneStart {
				break
			}
		}

		for _, transcript := range gene.Transcripts {
			exons := transcript.Exons
			if len(exons) == 0 {
				continue
			}

			// Distance from the midpoint to the transcription start
			// site. When exon renumbering put exon 1 first the TSS is
			// at its start; otherwise the transcript is on the
			// negative strand and the TSS sits at the last exon's end.
			var tssDistance int64
			if exons[0].Number == "1" {
				tssDistance = pm - exons[0].Start
			} else {
				tssDistance = exons[len(exons)-1].End - pm
			}

		exonScan:
			for j := range exons {
				exon := &exons[j]
				isFirst := j == 0
				isLast := j == len(exons)-1
				exonLength := exon.Length()

				switch {
				// Exon entirely before the region.
				// <--------->
				//                |--------------|
				case exon.End < start:
					distTmp := pm - exon.End

					if isLast {
						if gene.Strand == genome.StrandPositive && distTmp < down {
							down = distTmp
							exonDown = &Candidate{
								Start: exon.Start, End: exon.End, Strand: gene.Strand,
								Label: exon.Number, Area: genome.AreaDownstream,
								Transcript: transcript.ID, Gene: gene.ID,
								Distance: down, PctRegion: 100.0, PctArea: -1.0,
								TSSDistance: tssDistance,
							}
						} else if gene.Strand == genome.StrandNegative && distTmp < upst {
							upst = distTmp
							exonUp = &Candidate{
								Start: exon.Start, End: exon.End, Strand: gene.Strand,
								Label: exon.Number, Area: genome.AreaUpstream,
								Transcript: transcript.ID, Gene: gene.ID,
								Distance: upst, PctRegion: 100.0, PctArea: -1.0,
								TSSDistance: tssDistance,
							}
						}
						continue
					}

					next := &exons[j+1]
					if next.Start <= start {
						continue
					}

					// The region begins in the intron after this exon.
					flagGeneBody = true
					intronLength := next.Start - exon.End - 1
					num := intronNumber(j, len(exons), gene.Strand)
					key := gene.ID + "_" + transcript.ID

					if next.Start > end {
						// Region entirely inside the intron.
						introns.add(key, overlapEntry{
							cand: Candidate{
								Start: exon.Start, End: exon.End, Strand: gene.Strand,
								Label: strconv.Itoa(num), Area: genome.AreaIntron,
								Transcript: transcript.ID, Gene: gene.ID,
								PctRegion:   100.0,
								PctArea:     float64(regionLength) / float64(intronLength) * 100.0,
								TSSDistance: tssDistance,
							},
							areaLen: intronLength,
							overlap: regionLength,
						})
						break exonScan
					} else {
						overlap := next.Start - start
						introns.add(key, overlapEntry{
							cand: Candidate{
								Start: exon.Start, End: exon.End, Strand: gene.Strand,
								Label: strconv.Itoa(num), Area: genome.AreaIntron,
								Transcript: transcript.ID, Gene: gene.ID,
								PctRegion:   float64(overlap) / float64(regionLength) * 100.0,
								PctArea:     float64(overlap) / float64(intronLength) * 100.0,
								TSSDistance: tssDistance,
							},
							areaLen: intronLength,
							overlap: overlap,
						})
					}

				// Exon overlapping the left edge of the region.
				//     <--------->
				//          |--------------|
				case start <= exon.End && exon.End <= end && exon.Start < start:
					flagGeneBody = true
					bodyOverlap := exon.End - start + 1
					pctRegion := float64(bodyOverlap) / float64(regionLength) * 100.0
					pctArea := float64(bodyOverlap) / float64(exonLength) * 100.0

					out = emitExonOverlap(out, geneBodies, gene, transcript, exon, isFirst, isLast,
						pctRegion, pctArea, exonLength, bodyOverlap, tssDistance)

					if exon.End >= end {
						continue
					}
					if isLast {
						out = emitTailPastLastExon(out, region, cfg, gene, transcript, exon, tssDistance)
						continue
					}
					next := &exons[j+1]
					intronLength := next.Start - exon.End - 1
					num := intronNumber(j, len(exons), gene.Strand)
					key := gene.ID + "_" + transcript.ID

					if next.Start > end {
						overlap := end - exon.End
						introns.add(key, overlapEntry{
							cand: Candidate{
								Start: exon.Start, End: exon.End, Strand: gene.Strand,
								Label: strconv.Itoa(num), Area: genome.AreaIntron,
								Transcript: transcript.ID, Gene: gene.ID,
								PctRegion:   float64(overlap) / float64(regionLength) * 100.0,
								PctArea:     float64(overlap) / float64(intronLength) * 100.0,
								TSSDistance: tssDistance,
							},
							areaLen: intronLength,
							overlap: overlap,
						})
						break exonScan
					}
					overlap := next.Start - exon.End - 1
					introns.add(key, overlapEntry{
						cand: Candidate{
							Start: exon.Start, End: exon.End, Strand: gene.Strand,
							Label: strconv.Itoa(num), Area: genome.AreaIntron,
							Transcript: transcript.ID, Gene: gene.ID,
							PctRegion:   float64(overlap) / float64(regionLength) * 100.0,
							PctArea:     float64(overlap) / float64(intronLength) * 100.0,
							TSSDistance: tssDistance,
						},
						areaLen: intronLength,
						overlap: overlap,
					})

				// Exon completely inside the region.
				//     <--------->
				//   |--------------|
				case start <= exon.Start && end >= exon.End:
					flagGeneBody = true

					if start < exon.Start && isFirst {
						out = emitHeadBeforeFirstExon(out, region, cfg, gene, transcript, exon, tssDistance)
					}

					overlap := exon.End - exon.Start + 1
					pctRegion := float64(overlap) / float64(regionLength) * 100.0

					out = emitExonOverlap(out, geneBodies, gene, transcript, exon, isFirst, isLast,
						pctRegion, 100.0, exonLength, exonLength, tssDistance)

					if end <= exon.End {
						continue
					}
					if isLast {
						out = emitTailPastLastExon(out, region, cfg, gene, transcript, exon, tssDistance)
						continue
					}
					next := &exons[j+1]
					intronLength := next.Start - exon.End - 1
					num := intronNumber(j, len(exons), gene.Strand)
					key := gene.ID + "_" + transcript.ID

					if next.Start > end {
						tail := end - exon.End
						introns.add(key, overlapEntry{
							cand: Candidate{
								Start: exon.Start, End: exon.End, Strand: gene.Strand,
								Label: strconv.Itoa(num), Area: genome.AreaIntron,
								Transcript: transcript.ID, Gene: gene.ID,
								PctRegion:   float64(tail) / float64(regionLength) * 100.0,
								PctArea:     float64(tail) / float64(intronLength) * 100.0,
								TSSDistance: tssDistance,
							},
							areaLen: intronLength,
							overlap: tail,
						})
						break exonScan
					}
					tail := next.Start - exon.End - 1
					introns.add(key, overlapEntry{
						cand: Candidate{
							Start: exon.Start, End: exon.End, Strand: gene.Strand,
							Label: strconv.Itoa(num), Area: genome.AreaIntron,
							Transcript: transcript.ID, Gene: gene.ID,
							PctRegion:   float64(tail) / float64(regionLength) * 100.0,
							PctArea:     float64(tail) / float64(intronLength) * 100.0,
							TSSDistance: tssDistance,
						},
						areaLen: intronLength,
						overlap: tail,
					})

				// Exon overlapping the right edge of the region.
				//             <--------->
				//   |--------------|
				case start <= exon.Start && exon.Start <= end && end < exon.End:
					flagGeneBody = true

					if start < exon.Start && isFirst {
						out = emitHeadBeforeFirstExon(out, region, cfg, gene, transcript, exon, tssDistance)
					}

					overlap := end - exon.Start + 1
					pctRegion := float64(overlap) / float64(regionLength) * 100.0
					pctArea := float64(overlap) / float64(exonLength) * 100.0

					out = emitExonOverlap(out, geneBodies, gene, transcript, exon, isFirst, isLast,
						pctRegion, pctArea, exonLength, overlap, tssDistance)

				// Region completely inside the exon.
				//             <----------------->
				//                 |---------|
				case exon.Start <= start && start <= exon.End && end < exon.End:
					flagGeneBody = true
					pctArea := float64(regionLength) / float64(exonLength) * 100.0

					out = emitExonOverlap(out, geneBodies, gene, transcript, exon, isFirst, isLast,
						100.0, pctArea, exonLength, regionLength, tssDistance)

				// Exon entirely after the region: only the first exon is
				// a proximity anchor.
				//                       <----------------->
				//   |---------|
				case exon.Start > end && isFirst:
					distTmp := exon.Start - pm

					if gene.Strand == genome.StrandNegative && distTmp < down {
						down = distTmp
						exonDown = &Candidate{
							Start: exon.Start, End: exon.End, Strand: gene.Strand,
							Label: exon.Number, Area: genome.AreaDownstream,
							Transcript: transcript.ID, Gene: gene.ID,
							Distance: down, PctRegion: 100.0, PctArea: -1.0,
							TSSDistance: tssDistance,
						}
					} else if gene.Strand == genome.StrandPositive && distTmp < upst {
						upst = distTmp
						exonUp = &Candidate{
							Start: exon.Start, End: exon.End, Strand: gene.Strand,
							Label: exon.Number, Area: genome.AreaUpstream,
							Transcript: transcript.ID, Gene: gene.ID,
							Distance: upst, PctRegion: 100.0, PctArea: -1.0,
							TSSDistance: tssDistance,
						}
					}

					if down <= distTmp && upst <= distTmp {
						break exonScan
					}
				}
			}
		}
	}

	// The nearest downstream/upstream exon is reported only when nothing
	// overlapped, the other direction is not closer, and it lies within
	// the configured maximum distance.
	if exonDown != nil && down <= upst && exonDown.Distance <= cfg.Distance {
		if cfg.TTS > 0 {
			b := Boundary{Start: exonDown.Start, End: exonDown.End, Strand: exonDown.Strand, Distance: exonDown.Distance}
			for _, hit := range CheckTTS(start, end, b, cfg.TTS) {
				c := *exonDown
				c.Area = hit.Area
				c.PctRegion = hit.PctRegion
				c.PctArea = hit.PctArea
				out = append(out, c)
			}
		} else {
			out = append(out, *exonDown)
		}
	}

	if exonUp != nil && upst <= down && exonUp.Distance <= cfg.Distance {
		b := Boundary{Start: exonUp.Start, End: exonUp.End, Strand: exonUp.Strand, Distance: exonUp.Distance}
		for _, hit := range CheckTSS(start, end, b, cfg.TSS, cfg.Promoter) {
			c := *exonUp
			c.Area = hit.Area
			c.PctRegion = hit.PctRegion
			c.PctArea = hit.PctArea
			out = append(out, c)
		}
	}

	if flagGeneBody {
		out = append(out, geneBodies.aggregate(regionLength)...)
		out = append(out, introns.aggregate(regionLength)...)
	}

	return out
}

// emitExonOverlap classifies an exon overlap as 1st_EXON (the transcript's
// leading exon in transcription order) or queues it as a gene-body fragment
// for aggregation.
func emitExonOverlap(out []Candidate, geneBodies *entryMap, gene *genome.Gene, transcript *genome.Transcript,
	exon *genome.Exon, isFirst, isLast bool, pctRegion, pctArea float64, areaLen, overlap, tssDistance int64) []Candidate {

	c := Candidate{
		Start: exon.Start, End: exon.End, Strand: gene.Strand,
		Label: exon.Number, Transcript: transcript.ID, Gene: gene.ID,
		PctRegion: pctRegion, PctArea: pctArea, TSSDistance: tssDistance,
	}

	if (isFirst && gene.Strand == genome.StrandPositive) ||
		(isLast && gene.Strand == genome.StrandNegative) {
		c.Area = genome.AreaFirstExon
		return append(out, c)
	}

	c.Area = genome.AreaGeneBody
	geneBodies.add(gene.ID+"_"+transcript.ID, overlapEntry{cand: c, areaLen: areaLen, overlap: overlap})
	return out
}

// emitTailPastLastExon handles the part of the region hanging past the last
// exon in file order. Depending on strand that tail is downstream (split
// into TTS zones when enabled) or upstream (split into TSS zones).
func emitTailPastLastExon(out []Candidate, region genome.Region, cfg *Config, gene *genome.Gene,
	transcript *genome.Transcript, exon *genome.Exon, tssDistance int64) []Candidate {

	tail := region.End - exon.End
	pctRegion := float64(tail) / float64(region.Length()) * 100.0

	c := Candidate{
		Start: exon.Start, End: exon.End, Strand: gene.Strand,
		Label: exon.Number, Transcript: transcript.ID, Gene: gene.ID,
		PctRegion: pctRegion, PctArea: -1.0, TSSDistance: tssDistance,
	}

	if gene.Strand == genome.StrandPositive {
		c.Area = genome.AreaDownstream
		return appendWithTTSSplit(out, region, cfg, c)
	}
	c.Area = genome.AreaUpstream
	return appendWithTSSSplit(out, region, cfg, c)
}

// emitHeadBeforeFirstExon handles the part of the region hanging before the
// first exon in file order.
func emitHeadBeforeFirstExon(out []Candidate, region genome.Region, cfg *Config, gene *genome.Gene,
	transcript *genome.Transcript, exon *genome.Exon, tssDistance int64) []Candidate {

	head := exon.Start - region.Start
	pctRegion := float64(head) / float64(region.Length()) * 100.0

	c := Candidate{
		Start: exon.Start, End: exon.End, Strand: gene.Strand,
		Label: exon.Number, Transcript: transcript.ID, Gene: gene.ID,
		PctRegion: pctRegion, PctArea: -1.0, TSSDistance: tssDistance,
	}

	if gene.Strand == genome.StrandNegative {
		c.Area = genome.AreaDownstream
		return appendWithTTSSplit(out, region, cfg, c)
	}
	c.Area = genome.AreaUpstream
	return appendWithTSSSplit(out, region, cfg, c)
}

// appendWithTTSSplit splits a downstream candidate into TTS zones when the
// TTS zone width is configured, otherwise appends it as-is.
func appendWithTTSSplit(out []Candidate, region genome.Region, cfg *Config, c Candidate) []Candidate {
	if cfg.TTS <= 0 {
		return append(out, c)
	}
	b := Boundary{Start: c.Start, End: c.End, Strand: c.Strand, Distance: c.Distance}
	for _, hit := range CheckTTS(region.Start, region.End, b, cfg.TTS) {
		split := c
		split.Area = hit.Area
		split.PctRegion = hit.PctRegion
		split.PctArea = hit.PctArea
		out = append(out, split)
	}
	return out
}

// appendWithTSSSplit splits an upstream candidate into TSS/PROMOTER/UPSTREAM
// zones.
func appendWithTSSSplit(out []Candidate, region genome.Region, cfg *Config, c Candidate) []Candidate {
	b := Boundary{Start: c.Start, End: c.End, Strand: c.Strand, Distance: c.Distance}
	for _, hit := range CheckTSS(region.Start, region.End, b, cfg.TSS, cfg.Promoter) {
		split := c
		split.Area = hit.Area
		split.PctRegion = hit.PctRegion
		split.PctArea = hit.PctArea
		out = append(out, split)
	}
	return out
}
