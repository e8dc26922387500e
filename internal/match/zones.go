package match

import "github.com/inodb/rgmatch/internal/genome"

// ZoneHit is one zone a region overlaps near a transcript boundary.
type ZoneHit struct {
	Area      genome.Area
	PctRegion float64
	PctArea   float64
}

// Boundary carries the exon whose start or end anchors a zone check,
// together with the already-computed distance from the region midpoint.
type Boundary struct {
	Start    int64
	End      int64
	Strand   genome.Strand
	Distance int64
}

// CheckTSS splits a region near a transcription start site into TSS,
// PROMOTER and UPSTREAM zone hits.
//
// The zones extend upstream of the first exon:
//
//	UPSTREAM       PROMOTER        TSS          1st exon
//	..........|................|..............|----------->
//
// For negative-strand genes the region coordinates are mirrored around the
// exon end, which puts the TSS at the exon end and makes the rest of the
// computation strand-invariant.
func CheckTSS(regionStart, regionEnd int64, b Boundary, tss, promoter float64) []ZoneHit {
	anchor := b.Start
	start := regionStart
	end := regionEnd

	if b.Strand == genome.StrandNegative {
		aux := end
		end = 2*b.End - start
		start = 2*b.End - aux
		anchor = b.End
	}

	length := end - start + 1
	if length <= 0 {
		return nil
	}
	lengthF := float64(length)

	var hits []ZoneHit

	switch {
	case float64(b.Distance) <= tss:
		if float64(anchor-start) <= tss {
			// Entirely within the TSS zone.
			overlapEnd := min(anchor-1, end)
			overlap := float64(overlapEnd - start + 1)
			hits = append(hits, ZoneHit{
				Area:      genome.AreaTSS,
				PctRegion: overlap / lengthF * 100.0,
				PctArea:   overlap / tss * 100.0,
			})
			break
		}

		// Spans the TSS zone and extends into the promoter.
		tssStart := anchor - int64(tss)
		overlapEnd := min(anchor-1, end)
		tssOverlap := float64(overlapEnd - tssStart + 1)
		hits = append(hits, ZoneHit{
			Area:      genome.AreaTSS,
			PctRegion: tssOverlap / lengthF * 100.0,
			PctArea:   tssOverlap / tss * 100.0,
		})

		if float64(anchor-start) <= tss+promoter {
			promoterOverlap := float64(tssStart - start)
			hits = append(hits, ZoneHit{
				Area:      genome.AreaPromoter,
				PctRegion: promoterOverlap / lengthF * 100.0,
				PctArea:   promoterOverlap / promoter * 100.0,
			})
		} else {
			// Reaches past the promoter into upstream territory.
			hits = append(hits, ZoneHit{
				Area:      genome.AreaPromoter,
				PctRegion: promoter / lengthF * 100.0,
				PctArea:   100.0,
			})
			upstreamOverlap := float64(tssStart - int64(promoter) - start)
			hits = append(hits, ZoneHit{
				Area:      genome.AreaUpstream,
				PctRegion: upstreamOverlap / lengthF * 100.0,
				PctArea:   -1.0,
			})
		}

	case float64(b.Distance) <= tss+promoter:
		if float64(anchor-start) <= tss+promoter {
			// Entirely within the promoter zone.
			hits = append(hits, ZoneHit{
				Area:      genome.AreaPromoter,
				PctRegion: 100.0,
				PctArea:   lengthF / promoter * 100.0,
			})
			break
		}

		// Spans the promoter and extends upstream.
		promoterStart := anchor - int64(tss) - int64(promoter)
		promoterOverlap := float64(end - promoterStart + 1)
		hits = append(hits, ZoneHit{
			Area:      genome.AreaPromoter,
			PctRegion: promoterOverlap / lengthF * 100.0,
			PctArea:   promoterOverlap / promoter * 100.0,
		})
		hits = append(hits, ZoneHit{
			Area:      genome.AreaUpstream,
			PctRegion: float64(promoterStart-start) / lengthF * 100.0,
			PctArea:   -1.0,
		})

	default:
		hits = append(hits, ZoneHit{
			Area:      genome.AreaUpstream,
			PctRegion: 100.0,
			PctArea:   -1.0,
		})
	}

	return hits
}

// CheckTTS splits a region near a transcription termination site into TTS
// and DOWNSTREAM zone hits. The zones extend downstream of the last exon,
// so here it is the positive strand that gets mirrored (around the exon
// end); for negative-strand genes downstream already lies below the exon
// start.
func CheckTTS(regionStart, regionEnd int64, b Boundary, tts float64) []ZoneHit {
	anchor := b.Start
	start := regionStart
	end := regionEnd

	if b.Strand == genome.StrandPositive {
		aux := end
		end = 2*b.End - start
		start = 2*b.End - aux
		anchor = b.End
	}

	length := end - start + 1
	if length <= 0 {
		return nil
	}
	lengthF := float64(length)

	var hits []ZoneHit

	if float64(b.Distance) <= tts {
		if float64(anchor-start) <= tts {
			// Entirely within the TTS zone.
			overlapEnd := min(anchor-1, end)
			overlap := float64(overlapEnd - start + 1)
			hits = append(hits, ZoneHit{
				Area:      genome.AreaTTS,
				PctRegion: overlap / lengthF * 100.0,
				PctArea:   overlap / tts * 100.0,
			})
		} else {
			// Spans the TTS zone and extends further downstream.
			ttsStart := anchor - int64(tts)
			overlapEnd := min(anchor-1, end)
			ttsOverlap := float64(overlapEnd - ttsStart + 1)
			hits = append(hits, ZoneHit{
				Area:      genome.AreaTTS,
				PctRegion: ttsOverlap / lengthF * 100.0,
				PctArea:   ttsOverlap / tts * 100.0,
			})
			hits = append(hits, ZoneHit{
				Area:      genome.AreaDownstream,
				PctRegion: float64(ttsStart-start) / lengthF * 100.0,
				PctArea:   -1.0,
			})
		}
	} else {
		hits = append(hits, ZoneHit{
			Area:      genome.AreaDownstream,
			PctRegion: 100.0,
			PctArea:   -1.0,
		})
	}

	return hits
}
