package genome

import "fmt"

// Area classifies where a region sits relative to a gene.
type Area int

const (
	AreaTSS Area = iota
	AreaFirstExon
	AreaPromoter
	AreaTTS
	AreaIntron
	AreaGeneBody
	AreaUpstream
	AreaDownstream
)

// AllAreas lists every Area exactly once, in declaration order.
var AllAreas = []Area{
	AreaTSS,
	AreaFirstExon,
	AreaPromoter,
	AreaTTS,
	AreaIntron,
	AreaGeneBody,
	AreaUpstream,
	AreaDownstream,
}

// ParseArea parses the canonical (case-sensitive) tag of an area.
func ParseArea(s string) (Area, error) {
	switch s {
	case "TSS":
		return AreaTSS, nil
	case "1st_EXON":
		return AreaFirstExon, nil
	case "PROMOTER":
		return AreaPromoter, nil
	case "TTS":
		return AreaTTS, nil
	case "INTRON":
		return AreaIntron, nil
	case "GENE_BODY":
		return AreaGeneBody, nil
	case "UPSTREAM":
		return AreaUpstream, nil
	case "DOWNSTREAM":
		return AreaDownstream, nil
	}
	return 0, fmt.Errorf("invalid area tag %q", s)
}

// String returns the canonical tag used in rules strings and output.
func (a Area) String() string {
	switch a {
	case AreaTSS:
		return "TSS"
	case AreaFirstExon:
		return "1st_EXON"
	case AreaPromoter:
		return "PROMOTER"
	case AreaTTS:
		return "TTS"
	case AreaIntron:
		return "INTRON"
	case AreaGeneBody:
		return "GENE_BODY"
	case AreaUpstream:
		return "UPSTREAM"
	case AreaDownstream:
		return "DOWNSTREAM"
	}
	return fmt.Sprintf("Area(%d)", int(a))
}
