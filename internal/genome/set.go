package genome

import "sort"

// Set holds the genes of an annotation source, grouped per chromosome.
// After Finalize it is read-only and safe to share across goroutines.
type Set struct {
	genes      map[string][]*Gene
	maxLengths map[string]int64
}

// NewSet creates an empty gene set.
func NewSet() *Set {
	return &Set{
		genes:      make(map[string][]*Gene),
		maxLengths: make(map[string]int64),
	}
}

// Add appends a gene to its chromosome, preserving insertion order until
// Finalize sorts it.
func (s *Set) Add(chrom string, g *Gene) {
	s.genes[chrom] = append(s.genes[chrom], g)
}

// Genes returns the genes for a chromosome, sorted by (start, id) after
// Finalize. Returns nil for unknown chromosomes.
func (s *Set) Genes(chrom string) []*Gene {
	return s.genes[chrom]
}

// MaxGeneLength returns the largest gene span (end - start) on a chromosome.
// Used to size the lookback window when searching for a region's first
// relevant gene.
func (s *Set) MaxGeneLength(chrom string) int64 {
	return s.maxLengths[chrom]
}

// Chromosomes returns the sorted chromosome names present in the set.
func (s *Set) Chromosomes() []string {
	chroms := make([]string, 0, len(s.genes))
	for chrom := range s.genes {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// GeneCount returns the total number of genes across all chromosomes.
func (s *Set) GeneCount() int {
	n := 0
	for _, genes := range s.genes {
		n += len(genes)
	}
	return n
}

// Finalize sorts each chromosome's genes by (start, id) and records the
// per-chromosome maximum gene length. Matching requires this ordering.
func (s *Set) Finalize() {
	for chrom, genes := range s.genes {
		sort.Slice(genes, func(i, j int) bool {
			if genes[i].Start != genes[j].Start {
				return genes[i].Start < genes[j].Start
			}
			return genes[i].ID < genes[j].ID
		})

		var maxLen int64
		for _, g := range genes {
			if l := g.End - g.Start; l > maxLen {
				maxLen = l
			}
		}
		s.maxLengths[chrom] = maxLen
	}
}

// SearchStartIndex returns the index of the first gene on the (sorted)
// slice with start >= searchStart, via binary search.
func SearchStartIndex(genes []*Gene, searchStart int64) int {
	return sort.Search(len(genes), func(i int) bool {
		return genes[i].Start >= searchStart
	})
}
