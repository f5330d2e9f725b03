package vcf

// Variant represents a single point-mutation record.
type Variant struct {
	Chrom string // Chromosome name (e.g., "12", "chr12")
	Pos   int64  // 1-based genomic position
	Ref   string // Reference allele as written in the input (may be empty)
	Alt   string // Alternate allele
	Line  string // Raw input line, kept for anomaly reports
}

// IsSNV returns true if the alternate allele is a single base.
func (v *Variant) IsSNV() bool {
	return len(v.Alt) == 1 && (v.Ref == "" || len(v.Ref) == 1)
}

// AltBase returns the single alternate base, or 0 if Alt is not one character.
func (v *Variant) AltBase() byte {
	if len(v.Alt) != 1 {
		return 0
	}
	return v.Alt[0]
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	if len(v.Chrom) > 3 && v.Chrom[:3] == "chr" {
		return v.Chrom[3:]
	}
	return v.Chrom
}
