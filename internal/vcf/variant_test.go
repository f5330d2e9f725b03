package vcf

import "testing"

func TestVariant_IsSNV(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		alt  string
		want bool
	}{
		{"A to G", "A", "G", true},
		{"no ref column", "", "C", true},
		{"deletion", "AT", "A", false},
		{"insertion", "A", "AT", false},
		{"multi-allelic", "A", "C,T", false},
		{"MNV", "AT", "GC", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Ref: tt.ref, Alt: tt.alt}
			if got := v.IsSNV(); got != tt.want {
				t.Errorf("IsSNV() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVariant_AltBase(t *testing.T) {
	if got := (&Variant{Alt: "T"}).AltBase(); got != 'T' {
		t.Errorf("AltBase() = %q, want 'T'", got)
	}
	if got := (&Variant{Alt: "C,T"}).AltBase(); got != 0 {
		t.Errorf("AltBase() = %q, want 0", got)
	}
}

func TestVariant_NormalizeChrom(t *testing.T) {
	tests := []struct {
		name  string
		chrom string
		want  string
	}{
		{"with chr prefix", "chr12", "12"},
		{"without chr prefix", "12", "12"},
		{"chrX", "chrX", "X"},
		{"chrM", "chrM", "M"},
		{"empty", "", ""},
		{"short chr", "ch", "ch"}, // too short for "chr" prefix
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Variant{Chrom: tt.chrom}
			if got := v.NormalizeChrom(); got != tt.want {
				t.Errorf("NormalizeChrom() = %v, want %v", got, tt.want)
			}
		})
	}
}
