package vcf

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
12	25245351	.	C	A	.	PASS	.
1	100	rs1	a	g	50	PASS	DP=10

chrX	2000	.	T	C	.	PASS	.
`

func readAll(t *testing.T, p *Parser) []*Variant {
	t.Helper()
	var out []*Variant
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestParser_Variants(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(testVCF))
	require.NoError(t, err)
	defer p.Close()

	variants := readAll(t, p)
	require.Len(t, variants, 3)

	v := variants[0]
	assert.Equal(t, "12", v.Chrom)
	assert.Equal(t, int64(25245351), v.Pos)
	assert.Equal(t, "C", v.Ref)
	assert.Equal(t, "A", v.Alt)
	assert.Equal(t, "12\t25245351\t.\tC\tA\t.\tPASS\t.", v.Line)

	// alleles are uppercased
	assert.Equal(t, "G", variants[1].Alt)
	assert.Equal(t, "A", variants[1].Ref)

	assert.Equal(t, "chrX", variants[2].Chrom)
	assert.Equal(t, 6, p.LineNumber())
}

func TestParser_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testVCF))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "variants.vcf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	p, err := NewParser(path)
	require.NoError(t, err)
	defer p.Close()

	assert.Len(t, readAll(t, p), 3)
}

func TestParser_NoTrailingNewline(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader("1\t10\t.\tA\tC"))
	require.NoError(t, err)

	variants := readAll(t, p)
	require.Len(t, variants, 1)
	assert.Equal(t, int64(10), variants[0].Pos)
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too few columns", "1\t100\t.\tA\n"},
		{"invalid position", "1\tabc\t.\tA\tC\n"},
		{"zero position", "1\t0\t.\tA\tC\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewParserFromReader(strings.NewReader(tt.input))
			require.NoError(t, err)

			_, err = p.Next()
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, 1, pe.Line)
		})
	}
}

func TestParser_MissingFile(t *testing.T) {
	_, err := NewParser(filepath.Join(t.TempDir(), "missing.vcf"))
	assert.Error(t, err)
}

func TestParseError(t *testing.T) {
	err := &ParseError{
		Line:    42,
		Message: "expected at least 5 columns, found 4",
	}

	expected := "vcf parse error at line 42: expected at least 5 columns, found 4"
	assert.Equal(t, expected, err.Error())
}
