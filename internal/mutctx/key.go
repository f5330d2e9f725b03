// Package mutctx provides sequence-context keys, reverse-complement
// canonicalization and the context tables shared by the counter and the
// predictor.
package mutctx

import (
	"errors"
	"fmt"
	"strings"
)

// Arrow separates the flank sequence from the alternate base in a mutation key.
const Arrow = "->"

// Bases is the key alphabet in enumeration order.
const Bases = "ACGT"

var (
	// ErrUnresolvedBase is returned when a key contains a letter outside ACGT.
	ErrUnresolvedBase = errors.New("unresolved base")
	// ErrMalformedKey is returned when a key does not have the expected shape.
	ErrMalformedKey = errors.New("malformed context key")
)

// complements is the fixed A<->T, C<->G bijection, indexed by byte.
var complements = [256]byte{
	'A': 'T',
	'T': 'A',
	'C': 'G',
	'G': 'C',
}

// Complement returns the complementary base of b.
// ok is false for anything outside ACGT.
func Complement(b byte) (c byte, ok bool) {
	c = complements[b]
	return c, c != 0
}

// Resolved reports whether every character of seq is A, C, G or T.
func Resolved(seq string) bool {
	for i := 0; i < len(seq); i++ {
		if complements[seq[i]] == 0 {
			return false
		}
	}
	return true
}

// FormatKey builds a mutation key such as "ACG->T".
func FormatKey(seq string, alt byte) string {
	return seq + Arrow + string(alt)
}

// ParseKey splits a mutation key into its flank sequence and alternate base.
// The flank sequence must have odd length.
func ParseKey(key string) (seq string, alt byte, err error) {
	i := strings.Index(key, Arrow)
	if i < 0 || len(key) != i+len(Arrow)+1 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	seq = key[:i]
	if len(seq)%2 == 0 {
		return "", 0, fmt.Errorf("%w: even-length sequence in %q", ErrMalformedKey, key)
	}
	return seq, key[len(key)-1], nil
}

// SequenceOf returns the flank sequence of key, dropping any "->X" suffix.
func SequenceOf(key string) string {
	if i := strings.Index(key, Arrow); i >= 0 {
		return key[:i]
	}
	return key
}

// FlankOf derives the flank width from a mutation or sequence key.
func FlankOf(key string) (int, error) {
	seq := SequenceOf(key)
	if len(seq)%2 == 0 {
		return 0, fmt.Errorf("%w: even-length sequence in %q", ErrMalformedKey, key)
	}
	return (len(seq) - 1) / 2, nil
}

// reverseComplementSeq reverse-complements a bare sequence.
func reverseComplementSeq(seq string) (string, error) {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c, ok := Complement(seq[i])
		if !ok {
			return "", fmt.Errorf("%w %q in %q", ErrUnresolvedBase, seq[i], seq)
		}
		out[len(seq)-1-i] = c
	}
	return string(out), nil
}

// ReverseComplement returns the reverse complement of a key. Mutation keys
// ("ACG->T") keep their shape with the alternate base complemented; bare
// sequence keys are simply reverse-complemented. It is its own inverse.
func ReverseComplement(key string) (string, error) {
	i := strings.Index(key, Arrow)
	if i < 0 {
		return reverseComplementSeq(key)
	}
	seq, alt, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	rc, err := reverseComplementSeq(seq)
	if err != nil {
		return "", err
	}
	c, ok := Complement(alt)
	if !ok {
		return "", fmt.Errorf("%w %q in %q", ErrUnresolvedBase, alt, key)
	}
	return FormatKey(rc, c), nil
}

// OneMer returns the single-base mutation class of a mutation key, with the
// reference base folded onto A or C.
func OneMer(key string) (string, error) {
	seq, alt, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	ref := seq[len(seq)/2]
	if ref == 'G' || ref == 'T' {
		rc, ok1 := Complement(ref)
		ac, ok2 := Complement(alt)
		if !ok1 || !ok2 {
			return "", fmt.Errorf("%w in %q", ErrUnresolvedBase, key)
		}
		ref, alt = rc, ac
	}
	if ref != 'A' && ref != 'C' {
		return "", fmt.Errorf("%w %q in %q", ErrUnresolvedBase, ref, key)
	}
	if _, ok := Complement(alt); !ok {
		return "", fmt.Errorf("%w %q in %q", ErrUnresolvedBase, alt, key)
	}
	return FormatKey(string(ref), alt), nil
}

// IsSelfMutation reports whether the alternate base of a mutation key equals
// its middle reference base.
func IsSelfMutation(key string) bool {
	seq, alt, err := ParseKey(key)
	if err != nil {
		return false
	}
	return seq[len(seq)/2] == alt
}

// IsCanonical reports whether key is the representative of its
// reverse-complement pair, i.e. the one seen first in lexicographic product
// order. Keys with unresolved bases are never canonical.
func IsCanonical(key string) bool {
	rc, err := ReverseComplement(key)
	if err != nil {
		return false
	}
	return key < rc
}
