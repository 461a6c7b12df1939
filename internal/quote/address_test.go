package quote

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAddressPacksSegments(t *testing.T) {
	got := SplitAddress("123 Jalan Besar, Taman ABC, Kuala Lumpur, 50000")

	assert.Equal(t, "123 Jalan Besar, Taman ABC", got[0])
	assert.Equal(t, "Kuala Lumpur, 50000", got[1])
	assert.Equal(t, "", got[2])
	assert.Equal(t, "", got[3])
}

func TestSplitAddressAlwaysFourLinesWithinLimit(t *testing.T) {
	cases := []string{
		"",
		"Suite 1",
		"Lot 5, Jalan Industri 3, Kawasan Perindustrian, Shah Alam, Selangor, 40000, Malaysia",
		strings.Repeat("x", 200),
	}
	for _, addr := range cases {
		got := SplitAddress(addr)
		for i, line := range got {
			assert.LessOrEqual(t, len(line), maxLineLen, "address %q line %d", addr, i)
		}
	}
}

func TestSplitAddressTruncatesOversizedSegment(t *testing.T) {
	long := strings.Repeat("a", 75)
	got := SplitAddress(long + ", Penang")

	assert.Equal(t, long[:maxLineLen], got[0])
	assert.Equal(t, "Penang", got[1])
}

func TestSplitAddressOverflowJoinsIntoLastLine(t *testing.T) {
	// Segments sized so each output line holds exactly one of them.
	seg := strings.Repeat("b", 40)
	addr := strings.Join([]string{seg, seg, seg, "tail one", "tail two"}, ", ")

	got := SplitAddress(addr)
	assert.Equal(t, seg, got[0])
	assert.Equal(t, seg, got[1])
	assert.Equal(t, seg, got[2])
	assert.Equal(t, "tail one, tail two", got[3])
}
