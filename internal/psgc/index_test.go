package psgc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(reg, prov, city, brgy string) Record {
	return Record{
		Region:   Unit{Code: reg, Name: "R " + reg},
		Province: Unit{Code: prov, Name: "P " + prov},
		City:     Unit{Code: city, Name: "C " + city},
		Barangay: Unit{Code: brgy, Name: "B " + brgy},
	}
}

func TestBuildSingleRecord(t *testing.T) {
	idx := Build([]Record{{
		Region:   Unit{Code: "13", Name: "NCR"},
		Province: Unit{Code: "NCR-P", Name: "Metro Manila"},
		City:     Unit{Code: "MNL", Name: "Manila"},
		Barangay: Unit{Code: "B1", Name: "Barangay 1"},
	}})

	assert.Equal(t, []string{"13"}, idx.Regions.Children("").Codes())
	assert.Equal(t, "NCR", idx.Regions.Children("").Name("13"))
	assert.Equal(t, []string{"NCR-P"}, idx.Provinces.Children("13").Codes())
	assert.Equal(t, []string{"MNL"}, idx.Cities.Children("NCR-P").Codes())
	assert.Equal(t, []string{"B1"}, idx.Barangays.Children("MNL").Codes())
	assert.Equal(t, [4]int{1, 1, 1, 1}, idx.Stats.Units)
}

func TestBuildFirstSeenNameWins(t *testing.T) {
	idx := Build([]Record{
		{Region: Unit{Code: "01", Name: "Ilocos"}},
		{Region: Unit{Code: "01", Name: "Region I"}},
		{Region: Unit{Code: "02", Name: "Cagayan Valley"}},
	})
	regions := idx.Regions.Children("")
	assert.Equal(t, []string{"01", "02"}, regions.Codes())
	assert.Equal(t, "Ilocos", regions.Name("01"))
	assert.Equal(t, 1, idx.Stats.Conflicts[TierRegion])
}

func TestBuildPreservesInsertionOrder(t *testing.T) {
	idx := Build([]Record{
		rec("01", "0128", "012801", "012801001"),
		rec("01", "0129", "012901", "012901001"),
		rec("01", "0128", "012802", "012802001"),
		rec("01", "0128", "012801", "012801002"),
	})
	assert.Equal(t, []string{"0128", "0129"}, idx.Provinces.Children("01").Codes())
	assert.Equal(t, []string{"012801", "012802"}, idx.Cities.Children("0128").Codes())
	assert.Equal(t, []string{"012801001", "012801002"}, idx.Barangays.Children("012801").Codes())
}

func TestBuildStopsAtFirstMissingCode(t *testing.T) {
	idx := Build([]Record{
		{Region: Unit{Code: "03"}, Province: Unit{Code: ""}, City: Unit{Code: "X"}},
		{Province: Unit{Code: "P"}},
	})
	assert.Equal(t, []string{"03"}, idx.Regions.Children("").Codes())
	assert.Equal(t, "03", idx.Regions.Children("").Name("03"), "label falls back to code")
	assert.Zero(t, idx.Cities.Units())
	assert.Zero(t, idx.Provinces.Units())
	assert.Equal(t, 1, idx.Stats.Skipped)
}

func TestChildrenUnknownParentIsEmpty(t *testing.T) {
	idx := Build(nil)
	o := idx.Children(TierProvince, "nope")
	require.NotNil(t, o)
	assert.Zero(t, o.Len())
	assert.False(t, o.Has("x"))
}

func TestNoOrphans(t *testing.T) {
	idx := Build([]Record{
		rec("01", "0128", "012801", "012801001"),
		rec("02", "0215", "021501", ""),
		rec("03", "", "", ""),
	})
	assert.Empty(t, idx.Orphans())

	for _, tier := range Tiers[1:] {
		up := idx.Tier(tier - 1)
		for _, p := range idx.Tier(tier).Parents() {
			found := false
			for _, gp := range up.Parents() {
				if up.Children(gp).Has(p) {
					found = true
				}
			}
			assert.True(t, found, "parent %s of tier %s must exist above", p, tier)
		}
	}
}

func TestHolderSwap(t *testing.T) {
	h := NewHolder(nil)
	assert.Nil(t, h.Load())
	idx := Build([]Record{rec("01", "", "", "")})
	h.Store(idx)
	assert.Same(t, idx, h.Load())
}

func TestConflictsIgnoreSharedAncestors(t *testing.T) {
	idx := Build([]Record{
		rec("01", "0128", "012801", "B1"),
		rec("01", "0128", "012801", "B2"),
		rec("01", "0128", "012801", "B3"),
	})
	assert.Equal(t, [4]int{0, 0, 0, 0}, idx.Stats.Conflicts)

	idx = Build([]Record{
		rec("01", "0128", "012801", "B1"),
		rec("01", "0128", "012801", "B1"),
		{Region: Unit{Code: "01", Name: "Region I"}, Province: Unit{Code: "0128", Name: "P 0128"}},
	})
	assert.Equal(t, [4]int{1, 1, 0, 1}, idx.Stats.Conflicts)
}
