package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ph-address/internal/cascade"
)

func TestSelectFillAndSetValue(t *testing.T) {
	s := NewSelect("province")
	s.Fill("Select Province", []cascade.Option{{Value: "0128", Label: "Ilocos Norte"}})
	assert.True(t, s.SetValue("0128"))
	assert.Equal(t, "0128", s.Value())

	assert.False(t, s.SetValue("9999"))
	assert.Equal(t, "", s.Value())

	s.SetValue("0128")
	s.Fill("Select Province", nil)
	assert.Equal(t, "", s.Value(), "fill resets the value")
	assert.Equal(t, []cascade.Option{{Value: "", Label: "Select Province"}}, s.View().Options)
}

func TestSelectDispatchOrder(t *testing.T) {
	s := NewSelect("region")
	var got []int
	s.OnChange(func() { got = append(got, 1) })
	s.OnChange(func() { got = append(got, 2) })
	s.Dispatch()
	assert.Equal(t, []int{1, 2}, got)
}

func TestSelectDisable(t *testing.T) {
	s := NewSelect("region")
	s.Fill("Select Region", []cascade.Option{{Value: "13", Label: "NCR"}})
	s.SetValue("13")
	s.Disable("Address data unavailable")
	v := s.View()
	assert.True(t, v.Disabled)
	assert.Empty(t, v.Value)
	assert.Len(t, v.Options, 1)

	s.Fill("Select Region", nil)
	assert.False(t, s.View().Disabled)
}

func TestDocumentLookups(t *testing.T) {
	d := NewCascadeDocument(cascade.DefaultIDs())
	w, ok := d.Widget("region")
	require.True(t, ok)
	assert.NotNil(t, w)

	w, ok = d.Widget("nope")
	assert.False(t, ok)
	assert.Nil(t, w)

	f, ok := d.Field("region_alias")
	require.True(t, ok)
	f.SetValue("NCR")
	assert.Equal(t, "NCR", d.Hidden("region_alias").Value())

	_, ok = d.Field("other")
	assert.False(t, ok)
}
