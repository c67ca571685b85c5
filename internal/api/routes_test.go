package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ph-address/internal/cascade"
	"ph-address/internal/psgc"
)

func u(code, name string) psgc.Unit { return psgc.Unit{Code: code, Name: name} }

func testIndex() *psgc.Index {
	return psgc.Build([]psgc.Record{
		{Region: u("13", "NCR"), Province: u("NCR-P", "Metro Manila"), City: u("MNL", "Manila"), Barangay: u("B1", "Barangay 1")},
		{Region: u("13", "NCR"), Province: u("NCR-P", "Metro Manila"), City: u("MNL", "Manila"), Barangay: u("B2", "Barangay 2")},
		{Region: u("01", "Ilocos"), Province: u("0128", "Ilocos Norte"), City: u("012801", "Adams"), Barangay: u("012801001", "Adams (Pob.)")},
	})
}

func newTestServer(idx *psgc.Index) *Server {
	return &Server{Index: psgc.NewHolder(idx)}
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRegionsIncludePlaceholder(t *testing.T) {
	h := BuildRoutes(newTestServer(testIndex()))
	rec := get(t, h, "/regions")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[optionsResult](t, rec)
	assert.Equal(t, []cascade.Option{{Value: "", Label: "Select Region"}, {Value: "13", Label: "NCR"}, {Value: "01", Label: "Ilocos"}}, res.Options)
	assert.False(t, res.Disabled)
}

func TestProvincesAcceptAlias(t *testing.T) {
	h := BuildRoutes(newTestServer(testIndex()))
	res := decode[optionsResult](t, get(t, h, "/provinces?region=NCR"))
	assert.Equal(t, "13", res.Parent)
	assert.Equal(t, []cascade.Option{{Value: "", Label: "Select Province"}, {Value: "NCR-P", Label: "Metro Manila"}}, res.Options)

	res = decode[optionsResult](t, get(t, h, "/cities?province=missing"))
	assert.Len(t, res.Options, 1)

	res = decode[optionsResult](t, get(t, h, "/barangays?city=MNL"))
	assert.Len(t, res.Options, 3)
}

func TestCascadeEndpoint(t *testing.T) {
	h := BuildRoutes(newTestServer(testIndex()))
	res := decode[cascadeResult](t, get(t, h, "/cascade?region=NCR&province=NCR-P&citymun=MNL&barangay=B2"))
	assert.True(t, res.Available)
	assert.Equal(t, cascade.Selection{Region: "13", Province: "NCR-P", City: "MNL", Barangay: "B2"}, res.Selection)
	assert.Equal(t, "NCR", res.RegionAlias)
	assert.Equal(t, "B2", res.Barangay.Value)
	assert.Len(t, res.Barangay.Options, 3)
}

func TestCascadeUnknownCodeIsNotAnError(t *testing.T) {
	h := BuildRoutes(newTestServer(testIndex()))
	rec := get(t, h, "/cascade?region=01&province=NCR-P")
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[cascadeResult](t, rec)
	assert.Equal(t, cascade.Selection{Region: "01"}, res.Selection)
	assert.Equal(t, "R1", res.RegionAlias)
	assert.Len(t, res.City.Options, 1)
}

func TestCascadeDegradedWithoutIndex(t *testing.T) {
	h := BuildRoutes(newTestServer(nil))
	res := decode[cascadeResult](t, get(t, h, "/cascade?region=NCR"))
	assert.False(t, res.Available)
	for _, v := range []struct {
		Disabled bool
		Options  []cascade.Option
	}{{res.Region.Disabled, res.Region.Options}, {res.Barangay.Disabled, res.Barangay.Options}} {
		assert.True(t, v.Disabled)
		assert.Equal(t, []cascade.Option{{Value: "", Label: cascade.Unavailable}}, v.Options)
	}

	opts := decode[optionsResult](t, get(t, h, "/regions"))
	assert.True(t, opts.Disabled)
}

func TestFragment(t *testing.T) {
	h := BuildRoutes(newTestServer(testIndex()))
	rec := get(t, h, "/fragments/citymun?parent=NCR-P&selected=MNL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("content-type"), "text/html"))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<select>" + rec.Body.String() + "</select>"))
	require.NoError(t, err)
	opts := doc.Find("option")
	require.Equal(t, 2, opts.Length())
	assert.Equal(t, "Select City/Municipality", opts.Eq(0).Text())
	assert.Equal(t, "", opts.Eq(0).AttrOr("value", "x"))
	assert.Equal(t, "MNL", opts.Eq(1).AttrOr("value", ""))
	_, selected := opts.Eq(1).Attr("selected")
	assert.True(t, selected)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/fragments/street").Code)
}

func TestFragmentEscapesLabels(t *testing.T) {
	idx := psgc.Build([]psgc.Record{{Region: u("99", `<b>"x"</b>`)}})
	h := BuildRoutes(newTestServer(idx))
	rec := get(t, h, "/fragments/region")
	assert.NotContains(t, rec.Body.String(), "<b>")
}

func TestRegionAlias(t *testing.T) {
	h := BuildRoutes(newTestServer(nil))
	res := decode[aliasResult](t, get(t, h, "/region-alias?value=ncr"))
	assert.Equal(t, aliasResult{Code: "130000000", Alias: "NCR"}, res)
	res = decode[aliasResult](t, get(t, h, "/region-alias?value=170000000"))
	assert.Equal(t, "R4B", res.Alias)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/region-alias?value=zz").Code)
}

func TestReload(t *testing.T) {
	s := newTestServer(nil)
	s.ReloadToken = "secret"
	calls := 0
	s.Reload = func(ctx context.Context) (*psgc.Index, error) {
		calls++
		if calls == 2 {
			return nil, &psgc.LoadError{Source: "refbrgy.json", Status: 503, Err: errors.New("down")}
		}
		return testIndex(), nil
	}
	h := BuildRoutes(s)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, calls)

	req := httptest.NewRequest(http.MethodPost, "/reload", nil)
	req.Header.Set("x-admin-token", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[reloadResult](t, rec).Units["region"])
	assert.NotNil(t, s.Index.Load())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotNil(t, s.Index.Load(), "failed reload keeps the previous index")
}

func TestHealthz(t *testing.T) {
	res := decode[healthResult](t, get(t, BuildRoutes(newTestServer(nil)), "/healthz"))
	assert.True(t, res.OK)
	assert.False(t, res.IndexReady)
	res = decode[healthResult](t, get(t, BuildRoutes(newTestServer(testIndex())), "/healthz"))
	assert.True(t, res.IndexReady)
	assert.Equal(t, 3, res.Units["barangay"])
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", clientIP(r))
	r.Header.Set("forwarded", `for="[2001:db8::1]";proto=https`)
	assert.Equal(t, "2001:db8::1", clientIP(r))
	r.Header.Set("x-forwarded-for", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(r))
}
