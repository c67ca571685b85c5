// 包 geohint：根据客户端 IP 推断菲律宾区域简称，用于未提供初始区域时的默认选择
package geohint

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"

	"ph-address/internal/logger"
	"ph-address/internal/metrics"
)

// ErrNotCityDB 数据库不含城市/行政区划信息（如 Country 库或 ASN 库）
var ErrNotCityDB = errors.New("geohint: database is not a City database")

// ISO 3166-2:PH 区域代码 → 区域简称
var isoRegions = map[string]string{
	"00": "NCR",
	"01": "R1",
	"02": "R2",
	"03": "R3",
	"05": "R5",
	"06": "R6",
	"07": "R7",
	"08": "R8",
	"09": "R9",
	"10": "R10",
	"11": "R11",
	"12": "R12",
	"13": "R13",
	"14": "BARMM",
	"15": "CAR",
	"40": "R4A",
	"41": "R4B",
}

// RegionAlias ISO 区域代码（可带 PH- 前缀）→ 区域简称
func RegionAlias(iso string) (string, bool) {
	iso = strings.ToUpper(strings.TrimSpace(iso))
	iso = strings.TrimPrefix(iso, "PH-")
	a, ok := isoRegions[iso]
	return a, ok
}

// Hinter GeoIP2/GeoLite2 City 库包装
// 约束：Reader 并发安全；nil Hinter 视为未配置，始终无提示
type Hinter struct {
	db *geoip2.Reader
}

// Open 打开 City 库；先以 maxminddb 校验库类型，避免误用 Country/ASN 库
func Open(path string) (*Hinter, error) {
	raw, err := maxminddb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb: %w", err)
	}
	dbType := raw.Metadata.DatabaseType
	_ = raw.Close()
	if !strings.Contains(dbType, "City") && !strings.Contains(dbType, "Enterprise") {
		return nil, fmt.Errorf("%w: %s", ErrNotCityDB, dbType)
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip2: %w", err)
	}
	logger.L().Info("geohint_open", "path", path, "type", dbType)
	return &Hinter{db: db}, nil
}

// Region 返回 IP 所在区域简称；非菲律宾或无法识别时返回 false
func (h *Hinter) Region(ip string) (string, bool) {
	if h == nil || h.db == nil {
		return "", false
	}
	addr := net.ParseIP(strings.TrimSpace(ip))
	if addr == nil {
		metrics.GeoHintTotal.WithLabelValues("bad_ip").Inc()
		return "", false
	}
	rec, err := h.db.City(addr)
	if err != nil {
		metrics.GeoHintTotal.WithLabelValues("error").Inc()
		logger.L().Debug("geohint_lookup_error", "ip", ip, "err", err)
		return "", false
	}
	if rec.Country.IsoCode != "PH" {
		metrics.GeoHintTotal.WithLabelValues("foreign").Inc()
		return "", false
	}
	for _, sd := range rec.Subdivisions {
		if a, ok := RegionAlias(sd.IsoCode); ok {
			metrics.GeoHintTotal.WithLabelValues("hit").Inc()
			return a, true
		}
	}
	metrics.GeoHintTotal.WithLabelValues("miss").Inc()
	return "", false
}

func (h *Hinter) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
