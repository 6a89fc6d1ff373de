package dashboard

import (
	"os"
	"strings"
)

// envEChartsCDN overrides the ECharts assets host, e.g. a self-hosted bucket.
const envEChartsCDN = "DASHBOARD_ECHARTS_CDN"

// DefaultEChartsAssetsHost returns the assets host from DASHBOARD_ECHARTS_CDN,
// or "" to keep the go-echarts default CDN.
func DefaultEChartsAssetsHost() string {
	return ensureTrailingSlash(strings.TrimSpace(os.Getenv(envEChartsCDN)))
}

func ensureTrailingSlash(value string) string {
	if value == "" || strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
