package ch

import (
	"os"
	"runtime"
	"strings"

	"vera/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// clientInfo shows up in system.query_log, so a query can be traced to its process
func clientInfo(name, role string) clickhouse.ClientInfo {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "vera"
	}
	b := version.Info()
	host, _ := os.Hostname()
	return clickhouse.ClientInfo{Products: []struct{ Name, Version string }{
		{Name: name, Version: strings.TrimSpace(role)},
		{Name: b.Service, Version: b.Version + "+" + b.Commit},
		{Name: "go", Version: runtime.Version()},
		{Name: "host", Version: host},
	}}
}
