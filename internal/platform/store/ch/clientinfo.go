package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo stamps the connection with who we are, so server-side
// query logs can tell the api apart from the enrich runner.
func BuildClientInfo(name, tag string) clickhouse.ClientInfo {
	var info clickhouse.ClientInfo
	add := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			info.Products = append(info.Products, struct{ Name, Version string }{k, v})
		}
	}

	host, _ := os.Hostname()
	add(name, tag)
	add("commit", vcsShortSHA())
	add("go", runtime.Version())
	add("host", host)
	return info
}

// vcsShortSHA digs the revision out of the binary's build metadata. go run
// and test binaries carry none, those connections just omit the product
func vcsShortSHA() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}
