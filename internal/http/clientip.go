package http

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// trustedProxies defines networks that are trusted to set forwarding
// headers.
var trustedProxies = []*net.IPNet{
	parsecidr("127.0.0.0/8"),
	parsecidr("10.0.0.0/8"),
	parsecidr("172.16.0.0/12"),
	parsecidr("192.168.0.0/16"),
}

func parsecidr(cidr string) *net.IPNet {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse trusted proxy CIDR %s: %v", cidr, err))
	}
	return network
}

func isTrustedProxy(ip net.IP) bool {
	for _, network := range trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// extractClientIP extracts the real client IP, honoring forwarding
// headers only when the direct peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsedDirectIP := net.ParseIP(directIP)
	if parsedDirectIP == nil {
		return directIP
	}

	if isTrustedProxy(parsedDirectIP) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if net.ParseIP(first) != nil {
				return first
			}
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			if net.ParseIP(xri) != nil {
				return xri
			}
		}
	}

	return directIP
}
