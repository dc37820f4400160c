package api

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// proxySet holds the networks allowed to report the client address through
// X-Forwarded-For or X-Real-IP.
type proxySet []netip.Prefix

func parseProxies(entries []string, log *zap.Logger) proxySet {
	var out proxySet
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				log.Warn("ignoring invalid trusted proxy", zap.String("entry", e), zap.Error(err))
				continue
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			log.Warn("ignoring invalid trusted proxy", zap.String("entry", e), zap.Error(err))
			continue
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}

// trusts reports whether the peer in remoteAddr ("host:port") is a trusted proxy.
func (p proxySet) trusts(remoteAddr string) bool {
	if len(p) == 0 {
		return false
	}
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// realIP rewrites RemoteAddr from the forwarding headers only for requests
// relayed by a trusted proxy. Any other caller could forge those headers.
func (h *Handler) realIP(next http.Handler) http.Handler {
	forwarded := middleware.RealIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.proxies.trusts(r.RemoteAddr) {
			forwarded.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
