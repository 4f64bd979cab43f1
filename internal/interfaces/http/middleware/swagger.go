package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/campusledger/backend/internal/infrastructure/config"
	"github.com/campusledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// SwaggerProtection guards the API docs. A disabled endpoint answers 404; an
// IP whitelist (single addresses or CIDRs) answers 403 to everyone else; with
// RequireAuth the request must also carry a valid ledger token. jwtMiddleware
// must not skip the /swagger prefix.
func SwaggerProtection(cfg config.SwaggerConfig, jwtMiddleware gin.HandlerFunc) gin.HandlerFunc {
	allow := parseAllowlist(cfg.AllowedIPs)

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "API documentation is not available", GetRequestID(c)))
			return
		}
		if len(cfg.AllowedIPs) > 0 && !allow.contains(clientAddr(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to API documentation is restricted", GetRequestID(c)))
			return
		}
		if cfg.RequireAuth && jwtMiddleware != nil {
			if jwtMiddleware(c); c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

// ipAllowlist holds whitelisted networks; a bare address is kept as a
// single-host prefix. Entries that do not parse are dropped.
type ipAllowlist []netip.Prefix

func parseAllowlist(entries []string) ipAllowlist {
	return lo.FilterMap(entries, func(entry string, _ int) (netip.Prefix, bool) {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			p, err := netip.ParsePrefix(entry)
			return p.Masked(), err == nil
		}
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return netip.Prefix{}, false
		}
		addr = addr.Unmap()
		return netip.PrefixFrom(addr, addr.BitLen()), true
	})
}

func (l ipAllowlist) contains(addr netip.Addr) bool {
	if !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()
	return lo.SomeBy(l, func(p netip.Prefix) bool { return p.Contains(addr) })
}

// clientAddr prefers gin's proxy-aware ClientIP and falls back to RemoteAddr
func clientAddr(c *gin.Context) netip.Addr {
	if addr, err := netip.ParseAddr(c.ClientIP()); err == nil {
		return addr
	}
	if ap, err := netip.ParseAddrPort(c.Request.RemoteAddr); err == nil {
		return ap.Addr()
	}
	addr, _ := netip.ParseAddr(c.Request.RemoteAddr)
	return addr
}
