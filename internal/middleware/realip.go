package middleware

import (
	"fmt"
	"net/http"
	"net/netip"
	"strings"

	"tourbook/internal/reqctx"
)

// IPResolver определяет адрес клиента. X-Forwarded-For читается только
// если соединение пришло от доверенного прокси.
type IPResolver struct {
	trusted []netip.Prefix
}

// NewIPResolver принимает IP или CIDR доверенных прокси.
func NewIPResolver(trusted []string) (*IPResolver, error) {
	res := &IPResolver{}
	for _, s := range trusted {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
			}
			res.trusted = append(res.trusted, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", s, err)
		}
		addr = addr.Unmap()
		res.trusted = append(res.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return res, nil
}

func (res *IPResolver) isTrusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range res.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP идёт по X-Forwarded-For справа налево и возвращает первый
// недоверенный адрес. Левее него цепочку мог написать сам клиент.
func (res *IPResolver) ClientIP(r *http.Request) string {
	peer := peerIP(r)
	if !res.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		addr, err := netip.ParseAddr(hop)
		if err != nil {
			// мусор в цепочке: дальше не верим
			return client
		}
		client = addr.Unmap().String()
		if !res.isTrusted(client) {
			return client
		}
	}
	return client
}

// RealIP кладёт адрес клиента в контекст для логов и лимита запросов.
func (res *IPResolver) RealIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqctx.WithClientIP(r.Context(), res.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
