package bridge

import "fmt"

// proxyArray owns the proxy inlets of one object.
//
// Proxy i carries ordinal n-i: the host expects proxies to be created from
// the rightmost inlet to the leftmost.
type proxyArray struct {
	host  Host
	items []Proxy
}

func newProxyArray(host Host, obj Object, n int) (*proxyArray, error) {
	p := &proxyArray{host: host, items: make([]Proxy, 0, n)}

	for i := 0; i < n; i++ {
		proxy, err := host.NewProxy(obj, n-i)
		if err != nil {
			p.release()
			return nil, fmt.Errorf("create proxy for inlet %d: %w", n-i, err)
		}
		p.items = append(p.items, proxy)
	}

	return p, nil
}

// Len returns the number of live proxies.
func (p *proxyArray) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// release frees every proxy and then drops the array. It returns the number
// of proxies released.
func (p *proxyArray) release() int {
	if p == nil {
		return 0
	}

	n := len(p.items)
	for _, proxy := range p.items {
		p.host.FreeProxy(proxy)
	}
	p.items = nil

	return n
}
