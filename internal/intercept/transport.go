package intercept

import "net/http"

// Transport is an http.RoundTripper that answers virtual endpoint requests
// locally and delegates everything else to the wrapped transport. Installing
// it on a client makes interception transparent to the caller.
type Transport struct {
	interceptor *Interceptor
	base        http.RoundTripper
}

// NewTransport wraps base with virtual endpoint interception. A nil base
// delegates to http.DefaultTransport.
func NewTransport(interceptor *Interceptor, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{interceptor: interceptor, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.interceptor.InterceptHTTPRequest(req)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}
	return t.base.RoundTrip(req)
}
