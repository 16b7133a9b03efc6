package client

import (
	"net/http"

	"github.com/Chyrain/LLMGateway/common/config"
)

// HTTPClient serves ordinary relay requests. It carries no global timeout;
// every call site binds the request with a context deadline instead, so
// long-lived streaming responses are not cut off by the client itself.
var HTTPClient *http.Client

// ProbeHTTPClient serves connectivity probes. It never follows redirects: a
// redirect from a chat endpoint says nothing about the credential being live.
var ProbeHTTPClient *http.Client

func Init() {
	HTTPClient = &http.Client{}
	ProbeHTTPClient = &http.Client{
		Timeout: config.ProbeTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
