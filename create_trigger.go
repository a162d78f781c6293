package triggerboard

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// newCreateTriggerProxy forwards dashboard trigger submissions to the trigger
// service's create endpoint. The source's headers are attached so a bearer
// token configured for polling also authorizes creation. Browser cookies are
// not forwarded.
func newCreateTriggerProxy(source Source, logger *slog.Logger) (http.Handler, error) {
	target, err := url.Parse(source.CreateTriggerURL())
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("invalid create trigger URL %q", source.CreateTriggerURL())
	}
	headers := source.Headers()

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			out := *target
			pr.Out.URL = &out
			pr.Out.Host = ""
			pr.Out.Header.Del("Cookie")
			for k, v := range headers {
				pr.Out.Header.Set(k, v)
			}
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Warn("create trigger request failed", "url", target.String(), "error", err)
			http.Error(w, "trigger service unavailable", http.StatusBadGateway)
		},
	}, nil
}
