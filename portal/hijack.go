package portal

import (
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// blockedResourceTypes are resource classes the calculator never needs.
// XHR and Script stay untouched: the whole cascade runs on them.
var blockedResourceTypes = map[proto.NetworkResourceType]struct{}{
	proto.NetworkResourceTypeImage: {},
	proto.NetworkResourceTypeFont:  {},
	proto.NetworkResourceTypeMedia: {},
}

// analyticsDomains are third-party trackers the portal embeds. Blocking
// them shaves seconds off every page load and keeps the DOM-stable waits
// from being reset by beacon traffic.
var analyticsDomains = map[string]struct{}{
	"google-analytics.com":  {},
	"googletagmanager.com":  {},
	"doubleclick.net":       {},
	"facebook.net":          {},
	"hotjar.com":            {},
	"matomo.cloud":          {},
	"etracker.com":          {},
	"usercentrics.eu":       {},
	"cookiebot.com":         {},
	"scorecardresearch.com": {},
}

// isAnalyticsDomain checks a hostname and its parent domains against the
// tracker blocklist.
func isAnalyticsDomain(host string) bool {
	host = strings.ToLower(host)
	if _, ok := analyticsDomains[host]; ok {
		return true
	}
	for {
		idx := strings.IndexByte(host, '.')
		if idx < 0 {
			return false
		}
		host = host[idx+1:]
		if _, ok := analyticsDomains[host]; ok {
			return true
		}
	}
}

// mountHijack installs a request interceptor on the page that drops
// images, fonts, media and known tracker requests.
//
// Returns the running HijackRouter so the caller can defer router.Stop().
func mountHijack(page *rod.Page) *rod.HijackRouter {
	router := page.HijackRequests()

	_ = router.Add("*", "", func(ctx *rod.Hijack) {
		if _, drop := blockedResourceTypes[ctx.Request.Type()]; drop {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		if u, err := url.Parse(ctx.Request.URL().String()); err == nil {
			if isAnalyticsDomain(u.Hostname()) {
				ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
				return
			}
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})

	// router.Run() blocks, so it must live in its own goroutine.
	// It exits when router.Stop() is called.
	go router.Run()

	return router
}
