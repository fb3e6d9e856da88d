package invoker

import (
	"strings"

	"github.com/theapemachine/a2a-calculator/pkg/a2a"
	"github.com/theapemachine/a2a-calculator/pkg/config"
	"github.com/theapemachine/a2a-calculator/pkg/utils"
)

// WellKnownCardPath is appended to the RPC URL when no card URL is configured.
const WellKnownCardPath = ".well-known/agent-card.json"

/*
Endpoints holds the URLs derived from configuration before any card is
fetched. RPCURL always ends in "/"; CardURL never does.
*/
type Endpoints struct {
	RPCURL  string
	CardURL string
}

/*
NormalizePath gives path a leading "/" and strips trailing ones. An empty
path stays empty.
*/
func NormalizePath(path string) string {
	path = strings.TrimRight(strings.TrimSpace(path), "/")

	if path == "" {
		return ""
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return path
}

/*
ResolveEndpoints derives the default RPC and card URLs. An explicit RPC URL
replaces base+path, and an explicit card URL replaces the well-known path
under the RPC URL.
*/
func ResolveEndpoints(cfg config.Invoker) Endpoints {
	rpcURL := strings.TrimSpace(cfg.RPCURL)

	if rpcURL != "" {
		rpcURL = utils.EnsureTrailingSlash(rpcURL)
	} else {
		rpcURL = utils.TrimTrailingSlash(cfg.BaseURL) + NormalizePath(cfg.Path) + "/"
	}

	cardURL := utils.TrimTrailingSlash(cfg.CardURL)

	if cardURL == "" {
		cardURL = rpcURL + WellKnownCardPath
	}

	return Endpoints{
		RPCURL:  rpcURL,
		CardURL: cardURL,
	}
}

/*
ResolveRPCURL picks the RPC URL from a card. The first match wins: an
additional interface using the preferred transport, then one using JSONRPC,
then the card URL, then fallback. The result always ends in exactly one "/".
*/
func ResolveRPCURL(card *a2a.AgentCard, fallback string) string {
	if card == nil {
		return normalizeURL(fallback)
	}

	preferred := card.Transport()

	if iface, ok := findInterface(card.AdditionalInterfaces, preferred); ok {
		return normalizeURL(iface.URL)
	}

	if iface, ok := findInterface(card.AdditionalInterfaces, a2a.TransportJSONRPC); ok {
		return normalizeURL(iface.URL)
	}

	if strings.TrimSpace(card.URL) != "" {
		return normalizeURL(card.URL)
	}

	return normalizeURL(fallback)
}

func findInterface(interfaces []a2a.AgentInterface, transport string) (a2a.AgentInterface, bool) {
	for _, iface := range interfaces {
		if strings.TrimSpace(iface.URL) == "" {
			continue
		}

		if strings.EqualFold(strings.TrimSpace(iface.Transport), transport) {
			return iface, true
		}
	}

	return a2a.AgentInterface{}, false
}

func normalizeURL(url string) string {
	if strings.TrimSpace(url) == "" {
		return ""
	}

	return utils.EnsureTrailingSlash(url)
}
