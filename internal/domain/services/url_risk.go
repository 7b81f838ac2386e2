package services

import (
	"net/netip"
	"net/url"
	"regexp"
	"strings"

	"fraudlens/internal/domain/models"
)

// Reason strings emitted by the URL analyzer
const (
	ReasonMalformedURL  = "Invalid or malformed URL"
	ReasonNotHTTPS      = "Not using HTTPS"
	ReasonLoginPath     = "Login/verify path"
	ReasonRawIPHost     = "Raw IP address used as host"
	ReasonSuspiciousTLD = "Suspicious TLD"
)

const (
	weightNotHTTPS      = 30
	weightLoginPath     = 15
	weightRawIPHost     = 20
	weightSuspiciousTLD = 20
)

// schemes that must carry a host to be a usable URL
var hierarchicalSchemes = map[string]bool{
	"http": true, "https": true, "ws": true, "wss": true, "ftp": true,
}

// URLRisk is the outcome of scoring one URL
type URLRisk struct {
	Score   int
	Reasons []string
}

// URLRiskAnalyzer scores a URL from its structure alone: scheme, path,
// host shape and TLD. It performs no network lookups.
type URLRiskAnalyzer struct {
	loginPath      *regexp.Regexp
	suspiciousTLDs []string
}

// NewURLRiskAnalyzer creates an analyzer with the default rule set
func NewURLRiskAnalyzer() *URLRiskAnalyzer {
	return &URLRiskAnalyzer{
		loginPath:      regexp.MustCompile(`(?i)/(login|signin|verify|confirm|payment|checkout)`),
		suspiciousTLDs: []string{".xyz", ".info", ".top", ".pw", ".ga", ".cf"},
	}
}

// Analyze scores rawURL. Empty input is rejected with models.ErrEmptyInput;
// input that does not parse as a URL scores the maximum.
func (a *URLRiskAnalyzer) Analyze(rawURL string) (URLRisk, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return URLRisk{}, models.ErrEmptyInput
	}

	u, ok := parseURL(rawURL)
	if !ok {
		return URLRisk{Score: models.MaxScore, Reasons: []string{ReasonMalformedURL}}, nil
	}

	score := 0
	reasons := NewReasonSet()

	if u.Scheme != "https" {
		score += weightNotHTTPS
		reasons.Add(ReasonNotHTTPS)
	}

	if a.loginPath.MatchString(u.Path) {
		score += weightLoginPath
		reasons.Add(ReasonLoginPath)
	}

	host := strings.ToLower(u.Hostname())
	if isIPv4Literal(host) {
		score += weightRawIPHost
		reasons.Add(ReasonRawIPHost)
	}

	for _, tld := range a.suspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			score += weightSuspiciousTLD
			reasons.Add(ReasonSuspiciousTLD)
		}
	}

	return URLRisk{
		Score:   ClampScore(score),
		Reasons: reasons.List(),
	}, nil
}

// parseURL accepts only absolute URLs; hierarchical schemes also need a host
func parseURL(raw string) (*url.URL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return nil, false
	}
	if hierarchicalSchemes[u.Scheme] && u.Hostname() == "" {
		return nil, false
	}
	return u, true
}

func isIPv4Literal(host string) bool {
	addr, err := netip.ParseAddr(host)
	return err == nil && addr.Is4()
}
