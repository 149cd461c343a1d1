package analyze

import (
	"regexp"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

var envVarRE = regexp.MustCompile(`\b[A-Z][A-Z0-9_]{2,}_(?:KEY|TOKEN|SECRET|ID|URL)\b`)

// authTokenMethods maps a literal token to the auth method it signals,
// checked in order so "oauth"/"authorization code" is tested before the
// weaker "token"/"bearer" match.
var authTokenMethods = []struct {
	tokens []string
	method model.AuthMethod
}{
	{[]string{"no auth", "anonymous"}, model.AuthNone},
	{[]string{"oauth", "authorization code"}, model.AuthOAuth},
	{[]string{"api_key", "api key"}, model.AuthAPIKey},
	{[]string{"username", "password", "credentials"}, model.AuthCredentials},
	{[]string{"token", "bearer"}, model.AuthToken},
}

// extractAuth implements §4.5.2: a deterministic scanner over combined
// text for auth-method tokens and environment-variable identifiers, then a
// setup-complexity classification.
func extractAuth(s sources, r Result) Result {
	text := strings.ToLower(s.combinedText)

	var methods []model.AuthMethod
	seen := make(map[model.AuthMethod]bool)
	for _, m := range authTokenMethods {
		if containsAnyToken(text, m.tokens) && !seen[m.method] {
			methods = append(methods, m.method)
			seen[m.method] = true
		}
	}

	envVars := dedupOrdered(envVarRE.FindAllString(s.combinedText, -1))

	required := len(methods) > 0 && !(len(methods) == 1 && methods[0] == model.AuthNone)

	r.Auth = model.AuthRequirement{
		Required:        required,
		Methods:         methods,
		RequiredEnvVars: envVars,
		SetupComplexity: classifySetupComplexity(methods, envVars),
		Summary:         authSummary(required, methods),
	}
	return r
}

func classifySetupComplexity(methods []model.AuthMethod, envVars []string) model.SetupComplexity {
	hasOAuth := false
	onlyNoneOrAPIKey := true
	for _, m := range methods {
		if m == model.AuthOAuth {
			hasOAuth = true
		}
		if m != model.AuthNone && m != model.AuthAPIKey {
			onlyNoneOrAPIKey = false
		}
	}

	switch {
	case hasOAuth || len(envVars) >= 4:
		return model.SetupComplex
	case (len(methods) == 0 || onlyNoneOrAPIKey) && len(envVars) <= 1:
		return model.SetupSimple
	default:
		return model.SetupModerate
	}
}

func authSummary(required bool, methods []model.AuthMethod) string {
	if !required || len(methods) == 0 {
		return "No authentication required."
	}
	names := make([]string, 0, len(methods))
	for _, m := range methods {
		names = append(names, string(m))
	}
	return "Requires: " + strings.Join(names, ", ") + "."
}

func containsAnyToken(haystack string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}

func dedupOrdered(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
