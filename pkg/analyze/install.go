package analyze

import (
	"regexp"
	"strings"

	"github.com/mcpcrawl/mcpcrawl/pkg/model"
)

var shellFenceRE = regexp.MustCompile("(?s)```(?:sh|shell|bash|console)?\\s*\\n(.*?)```")

// installKindPriority implements §4.5.6's ordering: npx > pipx > cargo
// install > go install > docker run > git clone. Lower number = higher
// priority, matching InstallationMethod.Priority's convention.
var installKindPriority = map[model.InstallKind]int{
	model.InstallNPM:    1,
	model.InstallPipx:   2,
	model.InstallCargo:  3,
	model.InstallGo:     4,
	model.InstallDocker: 5,
	model.InstallGit:    6,
	model.InstallBinary: 7,
}

var firstTokenKind = map[string]model.InstallKind{
	"npx":    model.InstallNPM,
	"npm":    model.InstallNPM,
	"pipx":   model.InstallPipx,
	"pip":    model.InstallPipx,
	"uvx":    model.InstallPipx,
	"cargo":  model.InstallCargo,
	"go":     model.InstallGo,
	"docker": model.InstallDocker,
	"git":    model.InstallGit,
}

// flagSpacingFixRE matches an alphanumeric character directly followed by
// a `-flag` or `--flag` with no separating space, per §4.5.6's
// parameter-concatenation fix-up rule.
var flagSpacingFixRE = regexp.MustCompile(`([A-Za-z0-9])(--?[A-Za-z])`)
var whitespaceRunRE = regexp.MustCompile(`\s+`)

// extractInstallationMethods implements §4.5.6: parse fenced shell blocks,
// classify by first token, normalize spacing, assign priority and
// confidence, and always append an ecosystem-idiomatic fallback.
func extractInstallationMethods(s sources, r Result) Result {
	var methods []model.InstallationMethod
	seen := make(map[string]bool)

	for _, block := range shellFenceRE.FindAllStringSubmatch(s.combinedText, -1) {
		line := firstNonCommentLine(block[1])
		if line == "" {
			continue
		}
		kind, ok := classifyCommand(line)
		if !ok {
			continue
		}
		normalized := fixCommandSpacing(line)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		methods = append(methods, model.InstallationMethod{
			Kind:       kind,
			Command:    normalized,
			Priority:   installKindPriority[kind],
			Confidence: 95,
		})
	}

	fallback := ecosystemFallback(s.bundle.Candidate)
	if !seen[fallback.Command] {
		methods = append(methods, fallback)
	}

	sortInstallationMethods(methods)
	r.InstallationMethods = methods
	return r
}

func firstNonCommentLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line
	}
	return ""
}

func classifyCommand(line string) (model.InstallKind, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	// `go build`/`go run` build from source rather than fetch a published
	// module, so they rank with the git-clone tier, not the `go install`
	// package-manager tier.
	if fields[0] == "go" && len(fields) > 1 && (fields[1] == "build" || fields[1] == "run") {
		return model.InstallGit, true
	}
	kind, ok := firstTokenKind[fields[0]]
	return kind, ok
}

func fixCommandSpacing(line string) string {
	fixed := flagSpacingFixRE.ReplaceAllString(line, "$1 $2")
	fixed = whitespaceRunRE.ReplaceAllString(fixed, " ")
	return strings.TrimSpace(fixed)
}

func ecosystemFallback(c model.Candidate) model.InstallationMethod {
	switch c.Ecosystem {
	case model.EcosystemNPM:
		return model.InstallationMethod{Kind: model.InstallNPM, Command: "npx " + c.Identifier, Priority: installKindPriority[model.InstallNPM], Confidence: 50}
	case model.EcosystemPyPI:
		return model.InstallationMethod{Kind: model.InstallPipx, Command: "pipx run " + c.Identifier, Priority: installKindPriority[model.InstallPipx], Confidence: 50}
	case model.EcosystemCargo:
		return model.InstallationMethod{Kind: model.InstallCargo, Command: "cargo install " + c.Identifier, Priority: installKindPriority[model.InstallCargo], Confidence: 50}
	case model.EcosystemGo:
		return model.InstallationMethod{Kind: model.InstallGo, Command: "go install " + c.Identifier + "@latest", Priority: installKindPriority[model.InstallGo], Confidence: 50}
	case model.EcosystemRubyGems:
		return model.InstallationMethod{Kind: model.InstallBinary, Command: "gem install " + c.Identifier, Priority: installKindPriority[model.InstallBinary], Confidence: 50}
	default:
		return model.InstallationMethod{Kind: model.InstallBinary, Command: c.Identifier, Priority: installKindPriority[model.InstallBinary], Confidence: 50}
	}
}

func sortInstallationMethods(methods []model.InstallationMethod) {
	for i := 1; i < len(methods); i++ {
		for j := i; j > 0 && methods[j].Priority < methods[j-1].Priority; j-- {
			methods[j], methods[j-1] = methods[j-1], methods[j]
		}
	}
}
