// Package security provides structural safety analysis for commands and
// file paths, independent of any policy document. The checks here target
// attack shapes (injection, traversal, device writes) that hold for every
// policy, so they run unconditionally before whitelist/blacklist
// evaluation.
package security

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Analysis is the result of one structural safety check.
type Analysis struct {
	// Safe is true when no structural attack pattern was found.
	Safe bool

	// Reason names the specific technique detected, empty when Safe.
	Reason string

	// Pattern is the token or pattern that triggered the finding.
	Pattern string

	// Risk is true for attack findings (injection, traversal, device
	// writes). Invalid input, such as an empty candidate, is denied
	// without the risk flag.
	Risk bool
}

func safe() Analysis {
	return Analysis{Safe: true}
}

func finding(reason, pattern string) Analysis {
	return Analysis{Reason: reason, Pattern: pattern, Risk: true}
}

func invalid(reason string) Analysis {
	return Analysis{Reason: reason}
}

// metaChecks are the injection techniques checked on the raw command
// string, in priority order. Presence anywhere in the candidate is a
// finding: quoting does not make chaining metacharacters acceptable in
// an auto-approved command.
var metaChecks = []struct {
	token  string
	reason string
}{
	{";", "command chaining via ';'"},
	{"&&", "command chaining via '&&'"},
	{"|", "pipe into another command"},
	{"`", "command substitution via backticks"},
	{"$(", "command substitution via $()"},
	{"\n", "embedded newline"},
}

// blockedSubstrings are known-destructive command fragments checked
// case-insensitively after the metacharacter scan. Destructive but
// policy-expressible commands (rm -rf and friends) are deliberately not
// here: those belong to the blacklist, where administrators can tune
// them and decisions report the matched pattern.
var blockedSubstrings = []string{
	"mkfs.",
	"mkfs ",
	"dd if=/dev/zero of=/dev/",
	"dd if=/dev/urandom of=/dev/",
	"chmod -r 777 /",
	"chown -r root /",
	"/etc/shadow",
	".ssh/id_rsa",
	".ssh/id_ed25519",
	".aws/credentials",
	"ld_preload=",
	"dyld_insert_libraries=",
	":(){",
}

// CommandAnalyzer detects structural attack patterns in shell commands.
type CommandAnalyzer struct {
	parser *syntax.Parser
}

// NewCommandAnalyzer creates an analyzer using bash syntax.
func NewCommandAnalyzer() *CommandAnalyzer {
	return &CommandAnalyzer{
		parser: syntax.NewParser(syntax.Variant(syntax.LangBash)),
	}
}

// Analyze checks a command for structural attack patterns. Checks run in
// priority order: empty input, chaining/substitution metacharacters (each
// with a distinct reason), known-destructive fragments, then a shell
// parse for shapes a flat scan cannot see (background execution, raw
// device redirects).
func (a *CommandAnalyzer) Analyze(command string) Analysis {
	if strings.TrimSpace(command) == "" {
		return invalid("empty command")
	}

	for _, check := range metaChecks {
		if strings.Contains(command, check.token) {
			return finding(check.reason, check.token)
		}
	}

	lowered := strings.ToLower(command)
	for _, fragment := range blockedSubstrings {
		if strings.Contains(lowered, fragment) {
			return finding(fmt.Sprintf("destructive command fragment %q", fragment), fragment)
		}
	}

	return a.analyzeSyntax(command)
}

// analyzeSyntax parses the command as bash and walks the AST. A command
// that does not parse is denied: the host shell would reject it anyway,
// and unparseable input is a common obfuscation vector.
func (a *CommandAnalyzer) analyzeSyntax(command string) Analysis {
	file, err := a.parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return finding("command is not valid shell syntax", "")
	}

	result := safe()
	syntax.Walk(file, func(node syntax.Node) bool {
		if !result.Safe {
			return false
		}
		switch n := node.(type) {
		case *syntax.Stmt:
			if n.Background {
				result = finding("background execution via '&'", "&")
				return false
			}
		case *syntax.CmdSubst:
			// Reached only when the substitution token was masked from
			// the flat scan (e.g. inside heredoc escapes).
			result = finding("command substitution via $()", "$(")
			return false
		case *syntax.Redirect:
			if target := redirectTarget(n); isRawDevice(target) {
				result = finding("redirect to raw device", target)
				return false
			}
		}
		return true
	})

	return result
}

func redirectTarget(r *syntax.Redirect) string {
	if r.Word == nil {
		return ""
	}
	return r.Word.Lit()
}

func isRawDevice(target string) bool {
	for _, prefix := range []string{"/dev/sd", "/dev/nvme", "/dev/hd", "/dev/vd", "/dev/tcp/", "/dev/udp/"} {
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}
