// Package ignore builds the exclusion predicate used when assembling
// archive staging trees. Rules follow gitignore semantics: blank lines and
// "#" comments are skipped, "!" re-includes, patterns containing "/" anchor
// to the repository root, "*" never crosses a path separator, a trailing
// "/" restricts the match to directories, and the last matching rule wins.
// The rule set is built once per run and is immutable afterwards.
package ignore

import (
	"os"
	"path"
	"strings"

	"github.com/woozymasta/pathrules"

	"github.com/ChaoticTrials/Caelum/pkg/errors"
	"github.com/ChaoticTrials/Caelum/pkg/logging"
)

// Rules is a compiled, immutable set of exclusion rules. Paths are always
// evaluated relative to the repository root.
type Rules struct {
	matcher *pathrules.Matcher
}

// FromFile compiles rules from a gitignore-style file, appending any extra
// patterns after the file's own (so they take precedence). A missing file
// yields an empty rule set that excludes nothing.
func FromFile(path string, extra ...string) (*Rules, error) {
	logger := logging.GetLogger("ignore")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Warn().Str("path", path).Msg("Ignore file not found, nothing will be excluded")
		return FromPatterns(extra)
	}

	rules, err := pathrules.LoadRulesFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load ignore rules from %s", path)
	}

	extraRules, err := pathrules.ParseRulesString(strings.Join(extra, "\n"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse extra ignore patterns")
	}
	rules = append(rules, extraRules...)

	return compile(rules)
}

// FromPatterns compiles rules from in-memory pattern lines.
func FromPatterns(patterns []string) (*Rules, error) {
	rules, err := pathrules.ParseRulesString(strings.Join(patterns, "\n"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to parse ignore patterns")
	}
	return compile(rules)
}

func compile(rules []pathrules.Rule) (*Rules, error) {
	matcher, err := pathrules.NewMatcher(rules, pathrules.MatcherOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to compile ignore rules")
	}
	return &Rules{matcher: matcher}, nil
}

// Excluded reports whether the file at the given slash-separated relative
// path should be omitted from a copy. A pattern naming a directory, with or
// without a trailing slash, excludes everything beneath it, so the path's
// ancestor directories are consulted as well. Across the file and its
// ancestors the latest rule in the set wins, which keeps negation working
// for files beneath an excluded directory.
func (r *Rules) Excluded(rel string) bool {
	decision := r.matcher.Decide(rel, false)
	winner := decision.RuleIndex
	excluded := decision.Matched && !decision.Included

	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		d := r.matcher.Decide(dir, true)
		if d.Matched && d.RuleIndex > winner {
			winner = d.RuleIndex
			excluded = !d.Included
		}
	}
	return excluded
}
