package agent

import (
	"regexp"
	"strconv"
	"strings"

	ports "github.com/taskie-agent/taskie/taskie/agent/ports"
)

var (
	affirmativeRe = regexp.MustCompile(`(?i)^(?:yes|yes please|yep|yeah|yea|sure|ok|okay|confirm|confirmed|do it|go ahead|affirmative|y)$`)
	negativeRe    = regexp.MustCompile(`(?i)^(?:no|nope|nah|cancel|stop|don'?t|never mind|nevermind|abort|n)$`)
	ordinalRe     = regexp.MustCompile(`(?i)^(?:the\s+)?(first|second|third|fourth|fifth|1st|2nd|3rd|4th|5th)(?:\s+one)?$`)
)

// IsAffirmative reports whether a normalized reply explicitly confirms a
// pending destructive action. Anything not explicitly affirmative is not a
// confirmation.
func IsAffirmative(normalized string) bool {
	return affirmativeRe.MatchString(normalized)
}

// IsNegative reports whether a normalized reply explicitly declines.
func IsNegative(normalized string) bool {
	return negativeRe.MatchString(normalized)
}

var ordinalIndex = map[string]int{
	"first": 0, "1st": 0,
	"second": 1, "2nd": 1,
	"third": 2, "3rd": 2,
	"fourth": 3, "4th": 3,
	"fifth": 4, "5th": 4,
}

// SelectCandidate interprets a reply to a disambiguation prompt against the
// offered candidate list. It accepts a task id from the list, an ordinal
// ("the second one"), or a bare number treated as an id first and a 1-based
// position second. A miss returns false so the caller can reclassify the
// reply as a fresh utterance.
func SelectCandidate(normalized string, candidates []ports.Candidate) (ports.Candidate, bool) {
	if len(candidates) == 0 {
		return ports.Candidate{}, false
	}
	s := strings.TrimSpace(normalized)

	if m := ordinalRe.FindStringSubmatch(s); m != nil {
		if idx, ok := ordinalIndex[strings.ToLower(m[1])]; ok && idx < len(candidates) {
			return candidates[idx], true
		}
		return ports.Candidate{}, false
	}

	numStr := strings.TrimPrefix(strings.ToLower(s), "#")
	numStr = strings.TrimPrefix(numStr, "task ")
	numStr = strings.TrimPrefix(numStr, "number ")
	if n, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64); err == nil {
		for _, c := range candidates {
			if c.TaskID == n {
				return c, true
			}
		}
		if n >= 1 && int(n) <= len(candidates) {
			return candidates[n-1], true
		}
		return ports.Candidate{}, false
	}

	// Restated title, matched exactly against the offered list only.
	for _, c := range candidates {
		if strings.EqualFold(c.Title, s) {
			return c, true
		}
	}
	return ports.Candidate{}, false
}
