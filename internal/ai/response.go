package ai

import (
	"strconv"
	"strings"
)

const (
	labelSummary   = "Summary:"
	labelScore     = "Score:"
	labelIssues    = "Issues:"
	labelFollowUps = "Follow-Ups:"

	noneValue = "None"

	maxSummaryLen   = 500
	maxIssuesLen    = 200
	maxFollowUpsLen = 500
)

type section int

const (
	sectionNone section = iota
	sectionSummary
	sectionScore
	sectionIssues
	sectionFollowUps
)

// ParseResponse decodes the labeled reply of the model. Each label must start a
// line; unlabeled lines continue the summary, issues or follow-ups section that
// precedes them. It never fails: missing or malformed parts keep their defaults.
func ParseResponse(raw string) Assessment {
	result := Assessment{Issues: noneValue, FollowUps: noneValue, Raw: raw}
	if strings.TrimSpace(raw) == "" {
		return result
	}

	current := sectionNone
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, labelSummary):
			current = sectionSummary
			result.Summary = valueAfter(line, labelSummary)
		case strings.HasPrefix(line, labelScore):
			current = sectionScore
			score, err := strconv.Atoi(valueAfter(line, labelScore))
			if err != nil {
				score = 0
			}
			result.Score = score
		case strings.HasPrefix(line, labelIssues):
			current = sectionIssues
			result.Issues = valueAfter(line, labelIssues)
		case strings.HasPrefix(line, labelFollowUps):
			current = sectionFollowUps
			result.FollowUps = valueAfter(line, labelFollowUps)
		case line == "":
			continue
		case current == sectionSummary:
			result.Summary += " " + line
		case current == sectionIssues:
			result.Issues += " " + line
		case current == sectionFollowUps:
			result.FollowUps += " " + line
		}
	}

	if result.Issues == "" {
		result.Issues = noneValue
	}
	if result.FollowUps == "" {
		result.FollowUps = noneValue
	}

	result.Summary = truncate(result.Summary, maxSummaryLen)
	result.Issues = truncate(result.Issues, maxIssuesLen)
	result.FollowUps = truncate(result.FollowUps, maxFollowUpsLen)

	return result
}

func valueAfter(line, label string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, label))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
