package ai

import "context"

// FallbackSummary is returned when the remote model could not be reached.
const FallbackSummary = "no automatic summary available"

// Skills groups detected competences by category.
type Skills struct {
	Technical      []string `json:"technical"`
	Organizational []string `json:"organizational"`
}

// CVSummary is the structured reply produced for a CV.
type CVSummary struct {
	Summary string `json:"summary"`
	Skills  Skills `json:"skills"`
	// Degraded is set when the reply could not be obtained or parsed.
	Degraded bool `json:"-"`
}

// Summarizer turns raw CV text into a structured summary. Implementations never fail:
// remote or parsing problems degrade to a fallback value.
type Summarizer interface {
	Summarize(ctx context.Context, text string) CVSummary
}

func emptySkills() Skills {
	return Skills{Technical: []string{}, Organizational: []string{}}
}

func fallback() CVSummary {
	return CVSummary{Summary: FallbackSummary, Skills: emptySkills(), Degraded: true}
}
