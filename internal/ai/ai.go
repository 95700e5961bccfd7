package ai

import (
	"context"

	"github.com/spigell/applicant-pipeline/internal/applicant"
)

// Assessment is the qualitative review of one applicant.
type Assessment struct {
	Summary   string
	Score     int
	Issues    string
	FollowUps string
	Raw       string
}

type Reviewer interface {
	Review(ctx context.Context, doc *applicant.Document) (*Assessment, error)
}
