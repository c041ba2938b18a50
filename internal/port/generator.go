package port

import "context"

// Generator forwards a prompt to a text-generation model and returns the
// first generated candidate.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// ModelName returns the name of the generation model.
	ModelName() string
}
