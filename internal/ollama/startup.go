package ollama

import (
	"context"
	"fmt"
)

// EnsureReady verifies that the Ollama server is reachable and the embedding
// model is available locally. It never pulls models itself; the caller is
// told what to run instead.
func EnsureReady(ctx context.Context, client *Client, embedModel string) error {
	if !client.IsRunning(ctx) {
		return fmt.Errorf("ollama is not running; start it with 'ollama serve'")
	}
	if !client.HasModel(ctx, embedModel) {
		return fmt.Errorf("embedding model %q not found; run 'ollama pull %s'", embedModel, embedModel)
	}
	return nil
}
