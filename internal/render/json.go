package render

import (
	"encoding/json"

	"github.com/adamcooper1386/bintest/internal/result"
)

// JSON renders a suite result per JSON schema. Field names are
// already stable via result.Suite's json tags.
func JSON(suite result.Suite) ([]byte, error) {
	return json.MarshalIndent(struct {
		Suite result.Suite `json:"suite"`
	}{Suite: suite}, "", "  ")
}
