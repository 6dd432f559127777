package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	// A metacharacter-only term must not become a match-everything pattern
	assert.Equal(t, `\%`, escapeLike("%"))
	assert.Equal(t, `\_`, escapeLike("_"))
	assert.Equal(t, `\\`, escapeLike(`\`))

	assert.Equal(t, "ravi", escapeLike("ravi"))
	assert.Equal(t, `50\% ravi\_k`, escapeLike("50% ravi_k"))
}
