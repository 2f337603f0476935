package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldSearchTerm(t *testing.T) {
	assert.Equal(t, "perez", FoldSearchTerm("  Pérez "))
	assert.Equal(t, "nunez 30123456", FoldSearchTerm("Núñez 30123456"))
	assert.Equal(t, "", FoldSearchTerm("   "))
}
