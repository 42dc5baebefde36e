package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCertificateID(t *testing.T) {
	id := NewCertificateID()

	assert.True(t, strings.HasPrefix(id, "CERT-"))
	assert.Equal(t, strings.ToUpper(id), id)

	parts := strings.Split(id, "-")
	assert.Len(t, parts, 3)
	assert.NotEmpty(t, parts[1])
	assert.NotEmpty(t, parts[2])
}

func TestNewCertificateIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewCertificateID()
		assert.False(t, seen[id], "duplicate certificate id: %s", id)
		seen[id] = true
	}
}
