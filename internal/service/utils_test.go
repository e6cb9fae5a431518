package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "clean text", sanitizeUTF8("clean text"))
	assert.Equal(t, "привет 100€", sanitizeUTF8("привет 100€"))
	assert.Equal(t, "ab", sanitizeUTF8("a\xffb"))
	assert.Equal(t, "", sanitizeUTF8("\xff\xfe"))
}
