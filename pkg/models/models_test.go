package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindComment, KindAccount, KindLink, KindSubreddit} {
		assert.True(t, k.Valid(), string(k))
	}
	for _, k := range []Kind{"t4", "more", "Listing", ""} {
		assert.False(t, k.Valid(), string(k))
	}
}
