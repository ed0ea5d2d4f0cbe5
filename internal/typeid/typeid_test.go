package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDsCarryPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewUserID(), "user_"))
	assert.True(t, strings.HasPrefix(NewTemplateID(), "tpl_"))
	assert.True(t, strings.HasPrefix(NewProjectID(), "proj_"))
	assert.True(t, strings.HasPrefix(NewElementID(), "el_"))
	assert.True(t, strings.HasPrefix(NewAssetID(), "asset_"))
}

func TestIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewElementID()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	id := NewUserID()
	assert.NoError(t, Validate(id, PrefixUser))
	assert.Error(t, Validate(id, PrefixProject))
	assert.Error(t, Validate("not a typeid", PrefixUser))
}
