package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/six-app/six-backend/internal/types"
)

func TestChatModelForPlan(t *testing.T) {
	// Free requests get clamped to the mini tier regardless of what was
	// asked for.
	assert.Equal(t, ChatModelMini, ChatModelForPlan(types.PlanFree, ""))
	assert.Equal(t, ChatModelMini, ChatModelForPlan(types.PlanFree, ChatModelFull))
	assert.Equal(t, ChatModelMini, ChatModelForPlan("", ChatModelFull))

	assert.Equal(t, ChatModelFull, ChatModelForPlan(types.PlanPro, ""))
	assert.Equal(t, ChatModelMini, ChatModelForPlan(types.PlanPro, ChatModelMini))
	assert.Equal(t, ChatModelFull, ChatModelForPlan(types.PlanMax, "made-up-model"))
}

func TestImageModelForPlan(t *testing.T) {
	model, size := ImageModelForPlan(types.PlanFree)
	assert.Equal(t, ImageModelBase, model)
	assert.Equal(t, "512x512", size)

	model, size = ImageModelForPlan(types.PlanPro)
	assert.Equal(t, ImageModelFull, model)
	assert.Equal(t, "1024x1024", size)

	model, size = ImageModelForPlan(types.PlanMax)
	assert.Equal(t, ImageModelFull, model)
	assert.Equal(t, "1792x1024", size)
}

func TestMaxFileBytesForPlan(t *testing.T) {
	assert.Equal(t, int64(5<<20), MaxFileBytesForPlan(types.PlanFree))
	assert.Equal(t, int64(5<<20), MaxFileBytesForPlan("unknown"))
	assert.Equal(t, int64(25<<20), MaxFileBytesForPlan(types.PlanPro))
	assert.Equal(t, int64(100<<20), MaxFileBytesForPlan(types.PlanMax))
}

func TestSessionTitleTruncates(t *testing.T) {
	assert.Equal(t, "hello world", SessionTitle("  hello   world  "))
	long := "one two three four five six seven eight nine ten eleven twelve"
	assert.Equal(t, "one two three four five six seven eight nine ten", SessionTitle(long))
}

func TestShareTokenShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		tok := ShareToken()
		assert.Len(t, tok, 22)
		for _, r := range tok {
			valid := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
			assert.True(t, valid, "token %q has invalid rune %q", tok, r)
		}
		seen[tok] = true
	}
	assert.Len(t, seen, 20, "tokens must be unique")
}
