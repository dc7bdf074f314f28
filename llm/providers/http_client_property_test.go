package providers

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// 属性: 值为 nil 的键不会出现在查询串中，其余键全部保留
func TestProperty_BuildQuerySkipsNilValues(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 8).Draw(rt, "n")
		params := make(map[string]any, n)
		present := map[string]string{}
		for i := 0; i < n; i++ {
			key := fmt.Sprintf("k%d_%s", i, rapid.StringMatching(`[a-z]{1,6}`).Draw(rt, fmt.Sprintf("key_%d", i)))
			if rapid.Bool().Draw(rt, fmt.Sprintf("nil_%d", i)) {
				params[key] = nil
				continue
			}
			val := rapid.StringMatching(`[a-zA-Z0-9 &=]{0,10}`).Draw(rt, fmt.Sprintf("val_%d", i))
			params[key] = val
			present[key] = val
		}

		parsed, err := url.ParseQuery(BuildQuery(params))
		require.NoError(rt, err)
		assert.Len(rt, parsed, len(present))
		for k, v := range present {
			assert.Equal(rt, v, parsed.Get(k))
		}
	})
}

// 属性: error.message 优先于 error 字符串；message 仅在没有 error 键时使用；
// error 存在但形态不可用时回退到通用描述
func TestProperty_ErrorMessagePrecedence(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := rapid.IntRange(400, 599).Draw(rt, "status")
		nested := rapid.StringMatching(`[a-z ]{1,20}`).Draw(rt, "nested")
		top := rapid.StringMatching(`[A-Z ]{1,20}`).Draw(rt, "top")

		body := map[string]any{}
		shape := rapid.IntRange(0, 3).Draw(rt, "shape")
		switch shape {
		case 0:
			body["error"] = map[string]any{"message": nested}
		case 1:
			body["error"] = nested
		case 2:
			unusable := []any{map[string]any{"code": 1.0}, nil, 42.0, []any{"x"}, map[string]any{"message": 7.0}}
			body["error"] = unusable[rapid.IntRange(0, len(unusable)-1).Draw(rt, "unusable")]
		}
		withTop := rapid.Bool().Draw(rt, "withTop")
		if withTop {
			body["message"] = top
		}

		got := ErrorMessage(status, "Reason", body)
		switch {
		case shape == 0 || shape == 1:
			assert.Equal(rt, nested, got)
		case shape == 3 && withTop:
			assert.Equal(rt, top, got)
		default:
			assert.Equal(rt, fmt.Sprintf("HTTP request failed: %d Reason", status), got)
		}
	})
}
