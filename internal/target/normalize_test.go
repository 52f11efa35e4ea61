package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "main.wd", expected: "/main.wd"},
		{input: "./src/../main.wd", expected: "/main.wd"},
		{input: "/abs/main.wd", expected: "/abs/main.wd"},
		{input: "file:///abs/main.wd", expected: "/abs/main.wd"},
		{input: "https://example.com/main.wd", expected: "https://example.com/main.wd"},
		{input: "C:/src/main.wd", expected: "C:/src/main.wd"},
	}
	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.input, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, testCase.expected, Normalize(testCase.input))
		})
	}
}
