package resources

import (
	"github.com/stretchr/testify/assert"
	"regexp"
	"testing"
)

func Test_GenerateCodename(t *testing.T) {
	cases := map[string]string{
		"C++ / Advanced!!":     "c-advanced",
		"Senior Developer":     "senior-developer",
		"  Full   Time  ":      "full-time",
		"Go":                   "go",
		"already-a-slug":       "already-a-slug",
		"--Part--time--":       "part-time",
		"100k - 150k USD":      "100k-150k-usd",
		"Node.js\tDeveloper":   "nodejs-developer",
		"!!!":                  "",
		"":                     "",
		"Contract (6 months)":  "contract-6-months",
		"Entry_Level / Junior": "entrylevel-junior",
	}

	for input, expected := range cases {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, GenerateCodename(input))
		})
	}
}

func Test_GenerateCodename_Should_BeIdempotentAndSlugShaped(t *testing.T) {
	slug := regexp.MustCompile(`^([a-z0-9]+(-[a-z0-9]+)*)?$`)
	inputs := []string{
		"C++ / Advanced!!", "  a  b  ", "-x-", "Ünïcödé Skill", "React & Redux", "a--b", "9 to 5", "?.,;:",
	}

	for _, input := range inputs {
		once := GenerateCodename(input)
		assert.Equal(t, once, GenerateCodename(once), input)
		assert.Regexp(t, slug, once, input)
	}
}
