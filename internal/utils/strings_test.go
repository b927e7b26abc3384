package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSymbolList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: nil},
		{name: "whitespace only", input: "   ", expected: nil},
		{name: "single value", input: "aapl", expected: []string{"AAPL"}},
		{name: "varied spacing", input: "AAPL,  msft , GOOGL", expected: []string{"AAPL", "MSFT", "GOOGL"}},
		{name: "duplicates dropped", input: "TSLA,tsla,NVDA", expected: []string{"TSLA", "NVDA"}},
		{name: "only commas", input: ",,,", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseSymbolList(tt.input))
		})
	}
}

func TestParseList_PreservesCase(t *testing.T) {
	assert.Equal(t, []string{"alice", "Bob"}, ParseList(" alice, Bob ,"))
	assert.Nil(t, ParseList(""))
}
