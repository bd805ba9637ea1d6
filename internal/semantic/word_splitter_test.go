package semantic

import (
	"reflect"
	"sync"
	"testing"
)

func TestWordSplitter(t *testing.T) {
	splitter := NewWordSplitter()

	tests := []struct {
		input    string
		expected []string
	}{
		// Basic cases
		{"", []string{""}},
		{"simple", []string{"simple"}},
		{"Simple", []string{"Simple"}},
		{"SIMPLE", []string{"SIMPLE"}},
		{"a", []string{"a"}},

		// Case transitions
		{"camelCase", []string{"camel", "Case"}},
		{"PascalCase", []string{"Pascal", "Case"}},
		{"abcD", []string{"abc", "D"}},

		// Acronyms
		{"TheNASAIsFromUSA", []string{"The", "NASA", "Is", "From", "USA"}},
		{"HTTPServer", []string{"HTTP", "Server"}},
		{"parseJSON", []string{"parse", "JSON"}},
		{"XMLHttpRequest", []string{"XML", "Http", "Request"}},
		{"AB", []string{"AB"}},

		// Digits
		{"Version5Has1047Lines", []string{"Version", "5", "Has", "1047", "Lines"}},
		{"v2Parser", []string{"v", "2", "Parser"}},
		{"base64Encode", []string{"base", "64", "Encode"}},
		{"abc1", []string{"abc", "1"}},
		{"1a", []string{"1", "a"}},

		// Joined numbers
		{"1.1", []string{"1.1"}},
		{"v1.2", []string{"v", "1.2"}},
		{"Release2.10Notes", []string{"Release", "2.10", "Notes"}},
		{"range3-4", []string{"range", "3-4"}},
		{"12:30", []string{"12:30"}},
		{"1.a", []string{"1.a"}},

		// Other characters never split
		{"snake_case", []string{"snake_case"}},
		{"hello world", []string{"hello world"}},
		{"getUser_byID", []string{"get", "User_by", "ID"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := splitter.Split(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Split(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestWordSplitterKeepsEveryCharacter(t *testing.T) {
	splitter := NewWordSplitter()

	for _, input := range []string{"TheNASAIsFromUSA", "Version5Has1047Lines", "x1.2.3Y", "ÀbcDéf", "ABCd"} {
		joined := ""
		for _, w := range splitter.Split(input) {
			joined += w
		}
		if joined != input {
			t.Errorf("Split(%q) lost characters: %q", input, joined)
		}
	}
}

func TestWordSplitterCacheEviction(t *testing.T) {
	splitter := NewWordSplitterWithSize(2)

	splitter.Split("oneTwo")
	splitter.Split("threeFour")
	splitter.Split("fiveSix")

	if got := splitter.cache.Size(); got != 2 {
		t.Errorf("cache size = %d, want 2", got)
	}
	if _, ok := splitter.cache.Get("oneTwo"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestWordSplitterConcurrent(t *testing.T) {
	splitter := NewWordSplitterWithSize(8)
	inputs := []string{"TheNASAIsFromUSA", "Version5Has1047Lines", "camelCase", "v1.2"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				input := inputs[(i+j)%len(inputs)]
				if len(splitter.Split(input)) == 0 {
					t.Errorf("Split(%q) returned no tokens", input)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestSplitToSet(t *testing.T) {
	set := NewWordSplitter().SplitToSet("fooBarBar")
	if len(set) != 2 || !set["foo"] || !set["Bar"] {
		t.Errorf("SplitToSet = %v", set)
	}
}

func BenchmarkWordSplitter(b *testing.B) {
	inputs := []string{
		"getUserName",
		"HTTPServerConfiguration",
		"TheNASAIsFromUSA",
		"Version5Has1047Lines",
		"AbstractHTTPSConnectionPoolManager",
	}

	splitter := NewWordSplitter()
	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		for _, input := range inputs {
			_ = splitter.Split(input)
		}
	}
}
