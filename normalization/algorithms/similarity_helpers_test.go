package algorithms

import (
	"testing"
)

func TestJaccardTokens(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"identical", []string{"法兰", "dn100"}, []string{"dn100", "法兰"}, 1.0},
		{"partial", []string{"法兰", "dn100", "pn1.6"}, []string{"板式", "平焊", "法兰", "dn100", "pn16"}, 2.0 / 6.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0.0},
		{"duplicates ignored", []string{"a", "a", "b"}, []string{"a", "b"}, 1.0},
		{"empty", nil, []string{"a"}, 0.0},
		{"both empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JaccardTokens(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("JaccardTokens() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJaccardFromCounts(t *testing.T) {
	if got := JaccardFromCounts(2, 3, 5); got != 2.0/6.0 {
		t.Errorf("JaccardFromCounts(2,3,5) = %v", got)
	}
	if got := JaccardFromCounts(0, 3, 5); got != 0 {
		t.Errorf("JaccardFromCounts(0,3,5) = %v", got)
	}
}

func TestCommonElements(t *testing.T) {
	got := CommonElements([]string{"c", "a", "b", "a"}, []string{"a", "c"})
	if len(got) != 2 || got[0] != "c" || got[1] != "a" {
		t.Errorf("CommonElements() = %v, want [c a]", got)
	}
}

func TestDamerauLevenshtein(t *testing.T) {
	dl := NewDamerauLevenshtein()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "acb", 1},
		{"上海阀门厂", "上海阀门", 1},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := dl.Distance(tt.a, tt.b); got != tt.want {
			t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if got := dl.Similarity("", ""); got != 1.0 {
		t.Errorf("Similarity of empty strings = %v, want 1", got)
	}
	if got := dl.Similarity("abcd", "abce"); got != 0.75 {
		t.Errorf("Similarity(abcd, abce) = %v, want 0.75", got)
	}
}

func TestNGramGenerator(t *testing.T) {
	ng := NewNGramGenerator(2)

	shingles := ng.Shingles([]rune("板式平焊"))
	want := []string{"板式", "式平", "平焊"}
	if len(shingles) != len(want) {
		t.Fatalf("Shingles() = %v, want %v", shingles, want)
	}
	for i := range want {
		if shingles[i] != want[i] {
			t.Errorf("Shingles()[%d] = %q, want %q", i, shingles[i], want[i])
		}
	}

	if got := ng.Shingles([]rune("阀")); len(got) != 1 || got[0] != "阀" {
		t.Errorf("Shingles(single) = %v", got)
	}
	if got := NewNGramGenerator(3).Shingles([]rune("截止阀门")); len(got) != 2 || got[1] != "止阀门" {
		t.Errorf("Shingles(n=3) = %v", got)
	}
}

func TestSegmenter_ForwardMaximumMatching(t *testing.T) {
	s := NewSegmenter()

	got := s.Segment("无缝钢管 abc 金属软管")
	want := []string{"无缝钢管", "abc", "金属软管"}
	if len(got) != len(want) {
		t.Fatalf("Segment() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Segment()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// Неизвестный хвост режется на биграммы рядом со словарным словом
	got = s.Segment("法兰鸡蛋")
	if len(got) != 2 || got[0] != "法兰" || got[1] != "鸡蛋" {
		t.Errorf("Segment(法兰鸡蛋) = %v", got)
	}
}
