package noticehtml

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		in   string
		want TokenType
	}{
		{"합계", Summary},
		{"합 계", Summary},
		{"[09:00~10:00]", TimeRange},
		{"9:00-10:30", TimeRange},
		{"(13:00 ~ 14:00)", TimeRange},
		{"1,200", Quantity},
		{"30명", Quantity},
		{"30 명", Quantity},
		{"1,500원", Quantity},
		{"3학점", Quantity},
		{"128", Number},
		{"CS101", Code},
		{"GE-102A", Code},
		{"cs101", Text},
		{"ABC", Text},
		{"강의실A", Text},
		{"1교시", Text},
		{"", Text},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeLoose(t *testing.T) {
	cases := map[string]string{
		"\u00a0CS\u200b101 ": "CS101",
		"a \n\t b":           "a b",
		"\ufeff  학년  ":       "학년",
		"":                   "",
	}
	for in, want := range cases {
		if got := NormalizeLoose(in); got != want {
			t.Errorf("NormalizeLoose(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStrict_RemovesAllWhitespace(t *testing.T) {
	if got := NormalizeStrict(" 교과 목명 \u00a0"); got != "교과목명" {
		t.Errorf("expected %q, got %q", "교과목명", got)
	}
}
