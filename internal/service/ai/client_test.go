package ai

import "testing"

func TestParseInsightValid(t *testing.T) {
	got, err := ParseInsight(`{"action":"buy","confidence":80,"reasoning":["strong momentum","cheap valuation"]}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Action != "buy" || got.Confidence != 80 || len(got.Reasoning) != 2 {
		t.Errorf("unexpected parse result: %+v", got)
	}
}

func TestParseInsightSurroundingProse(t *testing.T) {
	got, err := ParseInsight("Here is my analysis:\n{\"action\":\"hold\",\"confidence\":60,\"reasoning\":[\"flat\"]}\nHope that helps!")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Action != "hold" {
		t.Errorf("action = %q, want hold", got.Action)
	}
}

func TestParseInsightRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no json", "the stock looks good"},
		{"bad action", `{"action":"yolo","confidence":50,"reasoning":["x"]}`},
		{"confidence high", `{"action":"buy","confidence":130,"reasoning":["x"]}`},
		{"confidence negative", `{"action":"buy","confidence":-1,"reasoning":["x"]}`},
		{"empty reasoning", `{"action":"buy","confidence":50,"reasoning":[]}`},
		{"unknown field", `{"action":"buy","confidence":50,"reasoning":["x"],"target":123}`},
		{"truncated", `{"action":"buy","confidence":50`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseInsight(tc.content); err == nil {
				t.Fatalf("expected parse failure for %q", tc.content)
			}
		})
	}
}

func TestParseInsightConfidenceBounds(t *testing.T) {
	for _, conf := range []string{"0", "100"} {
		body := `{"action":"watch","confidence":` + conf + `,"reasoning":["boundary"]}`
		if _, err := ParseInsight(body); err != nil {
			t.Errorf("confidence %s should be accepted: %v", conf, err)
		}
	}
}
