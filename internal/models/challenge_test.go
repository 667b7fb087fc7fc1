package models

import (
	"encoding/json"
	"testing"
)

func TestFeelingTagsUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		data string
		want FeelingTags
	}{
		{"structured", `{"difficulty":"hard","mood":"proud"}`, FeelingTags{Difficulty: "hard", Mood: "proud"}},
		{"structured partial", `{"mood":"tired"}`, FeelingTags{Mood: "tired"}},
		{"legacy array", `["hard","proud"]`, FeelingTags{Difficulty: "hard", Mood: "proud"}},
		{"legacy single element", `["easy"]`, FeelingTags{Difficulty: "easy"}},
		{"legacy with whitespace", `[" hard ", " calm "]`, FeelingTags{Difficulty: "hard", Mood: "calm"}},
		{"legacy empty array", `[]`, FeelingTags{}},
		{"empty object", `{}`, FeelingTags{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FeelingTags
			if err := json.Unmarshal([]byte(tt.data), &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFeelingTagsMarshalRoundTrip(t *testing.T) {
	// New writes always use the structured form.
	orig := FeelingTags{Difficulty: "medium", Mood: "focused"}
	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if data[0] != '{' {
		t.Errorf("expected object form, got %s", data)
	}
	var got FeelingTags
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got != orig {
		t.Errorf("round trip changed value: %+v != %+v", got, orig)
	}
}
