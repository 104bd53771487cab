package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantKey string // if non-empty, check this key exists in parsed JSON
		wantErr bool
	}{
		{
			name:    "plain JSON",
			input:   `{"destination": "Tokyo"}`,
			wantKey: "destination",
		},
		{
			name:    "markdown code block",
			input:   "```json\n{\"destination\": \"Tokyo\"}\n```",
			wantKey: "destination",
		},
		{
			name:    "markdown block with trailing text",
			input:   "```json\n{\"destination\": \"Tokyo\"}\n```\n\n**Here is your itinerary plan**",
			wantKey: "destination",
		},
		{
			name:    "leading prose",
			input:   "Sure! Here is the plan as JSON:\n{\"summary\": \"three days\"}",
			wantKey: "summary",
		},
		{
			name:    "JS comments in values",
			input:   "```json\n{\n  \"days\": [\n    {\"day\": 1},  // arrival day\n    {\"day\": 2}   // market day\n  ]\n}\n```",
			wantKey: "days",
		},
		{
			name:    "JS comments and trailing commas",
			input:   "```json\n{\n  \"highlights\": [\n    \"markets\",  // first\n    \"ramen\",  // second\n  ]\n}\n```",
			wantKey: "highlights",
		},
		{
			name:    "URL in string not stripped",
			input:   `{"hero_image": "https://example.com/photo.jpg"}`,
			wantKey: "hero_image",
		},
		{
			name:    "URL in string with comment after",
			input:   "{\"hero_image\": \"https://example.com/photo.jpg\"} // trailing",
			wantKey: "hero_image",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no braces at all",
			input:   "I could not produce a plan for that request.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractJSON(tt.input)
			if tt.wantErr {
				if got != "" {
					t.Errorf("ExtractJSON() = %q, want empty", got)
				}
				return
			}
			if got == "" {
				t.Fatal("ExtractJSON() returned empty, want JSON")
			}
			var parsed map[string]any
			if err := json.Unmarshal([]byte(got), &parsed); err != nil {
				t.Fatalf("extracted JSON does not parse: %v\n%s", err, got)
			}
			if tt.wantKey != "" {
				if _, ok := parsed[tt.wantKey]; !ok {
					t.Errorf("key %q missing from extracted JSON: %s", tt.wantKey, got)
				}
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	got := ExtractJSONArray("Here you go:\n```json\n[{\"day\": 1}, {\"day\": 2}]\n```")
	var parsed []map[string]any
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("extracted array does not parse: %v", err)
	}
	if len(parsed) != 2 {
		t.Errorf("got %d elements, want 2", len(parsed))
	}

	if got := ExtractJSONArray("no array here"); got != "" {
		t.Errorf("ExtractJSONArray() = %q, want empty", got)
	}
}

func TestDecodeObject(t *testing.T) {
	type identity struct {
		Destination string `json:"destination"`
		Duration    int    `json:"duration"`
	}

	t.Run("valid", func(t *testing.T) {
		got, err := DecodeObject[identity]("```json\n{\"destination\": \"Kyoto\", \"duration\": 4}\n```")
		if err != nil {
			t.Fatalf("DecodeObject() error = %v", err)
		}
		if got.Destination != "Kyoto" || got.Duration != 4 {
			t.Errorf("DecodeObject() = %+v", got)
		}
	})

	t.Run("no JSON", func(t *testing.T) {
		_, err := DecodeObject[identity]("sorry, I cannot help with that")
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("error = %v, want ErrMalformedResponse", err)
		}
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := DecodeObject[identity](`{"destination": "Kyoto", "duration": "four"}`)
		if !errors.Is(err, ErrMalformedResponse) {
			t.Errorf("error = %v, want ErrMalformedResponse", err)
		}
	})
}

func TestDecodeArray(t *testing.T) {
	type day struct {
		Day int `json:"day"`
	}

	got, err := DecodeArray[day](`[{"day": 1}, {"day": 2}, {"day": 3}]`)
	if err != nil {
		t.Fatalf("DecodeArray() error = %v", err)
	}
	if len(got) != 3 || got[2].Day != 3 {
		t.Errorf("DecodeArray() = %+v", got)
	}

	if _, err := DecodeArray[day]("nothing here"); !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("error = %v, want ErrMalformedResponse", err)
	}
}

func TestStripLineComment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comment", `  "city": "Tokyo",`, `  "city": "Tokyo",`},
		{"comment after value", `  "day": 1, // arrival`, `  "day": 1,`},
		{"url untouched", `  "img": "https://x.test/a.jpg",`, `  "img": "https://x.test/a.jpg",`},
		{"escaped quote", `  "note": "say \"hi\"", // greet`, `  "note": "say \"hi\"",`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripLineComment(tt.in); got != tt.want {
				t.Errorf("stripLineComment(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
