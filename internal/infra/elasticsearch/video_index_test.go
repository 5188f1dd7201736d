package elasticsearch

import (
	"encoding/json"
	"strings"
	"testing"

	"vidhub-go/internal/model"
)

func sortKeys(t *testing.T, body map[string]interface{}) []string {
	t.Helper()
	raw, _ := json.Marshal(body["sort"])
	var sorts []map[string]interface{}
	if err := json.Unmarshal(raw, &sorts); err != nil {
		t.Fatal(err)
	}
	keys := make([]string, 0, len(sorts))
	for _, s := range sorts {
		for k := range s {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestBuildSearchBodySortRules(t *testing.T) {
	cases := []struct {
		name string
		q    model.SearchQuery
		want string
	}{
		{"views", model.SearchQuery{Sort: model.SortViews, Limit: 20}, "views,created_at"},
		{"relevance with text", model.SearchQuery{Text: "cat", Sort: model.SortRelevance, Limit: 20}, "_score,created_at"},
		{"relevance without text degrades to recency", model.SearchQuery{Sort: model.SortRelevance, Limit: 20}, "created_at"},
		{"default", model.SearchQuery{Sort: model.SortCreatedAt, Limit: 20}, "created_at"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := strings.Join(sortKeys(t, BuildSearchBody(&tc.q)), ",")
			if got != tc.want {
				t.Fatalf("sort = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestBuildSearchBodyFiltersAndPaging(t *testing.T) {
	body := BuildSearchBody(&model.SearchQuery{Text: "drama", Category: "Drama", Year: "2023", Skip: 40, Limit: 20})
	raw, _ := json.Marshal(body)
	s := string(raw)
	for _, want := range []string{`"category.keyword":"Drama"`, `"year":"2023"`, `"multi_match"`, `"from":40`, `"size":20`} {
		if !strings.Contains(s, want) {
			t.Errorf("body missing %s: %s", want, s)
		}
	}
}
