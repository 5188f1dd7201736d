package repository

import (
	"testing"

	"vidhub-go/internal/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestSearchMatchCombinesFilters(t *testing.T) {
	m := SearchMatch(&model.SearchQuery{Text: "space", Category: "Sci-Fi", Year: "2023"})
	if m["category"] != "Sci-Fi" || m["year"] != "2023" {
		t.Fatalf("unexpected match: %v", m)
	}
	text, ok := m["$text"].(bson.M)
	if !ok || text["$search"] != "space" {
		t.Fatalf("missing $text clause: %v", m)
	}

	if empty := SearchMatch(&model.SearchQuery{}); len(empty) != 0 {
		t.Fatalf("empty query should match everything, got %v", empty)
	}
}

func TestSearchSort(t *testing.T) {
	first := func(d bson.D) string { return d[0].Key }

	if k := first(SearchSort(&model.SearchQuery{Sort: model.SortViews})); k != "viewsNumeric" {
		t.Errorf("views sort starts with %s", k)
	}
	if k := first(SearchSort(&model.SearchQuery{Sort: model.SortRelevance, Text: "x"})); k != "score" {
		t.Errorf("relevance sort starts with %s", k)
	}
	if k := first(SearchSort(&model.SearchQuery{Sort: model.SortRelevance})); k != "createdAt" {
		t.Errorf("relevance without text should fall back to recency, got %s", k)
	}
	if k := first(SearchSort(&model.SearchQuery{})); k != "createdAt" {
		t.Errorf("default sort starts with %s", k)
	}
}

func TestSearchPipelineStages(t *testing.T) {
	p := SearchPipeline(&model.SearchQuery{Text: "cat", Sort: model.SortRelevance, Skip: 20, Limit: 10})
	want := []string{"$match", "$addFields", "$sort", "$skip", "$limit"}
	if len(p) != len(want) {
		t.Fatalf("pipeline has %d stages", len(p))
	}
	for i, stage := range p {
		if stage[0].Key != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stage[0].Key, want[i])
		}
	}
	fields := p[1][0].Value.(bson.M)
	if _, ok := fields["score"]; !ok {
		t.Error("text query should project textScore")
	}
	if _, ok := fields["viewsNumeric"]; !ok {
		t.Error("viewsNumeric must always be derived")
	}
	if p[3][0].Value != int64(20) || p[4][0].Value != int64(10) {
		t.Errorf("skip/limit = %v/%v", p[3][0].Value, p[4][0].Value)
	}
}

// findOp 深度优先查找第一个以 op 为键的表达式
func findOp(v interface{}, op string) (interface{}, bool) {
	switch x := v.(type) {
	case bson.M:
		if inner, ok := x[op]; ok {
			return inner, true
		}
		for _, child := range x {
			if found, ok := findOp(child, op); ok {
				return found, true
			}
		}
	case bson.A:
		for _, child := range x {
			if found, ok := findOp(child, op); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func TestViewsNumericExprTrimsBeforeSuffix(t *testing.T) {
	conv, ok := findOp(ViewsNumericExpr("$views"), "$convert")
	if !ok {
		t.Fatal("expression has no $convert")
	}
	cond, ok := findOp(conv.(bson.M)["input"], "$cond")
	if !ok {
		t.Fatal("$convert input should pick the numeric part")
	}
	branches := cond.(bson.A)
	if len(branches) != 3 {
		t.Fatalf("$cond has %d branches", len(branches))
	}
	// "1.2 K" 去掉后缀后是 "1.2 "，需要再 trim 才能转换
	trim, ok := branches[2].(bson.M)["$trim"]
	if !ok {
		t.Fatalf("suffixed branch = %v, want $trim", branches[2])
	}
	if _, ok := findOp(trim, "$substrCP"); !ok {
		t.Fatalf("$trim should wrap the substring, got %v", trim)
	}
}

func TestViewsNumericExprClampsNegative(t *testing.T) {
	m, ok := findOp(ViewsNumericExpr("$views"), "$multiply")
	if !ok {
		t.Fatal("expression has no $multiply")
	}
	first := m.(bson.A)[0].(bson.M)
	bounds, ok := first["$max"].(bson.A)
	if !ok || bounds[0] != 0 {
		t.Fatalf("parsed number not clamped at 0: %v", first)
	}
	if _, ok := findOp(bounds, "$convert"); !ok {
		t.Fatal("$max should wrap the $convert")
	}
}
