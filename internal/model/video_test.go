package model

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestViewCountDecodesLegacyAndNumericForms(t *testing.T) {
	cases := []struct {
		name string
		raw  interface{}
		want ViewCount
	}{
		{"int32", int32(42), 42},
		{"int64", int64(1_500_000), 1_500_000},
		{"double", 7.0, 7},
		{"formatted string", "1.2K", 1200},
		{"plain string", "900", 900},
		{"null", nil, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"id": "v1", "views": tc.raw})
			if err != nil {
				t.Fatal(err)
			}
			var v Video
			if err := bson.Unmarshal(raw, &v); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if v.Views != tc.want {
				t.Fatalf("views = %d, want %d", v.Views, tc.want)
			}
		})
	}
}

func TestViewCountGarbageStringDecodesAsZero(t *testing.T) {
	for _, garbage := range []string{"N/A", "lots", "-5"} {
		raw, _ := bson.Marshal(bson.M{"id": "legacy-1", "title": "Old upload", "views": garbage})
		var v Video
		if err := bson.Unmarshal(raw, &v); err != nil {
			t.Fatalf("views %q: unmarshal failed: %v", garbage, err)
		}
		if v.Views != 0 || v.ID != "legacy-1" || v.Title != "Old upload" {
			t.Fatalf("views %q: decoded %+v", garbage, v)
		}
	}
}

func TestApplyDefaults(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	v := &Video{ID: "v1"}
	v.ApplyDefaults(now)
	if v.Category != DefaultCategory || v.Year != "2024" || v.Rating != RatingG || v.UploadDate != "2024-03-09" {
		t.Fatalf("unexpected defaults: %+v", v)
	}
	if !v.CreatedAt.Equal(now) || !v.UpdatedAt.Equal(now) {
		t.Fatal("timestamps not set")
	}
}
